package export

import (
	"path/filepath"
	"testing"

	"github.com/nvandessel/cogsim/internal/trace"
)

func TestWriteAndReadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.arrow")

	in := []trace.Sample{
		{Tick: 0, Scenario: "baseline", Label: "i1", Activation: 1.0},
		{Tick: 0, Scenario: "baseline", Label: "o1", Activation: 0.0},
		{Tick: 1, Scenario: "baseline", Label: "i1", Activation: 1.0},
		{Tick: 1, Scenario: "lesioned", Label: "o1", Activation: 0.75},
	}

	if err := WriteSamples(path, in); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}

	out, err := ReadSamples(path)
	if err != nil {
		t.Fatalf("ReadSamples failed: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestWriteSamples_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.arrow")

	if err := WriteSamples(path, nil); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}

	out, err := ReadSamples(path)
	if err != nil {
		t.Fatalf("ReadSamples failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no samples, got %d", len(out))
	}
}

func TestReadSamples_NotFound(t *testing.T) {
	_, err := ReadSamples("/nonexistent/trace.arrow")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}
