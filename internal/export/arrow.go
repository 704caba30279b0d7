// Package export writes recorded trace data to Arrow IPC files for
// analysis in external tooling.
package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/cogsim/internal/trace"
)

// Schema is the Arrow schema for exported activation samples.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "tick", Type: arrow.PrimitiveTypes.Int64},
	{Name: "scenario", Type: arrow.BinaryTypes.String},
	{Name: "label", Type: arrow.BinaryTypes.String},
	{Name: "activation", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteSamples writes samples to path as an Arrow IPC file.
func WriteSamples(path string, samples []trace.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(Schema))
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create IPC writer: %w", err)
	}

	b := array.NewRecordBuilder(memory.DefaultAllocator, Schema)
	defer b.Release()

	for _, s := range samples {
		b.Field(0).(*array.Int64Builder).Append(s.Tick)
		b.Field(1).(*array.StringBuilder).Append(s.Scenario)
		b.Field(2).(*array.StringBuilder).Append(s.Label)
		b.Field(3).(*array.Float64Builder).Append(s.Activation)
	}

	rec := b.NewRecord()
	defer rec.Release()

	if err := w.Write(rec); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}

	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to close IPC writer: %w", err)
	}
	return f.Close()
}

// ReadSamples reads an Arrow IPC file written by WriteSamples.
func ReadSamples(path string) ([]trace.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC reader: %w", err)
	}
	defer r.Close()

	var samples []trace.Sample
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}

		ticks := rec.Column(0).(*array.Int64)
		scenarios := rec.Column(1).(*array.String)
		labels := rec.Column(2).(*array.String)
		activations := rec.Column(3).(*array.Float64)

		for row := 0; row < int(rec.NumRows()); row++ {
			samples = append(samples, trace.Sample{
				Tick:       ticks.Value(row),
				Scenario:   scenarios.Value(row),
				Label:      labels.Value(row),
				Activation: activations.Value(row),
			})
		}
	}
	return samples, nil
}
