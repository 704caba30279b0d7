package module

import (
	"sort"

	"github.com/nvandessel/cogsim/internal/semantic"
)

// sortedLabels returns a pattern's labels in lexical order. Map iteration
// order is randomized, so sorting keeps identifier minting deterministic
// across runs.
func sortedLabels(p Pattern) []semantic.Label {
	labels := make([]semantic.Label, 0, len(p))
	for l := range p {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}
