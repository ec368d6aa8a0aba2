// Package analysis provides checks and statistics over decoded 8086 streams.
package analysis

import (
	"sort"

	"sim8086/internal/disasm"
)

// Count is one row of a summary table.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes a decoded stream.
type Summary struct {
	Instructions int     `json:"instructions"`
	Bytes        int     `json:"bytes"`
	Variants     []Count `json:"variants"`
	Modes        []Count `json:"modes"`
}

// Summarize counts instructions per encoding and addressing mode.
func Summarize(stream disasm.Stream) Summary {
	variants := map[string]int{}
	modes := map[string]int{}
	s := Summary{Instructions: len(stream)}
	for _, inst := range stream {
		s.Bytes += len(inst.Raw)
		variants[inst.Variant.String()]++
		modes[inst.Mode.String()]++
	}
	s.Variants = sortedCounts(variants)
	s.Modes = sortedCounts(modes)
	return s
}

// sortedCounts orders by count, then name.
func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for name, n := range m {
		counts = append(counts, Count{Name: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}
