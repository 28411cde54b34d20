package sportfield

import (
	"slices"

	"github.com/slamweb/slam/internal/domain/sport"
)

// LayoutConfig lists how many fields go in each row.
type LayoutConfig struct {
	RowFieldCounts []int `json:"row_field_counts"`
}

// GroupByLayout splits fields into rows. Non-positive counts are skipped and
// grouping stops once fields run out. Fields left over after the declared
// counts are grouped by the last declared count, or one per row when that count
// is missing or non-positive. Concatenating the rows gives back fields. Each
// row is a fresh slice; changing a row never touches fields or another row.
func GroupByLayout(fields []FieldConfig, layout LayoutConfig) [][]FieldConfig {
	rows := make([][]FieldConfig, 0, len(layout.RowFieldCounts))
	idx := 0
	for _, count := range layout.RowFieldCounts {
		if count <= 0 {
			continue
		}
		if idx >= len(fields) {
			break
		}
		end := min(idx+count, len(fields))
		rows = append(rows, slices.Clone(fields[idx:end]))
		idx = end
	}

	last := 1
	if n := len(layout.RowFieldCounts); n > 0 && layout.RowFieldCounts[n-1] > 0 {
		last = layout.RowFieldCounts[n-1]
	}
	for idx < len(fields) {
		end := min(idx+last, len(fields))
		rows = append(rows, slices.Clone(fields[idx:end]))
		idx = end
	}
	return rows
}

// MakeUniformLayout puts perRow fields in each row, the last row taking the
// remainder. perRow <= 0 yields an empty layout.
func MakeUniformLayout(total, perRow int) LayoutConfig {
	if perRow <= 0 {
		return LayoutConfig{RowFieldCounts: []int{}}
	}
	counts := make([]int, 0, (max(total, 0)+perRow-1)/perRow)
	for remaining := total; remaining > 0; remaining -= perRow {
		counts = append(counts, min(perRow, remaining))
	}
	return LayoutConfig{RowFieldCounts: counts}
}

// DefaultLayoutByType is the built-in layout for t's extra fields.
func DefaultLayoutByType(t sport.SportType) LayoutConfig {
	switch t {
	case sport.Swimming:
		return LayoutConfig{RowFieldCounts: []int{3}}
	case sport.Running:
		return LayoutConfig{RowFieldCounts: []int{2, 2, 2}}
	default:
		return LayoutConfig{RowFieldCounts: []int{}}
	}
}

// LayoutFor picks a uniform layout when perRow is positive and the built-in one otherwise.
func LayoutFor(t sport.SportType, total, perRow int) LayoutConfig {
	if perRow > 0 {
		return MakeUniformLayout(total, perRow)
	}
	return DefaultLayoutByType(t)
}
