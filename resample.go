package fabricate

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// ResampleData bootstraps a hierarchical table level by level, outermost
// first. sizes maps a level's identifier column to the number of groups to
// draw (with replacement, uniformly) at that level; idColumns lists the
// identifier columns outer to inner. Every drawn occurrence of a group
// materializes an independent copy of its rows, descendants included, under a
// fresh identifier, and deeper resampled levels recurse into each copy
// independently.
//
// Defaults: nil idColumns auto-detects generated identifier columns; nil
// sizes resamples only the outermost level to its original group count. A
// table with no identifier columns falls back to an ordinary flat row
// bootstrap.
func ResampleData(t *Table, sizes map[string]int, idColumns []string, opts ...Option) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("fabricate: resample requires a table")
	}
	cfg := applyOptions(opts)
	rng := cfg.resolveRandom()

	if idColumns == nil {
		idColumns = DetectIdentifierColumns(t)
	}
	if len(idColumns) == 0 {
		if len(sizes) > 0 {
			for level := range sizes {
				return nil, &UnknownLevelError{Level: level}
			}
		}
		return flatBootstrap(t, rng), nil
	}
	for _, col := range idColumns {
		if !t.Has(col) {
			return nil, &UnknownLevelError{Level: col, Known: t.Columns()}
		}
	}
	for level := range sizes {
		if !containsString(idColumns, level) {
			return nil, &UnknownLevelError{Level: level, Known: idColumns}
		}
	}
	if sizes == nil {
		groups, err := t.GroupBy(idColumns[0])
		if err != nil {
			return nil, err
		}
		sizes = map[string]int{idColumns[0]: len(groups)}
	}

	counters := make(map[string]int, len(idColumns))
	return resampleAt(t, idColumns, sizes, 0, counters, rng)
}

// resampleAt handles one nesting depth: it draws (or passes through) the
// groups at idCols[depth], relabels each materialized copy, and recurses into
// the copy for deeper levels. Two copies of the same original group recurse
// independently, so their descendants are drawn separately.
func resampleAt(t *Table, idCols []string, sizes map[string]int, depth int, counters map[string]int, rng *rand.Rand) (*Table, error) {
	if depth == len(idCols) {
		return t, nil
	}
	col := idCols[depth]
	groups, err := t.GroupBy(col)
	if err != nil {
		return nil, err
	}

	var picks []int
	if size, ok := sizes[col]; ok {
		if len(groups) == 0 && size > 0 {
			return nil, fmt.Errorf("fabricate: cannot draw %d groups at level %q from an empty table", size, col)
		}
		picks = make([]int, size)
		for i := range picks {
			picks[i] = rng.IntN(len(groups))
		}
	} else {
		// Level not targeted: every group travels once, in order, but still
		// receives a fresh identifier so duplicated ancestors stay disjoint.
		picks = make([]int, len(groups))
		for i := range picks {
			picks[i] = i
		}
	}

	if len(picks) == 0 {
		return t.Select(nil), nil
	}
	parts := make([]*Table, 0, len(picks))
	for _, gi := range picks {
		copyTbl := t.Select(groups[gi].Rows)
		counters[col]++
		label := fmt.Sprintf("%s_%d", col, counters[col])
		labels := make([]any, copyTbl.NumRows())
		for i := range labels {
			labels[i] = label
		}
		if err := copyTbl.SetColumn(col, labels); err != nil {
			return nil, err
		}
		copyTbl, err = resampleAt(copyTbl, idCols, sizes, depth+1, counters, rng)
		if err != nil {
			return nil, err
		}
		parts = append(parts, copyTbl)
	}
	return Concat(parts...)
}

// flatBootstrap draws NumRows rows with replacement from a table carrying no
// identifier structure.
func flatBootstrap(t *Table, rng *rand.Rand) *Table {
	n := t.NumRows()
	rows := make([]int, n)
	for i := range rows {
		rows[i] = rng.IntN(n)
	}
	return t.Select(rows)
}

// DetectIdentifierColumns returns, in column order, the columns whose every
// value carries the generated identifier shape "<column>_<k>". Fabricated
// tables place outer levels before inner ones, so column order is nesting
// order.
func DetectIdentifierColumns(t *Table) []string {
	var out []string
	for _, name := range t.Columns() {
		values, _ := t.Column(name)
		if len(values) == 0 {
			continue
		}
		if identifierShaped(name, values) {
			out = append(out, name)
		}
	}
	return out
}

func identifierShaped(name string, values []any) bool {
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return false
		}
		rest, ok := strings.CutPrefix(s, name+"_")
		if !ok || rest == "" {
			return false
		}
		for _, r := range rest {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
