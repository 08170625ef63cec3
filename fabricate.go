package fabricate

import (
	"fmt"
)

// Design holds an ordered sequence of level specifications plus evaluation
// configuration. Fabricating a design resolves every level in order into one
// flat hierarchical table.
type Design struct {
	Levels []LevelSpec

	cfg designConfig
}

// New constructs a Design over the given levels.
func New(levels []LevelSpec, opts ...Option) *Design {
	return &Design{
		Levels: levels,
		cfg:    applyOptions(opts),
	}
}

// Fabricate resolves levels into a single hierarchical table. It is shorthand
// for New(levels, opts...).Fabricate().
func Fabricate(levels []LevelSpec, opts ...Option) (*Table, error) {
	return New(levels, opts...).Fabricate()
}

// levelBlock tracks which output columns belong to which nesting depth.
type levelBlock struct {
	name string
	vars []string
}

// Fabricate walks the design's levels outermost first. Each nested level
// cascades the accumulated parent rows into its children, evaluates its
// variables against the merged ancestor scope, and appends its identifier
// column. Modify specs re-open an existing level instead of nesting.
func (d *Design) Fabricate() (*Table, error) {
	if len(d.Levels) == 0 {
		return nil, fmt.Errorf("fabricate: design must include at least one level")
	}
	var (
		tbl    *Table
		blocks []levelBlock
	)
	for _, spec := range d.Levels {
		if spec.Name == "" {
			return nil, fmt.Errorf("fabricate: level name must not be empty")
		}
		if spec.Modify {
			n, err := d.modifyLevel(tbl, blocks, spec)
			if err != nil {
				return nil, err
			}
			d.recordTrace(spec, n)
			continue
		}
		var (
			next *Table
			err  error
		)
		if tbl == nil {
			next, err = d.baseLevel(spec)
		} else {
			next, err = d.childLevel(tbl, spec)
		}
		if err != nil {
			return nil, err
		}
		tbl = next
		blocks = append(blocks, levelBlock{name: spec.Name, vars: variableNames(spec)})
		d.recordTrace(spec, tbl.NumRows())
	}
	return tbl, nil
}

// baseLevel materializes the outermost level, optionally seeded from
// imported data.
func (d *Design) baseLevel(spec LevelSpec) (*Table, error) {
	imported := d.cfg.data
	n, err := spec.resolveBaseSize(imported.NumRows())
	if err != nil {
		return nil, err
	}
	if imported != nil && imported.NumRows() != n {
		return nil, fmt.Errorf("fabricate: level %q: explicit N=%d conflicts with %d imported rows",
			spec.Name, n, imported.NumRows())
	}

	inherited := make(map[string][]any)
	var out *Table
	if imported != nil {
		out = imported.Clone()
		for _, name := range out.Columns() {
			col, _ := out.Column(name)
			inherited[name] = col
		}
	} else {
		out = NewTable(n)
	}

	scope := newScope(spec.Name, n, inherited)
	if err := evaluateVariables(spec, scope, &d.cfg); err != nil {
		return nil, err
	}

	if existing, ok := out.Column(spec.Name); ok {
		// Imported identifiers are preserved; only blank rows get labels.
		if err := out.SetColumn(spec.Name, fillIDGaps(spec.Name, existing)); err != nil {
			return nil, err
		}
	} else if err := out.InsertColumn(0, spec.Name, idLabels(spec.Name, n)); err != nil {
		return nil, err
	}
	if err := appendScopeColumns(out, scope); err != nil {
		return nil, err
	}
	return out, nil
}

// childLevel cascades the parent table into child rows and evaluates the
// child level on the expanded frame.
func (d *Design) childLevel(parent *Table, spec LevelSpec) (*Table, error) {
	counts, err := spec.resolveCounts(parent.NumRows())
	if err != nil {
		return nil, err
	}
	out := parent.Expand(counts)
	n := out.NumRows()

	inherited := make(map[string][]any, out.NumCols())
	for _, name := range out.Columns() {
		col, _ := out.Column(name)
		inherited[name] = col
	}
	scope := newScope(spec.Name, n, inherited)
	if err := evaluateVariables(spec, scope, &d.cfg); err != nil {
		return nil, err
	}

	if err := out.AppendColumn(spec.Name, idLabels(spec.Name, n)); err != nil {
		return nil, err
	}
	if err := appendScopeColumns(out, scope); err != nil {
		return nil, err
	}
	return out, nil
}

// modifyLevel re-evaluates variables at an existing level's granularity (one
// row per identifier group) and splices the results into that level's block,
// cascading them back down to the flat table's rows. It returns the group
// count the evaluation ran at.
func (d *Design) modifyLevel(tbl *Table, blocks []levelBlock, spec LevelSpec) (int, error) {
	if tbl == nil {
		return 0, &UnknownLevelError{Level: spec.Name}
	}
	depth := -1
	known := make([]string, len(blocks))
	for i, b := range blocks {
		known[i] = b.name
		if b.name == spec.Name {
			depth = i
		}
	}
	if depth == -1 {
		return 0, &UnknownLevelError{Level: spec.Name, Known: known}
	}

	groups, err := tbl.GroupBy(spec.Name)
	if err != nil {
		return 0, err
	}
	unitRows := make([]int, len(groups))
	rowGroup := make([]int, tbl.NumRows())
	for gi, g := range groups {
		unitRows[gi] = g.Rows[0]
		for _, r := range g.Rows {
			rowGroup[r] = gi
		}
	}
	units := tbl.Select(unitRows)

	// Columns belonging to deeper levels are not broadcast-compatible with
	// this level's granularity and stay out of scope.
	deeper := make(map[string]bool)
	for _, b := range blocks[depth+1:] {
		deeper[b.name] = true
		for _, v := range b.vars {
			deeper[v] = true
		}
	}
	inherited := make(map[string][]any)
	for _, name := range units.Columns() {
		if deeper[name] {
			continue
		}
		col, _ := units.Column(name)
		inherited[name] = col
	}

	scope := newScope(spec.Name, len(groups), inherited)
	if err := evaluateVariables(spec, scope, &d.cfg); err != nil {
		return 0, err
	}

	insertAt := blockEnd(tbl, blocks, depth)
	for _, name := range scope.Names() {
		unitCol, lookupErr := scope.Lookup(name)
		if lookupErr != nil {
			return 0, lookupErr
		}
		flat := make([]any, tbl.NumRows())
		for r := range flat {
			flat[r] = unitCol[rowGroup[r]]
		}
		if tbl.Has(name) {
			if err := tbl.SetColumn(name, flat); err != nil {
				return 0, err
			}
			continue
		}
		if err := tbl.InsertColumn(insertAt, name, flat); err != nil {
			return 0, err
		}
		insertAt++
		blocks[depth].vars = append(blocks[depth].vars, name)
	}
	return len(groups), nil
}

// blockEnd returns the column index just past the given level's block, which
// is where modify-mode columns splice in.
func blockEnd(tbl *Table, blocks []levelBlock, depth int) int {
	deeper := make(map[string]bool)
	for _, b := range blocks[depth+1:] {
		deeper[b.name] = true
		for _, v := range b.vars {
			deeper[v] = true
		}
	}
	for i, name := range tbl.Columns() {
		if deeper[name] {
			return i
		}
	}
	return tbl.NumCols()
}

func appendScopeColumns(out *Table, scope *Scope) error {
	for _, name := range scope.Names() {
		values, err := scope.Lookup(name)
		if err != nil {
			return err
		}
		// A variable redeclaring an imported or cascaded column replaces it
		// in place, keeping its position.
		if out.Has(name) {
			if err := out.SetColumn(name, values); err != nil {
				return err
			}
			continue
		}
		if err := out.AppendColumn(name, values); err != nil {
			return err
		}
	}
	return nil
}

func variableNames(spec LevelSpec) []string {
	if len(spec.Variables) == 0 {
		return nil
	}
	out := make([]string, len(spec.Variables))
	for i, v := range spec.Variables {
		out[i] = v.Name
	}
	return out
}

// fillIDGaps keeps imported identifier values and labels only blank rows.
func fillIDGaps(level string, values []any) []any {
	out := make([]any, len(values))
	next := 1
	for i, v := range values {
		if v == nil || v == "" {
			out[i] = fmt.Sprintf("%s_%d", level, next)
			next++
			continue
		}
		out[i] = v
	}
	return out
}

func (d *Design) recordTrace(spec LevelSpec, n int) {
	if d.cfg.trace == nil {
		return
	}
	d.cfg.trace.record(spec.Name, n, variableNames(spec))
}
