/*
Package table implements the table reconstructor: given detected
horizontal/vertical ruling-line segments and the page's spans, it finds
table bounding rectangles, builds the cell grid, labels each cell's edges,
computes row/column merges, and routes glyphs falling inside a cell into
that cell's own line/paragraph assembly (spec §4.6).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package table

import (
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/lines"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/trace"
)

func tracer() tracing.Trace {
	return trace.P("table")
}

// slack is the tolerance, in page units, used throughout the reconstructor
// for "does this segment endpoint belong to this rect/axis value" tests
// (spec §4.6 steps 2, 3, 5).
const slack = 2.0

// minJointPoints is the minimum number of horizontal/vertical intersection
// points a candidate rectangle must contain to be treated as a table
// (spec §4.6 step 1).
const minJointPoints = 5

// Cell is one grid cell of a reconstructed table.
type Cell struct {
	Rect                     geom.Rect
	Left, Right, Top, Bottom bool
	ExtendRight, ExtendDown  int
	Lines                    []*lines.Line
	Paragraphs               []*paragraphs.Paragraph
	Row, Col                 int
	spans                    []*glyph.Span
	owner                    *Cell
}

// IsContinuation reports whether c is a continuation cell: one missing
// its left or top edge, owned by another cell's merge span.
func (c *Cell) IsContinuation() bool { return !c.Left || !c.Top }

// Table is a reconstructed rectangular grid of cells.
type Table struct {
	Origin               geom.Point
	CellsNumX, CellsNumY int
	Cells                []*Cell // row-major
}

func (t *Table) cell(row, col int) *Cell {
	return t.Cells[row*t.CellsNumX+col]
}

// cellAt returns the atomic cell whose rect contains p, or nil.
func (t *Table) cellAt(p geom.Point) *Cell {
	for _, c := range t.Cells {
		if c.Rect.ContainsHalfOpen(p) {
			return c
		}
	}
	return nil
}

// Rect returns the bounding rectangle of the whole table grid.
func (t *Table) Rect() geom.Rect {
	r := geom.Empty()
	for _, c := range t.Cells {
		r = r.Union(c.Rect)
	}
	return r
}

// Reconstruct finds table rectangles among hSegs/vSegs, builds their cell
// grids, and routes every span on the page whose glyphs fall inside a
// table's cells out of the page-level span set (spec §4.6). It returns the
// reconstructed tables and the spans remaining on the page after routing.
// When opts.LayoutAnalysis is false, table reconstruction is skipped
// entirely and pageSpans is returned unchanged (spec §6, "layout_analysis").
func Reconstruct(pageSpans []*glyph.Span, hSegs, vSegs []geom.Rect, opts option.Options) ([]*Table, []*glyph.Span) {
	if !opts.LayoutAnalysis {
		return nil, pageSpans
	}

	rects := boundingRects(hSegs, vSegs)
	var tables []*Table
	remaining := pageSpans
	for _, r := range rects {
		t := buildTable(r, hSegs, vSegs)
		if t == nil {
			continue
		}
		tables = append(tables, t)
		remaining = routeGlyphs(remaining, t)
	}
	for _, t := range tables {
		for _, c := range t.Cells {
			if c.owner != c || len(c.spans) == 0 {
				continue
			}
			c.Lines = lines.Assemble(c.spans)
			c.Paragraphs = paragraphs.Assemble(c.Lines)
		}
	}
	return tables, remaining
}

// boundingRects finds candidate table rectangles as the bounding boxes of
// the connected components formed by horizontal/vertical segments that
// intersect one another, then filters to those with at least
// minJointPoints joint points (spec §4.6 step 1). The OpenCV contour
// detection the original source runs over a rasterized mask is out of
// scope (spec §1); this derives the same candidate rectangles directly
// from the segment geometry the core is handed.
func boundingRects(hSegs, vSegs []geom.Rect) []geom.Rect {
	n := len(hSegs) + len(vSegs)
	if n == 0 {
		return nil
	}
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	// index h segments [0,len(hSegs)), v segments [len(hSegs), n)
	for hi, h := range hSegs {
		for vi, v := range vSegs {
			if segmentsJoint(h, v) {
				union(hi, len(hSegs)+vi)
			}
		}
	}

	groups := map[int][]int{}
	for i := 0; i < n; i++ {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	var rects []geom.Rect
	for _, members := range groups {
		r := geom.Empty()
		for _, i := range members {
			if i < len(hSegs) {
				r = r.Union(hSegs[i])
			} else {
				r = r.Union(vSegs[i-len(hSegs)])
			}
		}
		if !r.IsValid() {
			continue
		}
		if countJoints(r, hSegs, vSegs) < minJointPoints {
			continue
		}
		rects = append(rects, r)
	}
	return rects
}

// segmentsJoint reports whether horizontal segment h and vertical segment
// v intersect (within slack), i.e. form a joint point.
func segmentsJoint(h, v geom.Rect) bool {
	y := h.Min.Y
	x := v.Min.X
	if x < h.Min.X-slack || x > h.Max.X+slack {
		return false
	}
	if y < v.Min.Y-slack || y > v.Max.Y+slack {
		return false
	}
	return true
}

// countJoints counts intersections between a horizontal and a vertical
// segment whose joint point lies within rect (with slack), per spec §4.6
// step 1's filtering criterion.
func countJoints(rect geom.Rect, hSegs, vSegs []geom.Rect) int {
	count := 0
	for _, h := range hSegs {
		for _, v := range vSegs {
			if !segmentsJoint(h, v) {
				continue
			}
			p := geom.Point{X: v.Min.X, Y: h.Min.Y}
			if within(rect, p) {
				count++
			}
		}
	}
	return count
}

func within(r geom.Rect, p geom.Point) bool {
	return p.X >= r.Min.X-slack && p.X <= r.Max.X+slack &&
		p.Y >= r.Min.Y-slack && p.Y <= r.Max.Y+slack
}

// buildTable constructs one table's cell grid from the segments restricted
// to rect, or returns nil per the failure policy of spec §4.6/§7 (empty
// rows or cols axis after merge).
func buildTable(rect geom.Rect, allH, allV []geom.Rect) *Table {
	hSegs := restrictTo(rect, allH)
	vSegs := restrictTo(rect, allV)

	rows0 := axisValues(rect.Max.Y, rect.Min.Y, hSegs, func(r geom.Rect) float64 { return r.Min.Y }, true)
	cols0 := axisValues(rect.Min.X, rect.Max.X, vSegs, func(r geom.Rect) float64 { return r.Min.X }, false)
	if len(rows0) < 2 || len(cols0) < 2 {
		tracer().Debugf("skipping table rect %v: empty row/col axis", rect)
		return nil
	}

	numRows := len(rows0) - 1
	numCols := len(cols0) - 1
	t := &Table{
		Origin:    geom.Point{X: cols0[0], Y: rows0[0]},
		CellsNumX: numCols,
		CellsNumY: numRows,
		Cells:     make([]*Cell, numRows*numCols),
	}
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			c := &Cell{
				Rect: geom.Rect{
					Min: geom.Point{X: cols0[j], Y: rows0[i+1]},
					Max: geom.Point{X: cols0[j+1], Y: rows0[i]},
				},
				ExtendRight: 1,
				ExtendDown:  1,
				Row:         i,
				Col:         j,
			}
			c.owner = c
			t.Cells[i*numCols+j] = c
		}
	}

	labelEdges(t, rows0, cols0, hSegs, vSegs)
	computeMerges(t)
	return t
}

// restrictTo keeps only segments whose endpoints lie inside rect, with
// slack on each side (spec §4.6 step 2).
func restrictTo(rect geom.Rect, segs []geom.Rect) []geom.Rect {
	out := make([]geom.Rect, 0, len(segs))
	for _, s := range segs {
		if within(rect, s.Min) && within(rect, s.Max) {
			out = append(out, s)
		}
	}
	return out
}

// axisValues collects joint/boundary coordinates for one axis (spec §4.6
// step 3): the rect's own two bounds plus every segment coordinate along
// extract(seg), deduplicated via a sorted set and then merged within
// slack. descending controls sort order (rows sort descending, cols
// ascending).
func axisValues(bound1, bound2 float64, segs []geom.Rect, extract func(geom.Rect) float64, descending bool) []float64 {
	set := treeset.NewWith(utils.Float64Comparator)
	set.Add(bound1, bound2)
	for _, s := range segs {
		set.Add(extract(s))
	}
	raw := set.Values()
	vals := make([]float64, len(raw))
	for i, v := range raw {
		vals[i] = v.(float64)
	}
	// treeset.Values() is ascending; rows need descending order.
	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	}
	return mergeWithinTolerance(vals)
}

// mergeWithinTolerance replaces successive values within slack of one
// another by their mean (spec §4.6 step 3).
func mergeWithinTolerance(vals []float64) []float64 {
	if len(vals) == 0 {
		return vals
	}
	out := make([]float64, 0, len(vals))
	cur := vals[0]
	n := 1
	for i := 1; i < len(vals); i++ {
		if abs(vals[i]-cur/float64(n)) <= slack {
			cur += vals[i]
			n++
			continue
		}
		out = append(out, cur/float64(n))
		cur, n = vals[i], 1
	}
	out = append(out, cur/float64(n))
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// labelEdges sets each cell's Left/Right/Top/Bottom flags from the
// restricted segment lists, then sets the outer border unconditionally
// (spec §4.6 step 5).
func labelEdges(t *Table, rows0, cols0 []float64, hSegs, vSegs []geom.Rect) {
	for _, v := range vSegs {
		j := indexOf(cols0, v.Min.X)
		if j < 0 {
			continue
		}
		rLo, rHi := rowRangeFor(rows0, v.Min.Y, v.Max.Y)
		if j < len(cols0)-1 {
			for i := rLo; i <= rHi; i++ {
				t.cell(i, j).Left = true
			}
		}
		if j > 0 {
			for i := rLo; i <= rHi; i++ {
				t.cell(i, j-1).Right = true
			}
		}
	}
	for _, h := range hSegs {
		i := indexOf(rows0, h.Min.Y)
		if i < 0 {
			continue
		}
		cLo, cHi := colRangeFor(cols0, h.Min.X, h.Max.X)
		if i < len(rows0)-1 {
			for j := cLo; j <= cHi; j++ {
				t.cell(i, j).Top = true
			}
		}
		if i > 0 {
			for j := cLo; j <= cHi; j++ {
				t.cell(i-1, j).Bottom = true
			}
		}
	}

	lastRow := t.CellsNumY - 1
	lastCol := t.CellsNumX - 1
	for i := 0; i < t.CellsNumY; i++ {
		t.cell(i, 0).Left = true
		t.cell(i, lastCol).Right = true
	}
	for j := 0; j < t.CellsNumX; j++ {
		t.cell(0, j).Top = true
		t.cell(lastRow, j).Bottom = true
	}
}

// indexOf finds the index in axis whose value matches v within slack, or
// -1.
func indexOf(axis []float64, v float64) int {
	for i, a := range axis {
		if abs(a-v) <= slack {
			return i
		}
	}
	return -1
}

// rowRangeFor returns the inclusive row-index range spanned by a vertical
// extent [yLo, yHi] against the (descending) rows0 axis.
func rowRangeFor(rows0 []float64, yLo, yHi float64) (lo, hi int) {
	lo, hi = -1, -1
	for i := 0; i < len(rows0)-1; i++ {
		top, bottom := rows0[i], rows0[i+1]
		if top <= yHi+slack && bottom >= yLo-slack {
			if lo == -1 {
				lo = i
			}
			hi = i
		}
	}
	if lo == -1 {
		return 0, -1
	}
	return lo, hi
}

// colRangeFor returns the inclusive column-index range spanned by a
// horizontal extent [xLo, xHi] against the (ascending) cols0 axis.
func colRangeFor(cols0 []float64, xLo, xHi float64) (lo, hi int) {
	lo, hi = -1, -1
	for j := 0; j < len(cols0)-1; j++ {
		left, right := cols0[j], cols0[j+1]
		if left >= xLo-slack && right <= xHi+slack {
			if lo == -1 {
				lo = j
			}
			hi = j
		}
	}
	if lo == -1 {
		return 0, -1
	}
	return lo, hi
}

// computeMerges walks the grid row-by-row, left to right, assigning each
// continuation cell to its owning predecessor and incrementing that
// predecessor's ExtendRight/ExtendDown (spec §4.6 step 6).
func computeMerges(t *Table) {
	colOwner := make([]*Cell, t.CellsNumX) // last cell with Top==true, per column
	for i := 0; i < t.CellsNumY; i++ {
		var curRowOwner *Cell
		for j := 0; j < t.CellsNumX; j++ {
			c := t.cell(i, j)
			if c.Left {
				curRowOwner = c
			} else if curRowOwner != nil {
				c.owner = curRowOwner
				curRowOwner.ExtendRight++
			}
			if c.Top {
				colOwner[j] = c
			} else if colOwner[j] != nil {
				c.owner = colOwner[j]
				colOwner[j].ExtendDown++
			}
		}
	}
}

// routeGlyphs partitions every glyph of every span in spans between the
// table's cells (routed to the owning cell when the atomic cell it falls
// into is a continuation) and the page. Spans left non-empty after
// purging routed glyphs remain on the page (spec §4.6 step 7).
func routeGlyphs(spans []*glyph.Span, t *Table) []*glyph.Span {
	remaining := make([]*glyph.Span, 0, len(spans))
	for _, s := range spans {
		byOwner := map[*Cell][]glyph.Char{}
		for i := range s.Chars {
			ch := s.Chars[i]
			atomic := t.cellAt(ch.Post)
			if atomic == nil {
				continue
			}
			owner := atomic.owner
			byOwner[owner] = append(byOwner[owner], ch)
			s.MarkRemoved(i)
		}
		for owner, chars := range byOwner {
			ns := &glyph.Span{
				CTM: s.CTM, TRM: s.TRM,
				FontName: s.FontName, Bold: s.Bold, Italic: s.Italic,
				WMode: s.WMode,
				Chars: chars,
			}
			owner.spans = append(owner.spans, ns)
		}
		s.Purge()
		if !s.Empty() {
			remaining = append(remaining, s)
		}
	}
	return remaining
}
