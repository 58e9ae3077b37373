// Package spatial holds the indexes the arena keeps next to its state: a
// broad-phase grid for contact tests and a ranked list for scoreboards.
package spatial

import (
	"cmp"
	"math"
	"slices"
)

// Kind tags what a grid entry points at.
type Kind uint8

const (
	KindCreature Kind = iota
	KindPlayer
)

// Ref is one indexed entity: its kind and its position in the state slice
// holding that kind.
type Ref struct {
	Kind  Kind
	Index int
}

// Grid buckets entity refs into square cells over the arena. It is rebuilt
// with Reset and Insert whenever the entities move; it never owns entities.
type Grid struct {
	cell    float64
	cols    int
	rows    int
	buckets [][]Ref
	found   []Ref
	n       int
}

// NewGrid covers a width x height arena with cells of the given edge.
func NewGrid(width, height, cell float64) *Grid {
	cols := max(1, int(math.Ceil(width/cell)))
	rows := max(1, int(math.Ceil(height/cell)))
	return &Grid{
		cell:    cell,
		cols:    cols,
		rows:    rows,
		buckets: make([][]Ref, cols*rows),
	}
}

// Reset empties every bucket and keeps their capacity.
func (g *Grid) Reset() {
	for i := range g.buckets {
		g.buckets[i] = g.buckets[i][:0]
	}
	g.n = 0
}

// Insert indexes entity index of kind at (x, y). Positions off the arena
// land in the nearest edge cell.
func (g *Grid) Insert(kind Kind, index int, x, y float64) {
	b := g.row(y)*g.cols + g.col(x)
	g.buckets[b] = append(g.buckets[b], Ref{Kind: kind, Index: index})
	g.n++
}

// Len is the number of entries since the last Reset.
func (g *Grid) Len() int { return g.n }

// Near returns the refs of kind in every cell touched by the square of
// half-edge reach around (x, y), ordered by index. Callers still check the
// exact distance. The slice is reused by the next call.
func (g *Grid) Near(kind Kind, x, y, reach float64) []Ref {
	g.found = g.found[:0]
	c0, c1 := g.col(x-reach), g.col(x+reach)
	r0, r1 := g.row(y-reach), g.row(y+reach)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			for _, ref := range g.buckets[r*g.cols+c] {
				if ref.Kind == kind {
					g.found = append(g.found, ref)
				}
			}
		}
	}
	slices.SortFunc(g.found, func(a, b Ref) int { return cmp.Compare(a.Index, b.Index) })
	return g.found
}

func (g *Grid) col(x float64) int {
	return min(max(int(math.Floor(x/g.cell)), 0), g.cols-1)
}

func (g *Grid) row(y float64) int {
	return min(max(int(math.Floor(y/g.cell)), 0), g.rows-1)
}
