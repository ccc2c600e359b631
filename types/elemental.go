package types

import (
	"fmt"
	"math"
)

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// Two 32 bit unsigned halves, smaller index in the low word
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

/*
EdgeInt stores the edge vertices in their original order, the sign carries the direction
*/
type EdgeInt int64

func NewEdgeInt(verts [2]int) (packed EdgeInt) {
	var (
		limit = math.MaxUint32 >> 1 // leaves room for the sign bit of an int64
		sign  bool
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into an int64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		sign = true
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeInt(i1 + i2<<32)
	if sign {
		packed = -packed
	}
	return
}

func (e EdgeInt) GetVertices() (verts [2]int) {
	var (
		eTmp EdgeInt
		sign bool
	)
	if e < 0 {
		sign = true
		e = -e
	}
	eTmp = e >> 32
	verts[1] = int(eTmp)
	verts[0] = int(e - eTmp*(1<<32))
	if sign {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

func (e EdgeInt) GetKey() (ek EdgeKey) {
	ek = NewEdgeKey(e.GetVertices())
	return
}

/*
Polyline is an ordered vertex chain. Consecutive pairs are its edges.
*/
type Polyline []int

func (pl Polyline) Edges() (edges []EdgeKey) {
	if len(pl) < 2 {
		return
	}
	edges = make([]EdgeKey, 0, len(pl)-1)
	for i := 1; i < len(pl); i++ {
		edges = append(edges, NewEdgeKey([2]int{pl[i-1], pl[i]}))
	}
	return
}

func (pl Polyline) Closed() bool {
	return len(pl) > 2 && pl[0] == pl[len(pl)-1]
}

// PolylineFromEdges chains directed edges end to start, the way boundary markers are listed
func PolylineFromEdges(edges []EdgeInt) (pl Polyline, err error) {
	if len(edges) == 0 {
		return
	}
	first := edges[0].GetVertices()
	pl = Polyline{first[0], first[1]}
	for i := 1; i < len(edges); i++ {
		verts := edges[i].GetVertices()
		if verts[0] != pl[len(pl)-1] {
			err = fmt.Errorf("edge %d [%d,%d] does not continue the chain ending at %d",
				i, verts[0], verts[1], pl[len(pl)-1])
			return
		}
		pl = append(pl, verts[1])
	}
	return
}

/*
ChainEdges joins undirected edges into as few polylines as a greedy walk finds. Each walk starts at
a vertex with an odd number of unused edges when there is one, so open chains are walked end to end
and closed loops come back to their first vertex.
*/
func ChainEdges(edges []EdgeKey) (chains []Polyline) {
	var (
		adj   = make(map[int][]int)
		order []int
		used  = make([]bool, len(edges))
		free  = make(map[int]int)
	)
	for i, ek := range edges {
		for _, v := range ek.GetVertices(false) {
			if _, ok := adj[v]; !ok {
				order = append(order, v)
			}
			adj[v] = append(adj[v], i)
			free[v]++
		}
	}
	next := func(v int) (e, w int, ok bool) {
		for _, e = range adj[v] {
			if !used[e] {
				verts := edges[e].GetVertices(false)
				if w = verts[0]; w == v {
					w = verts[1]
				}
				return e, w, true
			}
		}
		return
	}
	for remaining := len(edges); remaining > 0; {
		start := -1
		for _, v := range order {
			if free[v]%2 == 1 {
				start = v
				break
			}
		}
		if start < 0 {
			for e := range edges {
				if !used[e] {
					start = edges[e].GetVertices(false)[0]
					break
				}
			}
		}
		pl := Polyline{start}
		for cur := start; ; {
			e, w, ok := next(cur)
			if !ok {
				break
			}
			used[e] = true
			free[cur]--
			free[w]--
			remaining--
			pl = append(pl, w)
			cur = w
		}
		chains = append(chains, pl)
	}
	return
}
