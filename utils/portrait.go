package utils

import (
	"fmt"
	"sort"
)

/*
BuildPortrait derives the sparsity pattern of the strict lower triangle from element connectivity.

For every element the vertex indices are sorted, and for each pair (low, high) the column low is recorded
in row high. Rows are kept sorted and free of duplicates, then flattened:

	ig[i+1] = ig[i] + len(row i),  jg[ig[i]:ig[i+1]] = row i

so the columns in jg are strictly ascending within each row.
*/
func BuildPortrait(n int, elements [][]int) (ig, jg []int, err error) {
	var (
		rows  = make([][]int, n)
		local = make([]int, 0, 4)
	)
	for k, verts := range elements {
		local = append(local[:0], verts...)
		sort.Ints(local)
		for i, v := range local {
			if v < 0 || v >= n {
				err = fmt.Errorf("element %d references vertex %d, valid range is [0,%d): %w",
					k, v, n, ErrInvalidElement)
				return
			}
			if i > 0 && local[i-1] == v {
				err = fmt.Errorf("element %d repeats vertex %d: %w", k, v, ErrInvalidElement)
				return
			}
		}
		for i := 1; i < len(local); i++ {
			for j := 0; j < i; j++ {
				rows[local[i]] = insertColumn(rows[local[i]], local[j])
			}
		}
	}
	ig = make([]int, n+1)
	for i, row := range rows {
		ig[i+1] = ig[i] + len(row)
	}
	jg = make([]int, ig[n])
	for i, row := range rows {
		copy(jg[ig[i]:ig[i+1]], row)
	}
	return
}

func insertColumn(row []int, col int) []int {
	var pos int
	for pos < len(row) && row[pos] < col {
		pos++
	}
	if pos < len(row) && row[pos] == col {
		return row
	}
	row = append(row, 0)
	copy(row[pos+1:], row[pos:])
	row[pos] = col
	return row
}
