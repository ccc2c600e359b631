package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofem2d/mesh"
)

/*
ReadTelmaCurve reads a permeability table: a point count on the first line, then one "mu B" pair
per line.
*/
func ReadTelmaCurve(r io.Reader) (c *mesh.ReluctivityCurve, err error) {
	var (
		reader = bufio.NewReader(r)
		line   string
		count  int
	)
	if line, err = getLine(reader); err != nil {
		return
	}
	if count, err = strconv.Atoi(strings.TrimSpace(line)); err != nil {
		return nil, fmt.Errorf("unable to read point count from [%s]: %w", line, err)
	}
	if count < 2 {
		return nil, fmt.Errorf("curve needs at least two points, file declares %d", count)
	}
	B, mu := make([]float64, count), make([]float64, count)
	for i := 0; i < count; i++ {
		if line, err = getLine(reader); err != nil {
			return nil, fmt.Errorf("curve point %d of %d: %w", i, count, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("curve point %d: expected mu and B, have [%s]", i, line)
		}
		if mu[i], err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, fmt.Errorf("curve point %d: %w", i, err)
		}
		if B[i], err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("curve point %d: %w", i, err)
		}
	}
	return mesh.NewReluctivityCurve(B, mu)
}

func ReadTelmaCurveFile(filename string) (c *mesh.ReluctivityCurve, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadTelmaCurve(file)
}
