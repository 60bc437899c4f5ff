package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/rbfmap/mesh"
)

// loadMeshFile reads a whitespace-delimited vertex file: a header line
// "numVertices dimension valueDimension", followed by one line per vertex
// "id x y z v1 v2 ...". Every rank is assumed to own every vertex it reads
// (single-rank CLI usage; splitting ownership across ranks is a
// coupling-adapter concern, not a file-format one). Parses tokens with
// bufio.Scanner/strconv and returns errors instead of panicking.
func loadMeshFile(path string) (*mesh.Mesh, *mesh.DataField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loadMeshFile: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, nil, fmt.Errorf("loadMeshFile: %s: empty file", path)
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 3 {
		return nil, nil, fmt.Errorf("loadMeshFile: %s: header must be \"numVertices dimension valueDimension\"", path)
	}
	numVertices, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, nil, fmt.Errorf("loadMeshFile: %s: bad vertex count: %w", path, err)
	}
	dimension, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, nil, fmt.Errorf("loadMeshFile: %s: bad dimension: %w", path, err)
	}
	valueDim, err := strconv.Atoi(header[2])
	if err != nil {
		return nil, nil, fmt.Errorf("loadMeshFile: %s: bad value dimension: %w", path, err)
	}

	m := mesh.New(strings.TrimSuffix(path, ".txt"), dimension)
	field := mesh.NewDataField(path, valueDim, numVertices)

	for i := 0; i < numVertices; i++ {
		if !scanner.Scan() {
			return nil, nil, fmt.Errorf("loadMeshFile: %s: expected %d vertex lines, found %d", path, numVertices, i)
		}
		tokens := strings.Fields(scanner.Text())
		if len(tokens) != 1+3+valueDim {
			return nil, nil, fmt.Errorf("loadMeshFile: %s: line %d: expected 1+3+%d fields, got %d", path, i+2, valueDim, len(tokens))
		}
		globalIndex, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, nil, fmt.Errorf("loadMeshFile: %s: line %d: bad id: %w", path, i+2, err)
		}
		var coords [3]float64
		for d := 0; d < 3; d++ {
			coords[d], err = strconv.ParseFloat(tokens[1+d], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("loadMeshFile: %s: line %d: bad coordinate: %w", path, i+2, err)
			}
		}
		localID := m.AddVertex(globalIndex, coords, true)
		for d := 0; d < valueDim; d++ {
			v, err := strconv.ParseFloat(tokens[4+d], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("loadMeshFile: %s: line %d: bad value: %w", path, i+2, err)
			}
			field.Values[localID*valueDim+d] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("loadMeshFile: %s: %w", path, err)
	}
	return m, field, nil
}

// writeResultFile overwrites path with the mapped field values, in the
// same header+rows format loadMeshFile reads, so a mapping's output can be
// fed back in as another mapping's input.
func writeResultFile(path string, m *mesh.Mesh, field *mesh.DataField) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeResultFile: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "%d %d %d\n", len(m.Vertices), m.Dimension, field.Dim)
	for _, v := range m.Vertices {
		fmt.Fprintf(w, "%d %g %g %g", v.GlobalIndex, v.Coords[0], v.Coords[1], v.Coords[2])
		for d := 0; d < field.Dim; d++ {
			fmt.Fprintf(w, " %g", field.Values[v.ID*field.Dim+d])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
