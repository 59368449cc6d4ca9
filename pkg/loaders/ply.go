package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	HasNormals bool
	HasColors  bool

	// Property indices for efficient access
	PositionIndices [3]int // Indices of x, y, z properties
	NormalIndices   [3]int // Indices of nx, ny, nz properties
	ColorIndices    [3]int // Indices of red, green, blue properties
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the raw data loaded from a PLY file
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle, polygons fan-triangulated)
	Normals  []core.Vec3 // Per-vertex normals - empty if not present
	Colors   []core.Vec3 // Per-vertex colors normalized to [0,1] - empty if not present
}

// LoadPLY loads a PLY file into a mesh. Missing normals are generated from
// the faces and missing colors default to white.
func LoadPLY(filename string) (*geometry.Mesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	mesh, err := data.Mesh()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	core.Logger().Info("loaded PLY mesh",
		"file", filename,
		"vertices", len(data.Vertices),
		"triangles", len(data.Faces)/3,
		"elapsed", time.Since(startTime))

	return mesh, nil
}

// ReadPLY parses ascii and binary PLY data from r
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024) // 1MB buffer

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch header.Format {
	case "binary_little_endian":
		values = &binaryValueReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{r: reader, order: binary.BigEndian}
	case "ascii":
		values = &asciiValueReader{r: reader}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}

	data, err := readPLYBody(values, header)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return data, nil
}

// Mesh converts the raw data into a validated mesh
func (d *PLYData) Mesh() (*geometry.Mesh, error) {
	vertices := make([]geometry.Vertex, len(d.Vertices))
	for i, p := range d.Vertices {
		vertices[i].Position = p
		if len(d.Normals) == len(d.Vertices) {
			vertices[i].Normal = d.Normals[i]
		}
		if len(d.Colors) == len(d.Vertices) {
			vertices[i].Color = d.Colors[i]
		}
	}
	return geometry.NewMesh(vertices, d.Faces, nil)
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{
		VertexProps:     make([]PLYProperty, 0),
		FaceProps:       make([]PLYProperty, 0),
		PositionIndices: [3]int{-1, -1, -1},
	}

	var currentElement string
	first := true

	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		line := strings.TrimSpace(raw)

		if first {
			if line != "ply" {
				return nil, fmt.Errorf("missing ply magic number")
			}
			first = false
			continue
		}

		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element definition: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}

			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("unsupported element %q", currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				header.indexVertexProperty(prop.Name, len(header.VertexProps)-1)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	for i, idx := range header.PositionIndices {
		if idx < 0 && header.VertexCount > 0 {
			return nil, fmt.Errorf("vertex element missing %c property", "xyz"[i])
		}
	}

	return header, nil
}

func (h *PLYHeader) indexVertexProperty(name string, index int) {
	switch name {
	case "x":
		h.PositionIndices[0] = index
	case "y":
		h.PositionIndices[1] = index
	case "z":
		h.PositionIndices[2] = index
	case "nx":
		h.HasNormals = true
		h.NormalIndices[0] = index
	case "ny":
		h.HasNormals = true
		h.NormalIndices[1] = index
	case "nz":
		h.HasNormals = true
		h.NormalIndices[2] = index
	case "red", "r":
		h.HasColors = true
		h.ColorIndices[0] = index
	case "green", "g":
		h.HasColors = true
		h.ColorIndices[1] = index
	case "blue", "b":
		h.HasColors = true
		h.ColorIndices[2] = index
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unsupported list types %s %s", prop.ListType, prop.DataType)
		}
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
		if getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, fmt.Errorf("unsupported data type: %s", prop.Type)
		}
	}

	return prop, nil
}

func readPLYBody(values valueReader, header *PLYHeader) (*PLYData, error) {
	data := &PLYData{
		Vertices: make([]core.Vec3, 0, header.VertexCount),
		Faces:    make([]int, 0, header.FaceCount*3), // Assuming triangular faces
	}
	if header.HasNormals {
		data.Normals = make([]core.Vec3, 0, header.VertexCount)
	}
	if header.HasColors {
		data.Colors = make([]core.Vec3, 0, header.VertexCount)
	}

	props := make([]float64, len(header.VertexProps))
	for i := 0; i < header.VertexCount; i++ {
		for j, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := values.read(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}
			props[j] = v
		}

		pi := header.PositionIndices
		data.Vertices = append(data.Vertices, core.NewVec3(props[pi[0]], props[pi[1]], props[pi[2]]))

		if header.HasNormals {
			ni := header.NormalIndices
			data.Normals = append(data.Normals, core.NewVec3(props[ni[0]], props[ni[1]], props[ni[2]]))
		}
		if header.HasColors {
			ci := header.ColorIndices
			data.Colors = append(data.Colors, core.NewVec3(
				colorComponent(props[ci[0]], header.VertexProps[ci[0]].Type),
				colorComponent(props[ci[1]], header.VertexProps[ci[1]].Type),
				colorComponent(props[ci[2]], header.VertexProps[ci[2]].Type),
			))
		}
	}

	var polygon []int
	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return nil, fmt.Errorf("failed to skip face property %s at face %d: %w", prop.Name, i, err)
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("failed to read face vertex count at face %d: %w", i, err)
			}
			if count < 3 {
				return nil, fmt.Errorf("face %d has %d vertices", i, int(count))
			}

			polygon = polygon[:0]
			for k := 0; k < int(count); k++ {
				idx, err := values.read(prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("failed to read face indices at face %d: %w", i, err)
				}
				polygon = append(polygon, int(idx))
			}

			// Fan-triangulate polygons from the first vertex
			for k := 1; k+1 < len(polygon); k++ {
				data.Faces = append(data.Faces, polygon[0], polygon[k], polygon[k+1])
			}
		}
	}

	return data, nil
}

// colorComponent maps integer color channels from [0,255] to [0,1]
func colorComponent(v float64, dataType string) float64 {
	switch dataType {
	case "float", "float32", "double", "float64":
		return v
	default:
		return v / 255.0
	}
}

func skipProperty(values valueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipList(values valueReader, prop PLYProperty) error {
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// getTypeSize returns the size in bytes of a PLY data type, 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// valueReader yields successive scalar values of the body as float64
type valueReader interface {
	read(dataType string) (float64, error)
}

type binaryValueReader struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValueReader) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	raw := b.buf[:size]
	if _, err := io.ReadFull(b.r, raw); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(raw))), nil
	case "double", "float64":
		return math.Float64frombits(b.order.Uint64(raw)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(raw))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(raw)), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(raw))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(raw)), nil
	case "char", "int8":
		return float64(int8(raw[0])), nil
	default: // uchar, uint8
		return float64(raw[0]), nil
	}
}

type asciiValueReader struct {
	r      *bufio.Reader
	tokens []string
}

func (a *asciiValueReader) read(dataType string) (float64, error) {
	for len(a.tokens) == 0 {
		line, err := a.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		a.tokens = strings.Fields(line)
	}

	token := a.tokens[0]
	a.tokens = a.tokens[1:]
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, token)
	}
	return v, nil
}
