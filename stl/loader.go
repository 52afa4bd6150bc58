package stl

import (
	"encoding/binary"
	"log"
	"math"
	"os"

	"vulkan_engine/model"
	vm "vulkan_engine/vector_math"

	"github.com/pkg/errors"
)

const (
	headerSize   = 80
	countSize    = 4
	triangleSize = 50 // normal + 3 vertices (4 * 12 Byte) + 2 Byte attribute count
)

var ErrTruncated = errors.New("stl data truncated")

// ReadStlFile loads a binary STL file into a non-indexed mesh, see ParseStl.
func ReadStlFile(path string) (*model.Mesh, error) {
	log.Printf("Reading stl file %s", path)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read stl file %s", path)
	}
	mesh, err := ParseStl(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parse stl file %s", path)
	}
	return mesh, nil
}

// ParseStl decodes binary STL. Every triangle becomes three vertices carrying the facet normal, which is also
// used as the vertex color. Trailing bytes after the announced triangles are ignored.
func ParseStl(b []byte) (*model.Mesh, error) {
	if len(b) < headerSize+countSize {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes is shorter than the stl header", len(b))
	}
	header := b[:headerSize]
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+countSize])
	body := b[headerSize+countSize:]
	if uint64(len(body)) < uint64(tCnt)*triangleSize {
		return nil, errors.Wrapf(ErrTruncated, "header announces %d triangles (%d bytes), got %d bytes", tCnt, uint64(tCnt)*triangleSize, len(body))
	}
	log.Printf("Successfully read stl data, Header: '%s', Triangle Count: %d, Triangle memory size: %d KiB", header, tCnt, len(body)/1024)
	return toMesh(body, tCnt), nil
}

func toMesh(bytes []byte, triangleCnt uint32) *model.Mesh {
	v := make([]model.Vertex, 0, triangleCnt*3)
	for t := 0; t < int(triangleCnt); t++ {
		i := t * triangleSize
		normal := toVec3(bytes[i : i+12])
		for corner := 0; corner < 3; corner++ {
			off := i + 12 + corner*12
			v = append(v, model.Vertex{
				Position: toVec3(bytes[off : off+12]),
				Color:    normal,
				Normal:   normal,
			})
		}
	}
	return model.NewMesh(v, nil)
}

func toVec3(bytes []byte) vm.Vec3 {
	return vm.Vec3{
		X: toFloat32(bytes[:4]),
		Y: toFloat32(bytes[4:8]),
		Z: toFloat32(bytes[8:12]),
	}
}

func toFloat32(bytes []byte) float32 {
	bits := binary.LittleEndian.Uint32(bytes)
	return math.Float32frombits(bits)
}
