package engine

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadOBJ parses a restricted OBJ subset:
//
//	v  x y z        -- vertex position, accumulated in order
//	vn x y z        -- vertex normal, accumulated in order
//	f  a/b/c ...    -- a triangle (or fan of triangles for an n-gon),
//	                   1-based vertex/texture/normal indices; texture
//	                   indices are read but discarded
//
// All other lines are ignored. A missing or malformed file yields an
// empty mesh rather than an error: downstream builders must tolerate
// nT=0, and the demo's frame loop must never crash on a bad asset.
func LoadOBJ(path string) *MeshStore {
	mesh := NewMeshStore()

	f, err := os.Open(path)
	if err != nil {
		return mesh
	}
	defer f.Close()

	var positions []Point
	var normals []Point
	objIdx := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if p, ok := parseVec3(fields[1:]); ok {
				positions = append(positions, p)
			}
		case "vn":
			if n, ok := parseVec3(fields[1:]); ok {
				normals = append(normals, n)
			}
		case "f":
			verts := fields[1:]
			if len(verts) < 3 {
				continue
			}
			idx := make([]faceVertex, 0, len(verts))
			ok := true
			for _, v := range verts {
				fv, fvOK := parseFaceVertex(v, len(positions), len(normals))
				if !fvOK {
					ok = false
					break
				}
				idx = append(idx, fv)
			}
			if !ok {
				continue
			}
			// Fan-triangulate n-gons: (0,1,2), (0,2,3), ...
			for i := 1; i+1 < len(idx); i++ {
				a, b, c := idx[0], idx[i], idx[i+1]
				appendFaceTriangle(mesh, positions, normals, a, b, c, objIdx)
				objIdx++
			}
		}
	}

	mesh.computeCentroids()
	return mesh
}

type faceVertex struct {
	posIdx    int
	normalIdx int // -1 if absent
}

func parseVec3(fields []string) (Point, bool) {
	if len(fields) < 3 {
		return Point{}, false
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	z, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return Point{}, false
	}
	return Point{X: x, Y: y, Z: z}, true
}

// parseFaceVertex parses one "a/b/c" face-vertex token. Texture index b
// is ignored entirely. 1-based indices are converted to 0-based; negative
// (relative) indices are resolved against the counts accumulated so far.
func parseFaceVertex(tok string, numPos, numNormals int) (faceVertex, bool) {
	parts := strings.Split(tok, "/")
	if len(parts) == 0 || parts[0] == "" {
		return faceVertex{}, false
	}

	posIdx, err := strconv.Atoi(parts[0])
	if err != nil {
		return faceVertex{}, false
	}
	posIdx = resolveIndex(posIdx, numPos)
	if posIdx < 0 || posIdx >= numPos {
		return faceVertex{}, false
	}

	normalIdx := -1
	if len(parts) >= 3 && parts[2] != "" {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			ni := resolveIndex(n, numNormals)
			if ni >= 0 && ni < numNormals {
				normalIdx = ni
			}
		}
	}

	return faceVertex{posIdx: posIdx, normalIdx: normalIdx}, true
}

func resolveIndex(i, count int) int {
	if i > 0 {
		return i - 1
	}
	if i < 0 {
		return count + i
	}
	return -1
}

func appendFaceTriangle(mesh *MeshStore, positions, normals []Point, a, b, c faceVertex, objIdx int) {
	v0, v1, v2 := positions[a.posIdx], positions[b.posIdx], positions[c.posIdx]

	var n0, n1, n2 Point
	if a.normalIdx >= 0 && b.normalIdx >= 0 && c.normalIdx >= 0 {
		n0, n1, n2 = normals[a.normalIdx], normals[b.normalIdx], normals[c.normalIdx]
	} else {
		// No normals supplied for this face: fall back to the flat
		// geometric normal so AverageNormal still behaves sanely.
		flat := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		n0, n1, n2 = flat, flat, flat
	}

	pi := len(mesh.P)
	mesh.P = append(mesh.P, v0, v1, v2)
	ni := len(mesh.N)
	mesh.N = append(mesh.N, n0, n1, n2)

	mesh.Tri = append(mesh.Tri, Triangle{
		V0: pi, V1: pi + 1, V2: pi + 2,
		N0: ni, N1: ni + 1, N2: ni + 2,
		ObjIdx: objIdx,
	})
}
