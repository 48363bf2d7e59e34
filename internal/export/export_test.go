package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/world"
	"github.com/OCharnyshevich/voxelgd/internal/world/gen"
)

func singleBlock() mesh.Geometry {
	g := voxel.NewGrid(voxel.Dims{Axis: 2, Height: 2})
	g.Set(0, 0, 0, voxel.Solid)
	return mesh.Build(g, nil)
}

// objLines groups OBJ lines by their leading keyword.
func objLines(t *testing.T, r io.Reader) map[string][]string {
	t.Helper()
	out := map[string][]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		key, _, _ := strings.Cut(line, " ")
		out[key] = append(out[key], line)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestWriteOBJ(t *testing.T) {
	geo := singleBlock()
	objs := []Object{
		{Pos: voxel.ChunkPos{X: 1, Z: -1}, Origin: mgl32.Vec3{3, 0, -3}, Geometry: geo},
		{Pos: voxel.ChunkPos{X: 2, Z: -1}, Origin: mgl32.Vec3{6, 0, -3}, Geometry: geo},
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, objs); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}
	lines := objLines(t, &buf)

	if got := lines["o"]; len(got) != 2 || got[0] != "o chunk_1_-1" || got[1] != "o chunk_2_-1" {
		t.Errorf("objects = %v", got)
	}
	for key, want := range map[string]int{"v": 48, "vt": 48, "vn": 48, "f": 24} {
		if len(lines[key]) != want {
			t.Errorf("%s lines = %d, want %d", key, len(lines[key]), want)
		}
	}

	// +Z face, corner (0,0,1), offset by the origin.
	if lines["v"][0] != "v 3 0 -2" {
		t.Errorf("first vertex = %q, want %q", lines["v"][0], "v 3 0 -2")
	}
	if lines["vn"][0] != "vn 0 0 1" {
		t.Errorf("first normal = %q", lines["vn"][0])
	}
	if lines["vt"][2] != "vt 1 1" {
		t.Errorf("third uv = %q", lines["vt"][2])
	}
	if lines["f"][0] != "f 1/1/1 3/3/3 2/2/2" {
		t.Errorf("first face = %q", lines["f"][0])
	}
	if lines["f"][12] != "f 25/25/25 27/27/27 26/26/26" {
		t.Errorf("second object first face = %q", lines["f"][12])
	}
}

func slabWorld(t *testing.T, seaLevel int) *world.World {
	t.Helper()
	w := world.New(world.Options{
		Dims:           voxel.Dims{Axis: 3, Height: 3},
		RenderDistance: 1,
		Generator:      func(int64) gen.Generator { return gen.NewFlatGenerator() },
		Settings:       voxel.Settings{SeaLevel: seaLevel, Frequency: 0.01, Octaves: 1},
		RebuildDelay:   time.Hour,
	})
	w.Rebuild()
	return w
}

func readExport(t *testing.T, path string) []byte {
	t.Helper()
	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func TestWriteWorld(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := slabWorld(t, 1)

	tests := []struct {
		name       string
		compressed bool
	}{
		{"world.obj", false},
		{"world.obj.zst", true},
	}

	var contents [][]byte
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := e.WriteWorld(tt.name, w, "flat")
			if err != nil {
				t.Fatalf("WriteWorld: %v", err)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if got := bytes.HasPrefix(raw, []byte("# voxelgd")); got == tt.compressed {
				t.Errorf("plain text header present = %v, compressed = %v", got, tt.compressed)
			}

			data := readExport(t, path)
			contents = append(contents, data)
			lines := objLines(t, bytes.NewReader(data))
			if len(lines["o"]) != 9 {
				t.Errorf("objects = %d, want 9", len(lines["o"]))
			}
			// 3x3x1 slab: 9 top, 9 bottom, 12 side faces.
			if len(lines["f"]) != 9*30*2 {
				t.Errorf("triangles = %d, want %d", len(lines["f"]), 9*30*2)
			}
		})
	}

	if len(contents) == 2 && !bytes.Equal(contents[0], contents[1]) {
		t.Error("compressed export differs from plain export")
	}

	var m Manifest
	raw, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if m.Faces != 270 || len(m.Chunks) != 9 || m.Seed != world.DefaultSeed || m.Generator != "flat" {
		t.Errorf("manifest = %+v", m)
	}
	if m.Chunks[0].Solid != 9 {
		t.Errorf("chunk solid = %d, want 9", m.Chunks[0].Solid)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWriteWorldSkipsEmptyChunks(t *testing.T) {
	e, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	w := slabWorld(t, 0)

	if objs := Objects(w); len(objs) != 0 {
		t.Fatalf("Objects() = %d, want 0 for an all-air world", len(objs))
	}
	path, err := e.WriteWorld("air.obj", w, "")
	if err != nil {
		t.Fatal(err)
	}
	lines := objLines(t, bytes.NewReader(readExport(t, path)))
	if len(lines["o"]) != 0 || len(lines["v"]) != 0 {
		t.Errorf("all-air export has %d objects and %d vertices", len(lines["o"]), len(lines["v"]))
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := New(dir, nil); err != nil {
		t.Fatalf("New: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
