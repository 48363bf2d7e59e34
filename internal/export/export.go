// Package export writes chunk meshes to disk as Wavefront OBJ.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/world"
)

// ZstdSuffix marks output paths that are compressed.
const ZstdSuffix = ".zst"

// Object is one chunk mesh placed in world space.
type Object struct {
	Pos      voxel.ChunkPos
	Origin   mgl32.Vec3
	Geometry mesh.Geometry
}

// Name returns the OBJ object name.
func (o Object) Name() string {
	return fmt.Sprintf("chunk_%d_%d", o.Pos.X, o.Pos.Z)
}

// Manifest summarises an export.
type Manifest struct {
	Seed      int64           `json:"seed"`
	Axis      int             `json:"axis"`
	Height    int             `json:"height"`
	Chunks    []ChunkManifest `json:"chunks"`
	Faces     int             `json:"faces"`
	Mesh      string          `json:"mesh"`
	Generator string          `json:"generator,omitempty"`
}

// ChunkManifest describes one exported chunk.
type ChunkManifest struct {
	X     int32 `json:"x"`
	Z     int32 `json:"z"`
	Solid int   `json:"solid"`
	Faces int   `json:"faces"`
}

// Exporter writes meshes under a directory.
type Exporter struct {
	dir string
	log *slog.Logger
}

// New creates an Exporter rooted at dir, creating it as needed.
func New(dir string, log *slog.Logger) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Exporter{dir: dir, log: log}, nil
}

// Objects collects the non-empty chunk meshes of w in position order.
func Objects(w *world.World) []Object {
	d := w.Dims()
	var out []Object
	w.ForEachChunk(func(c *world.Chunk) {
		geo := c.Geometry()
		if geo.Empty() {
			return
		}
		out = append(out, Object{Pos: c.Pos(), Origin: c.Pos().Origin(d), Geometry: geo.Clone()})
	})
	return out
}

// WriteWorld writes every non-empty chunk of w to name and a manifest.json
// beside it. Names ending in ZstdSuffix are zstd compressed. It returns the
// mesh path.
func (e *Exporter) WriteWorld(name string, w *world.World, generator string) (string, error) {
	objs := Objects(w)
	path := filepath.Join(e.dir, name)
	if err := e.atomicWrite(path, func(wr io.Writer) error { return WriteOBJ(wr, objs) }); err != nil {
		return "", err
	}

	m := Manifest{
		Seed:      w.Seed(),
		Axis:      w.Dims().Axis,
		Height:    w.Dims().Height,
		Mesh:      name,
		Generator: generator,
	}
	w.ForEachChunk(func(c *world.Chunk) {
		faces := c.Geometry().FaceCount()
		m.Chunks = append(m.Chunks, ChunkManifest{
			X:     c.Pos().X,
			Z:     c.Pos().Z,
			Solid: c.Grid().SolidCount(),
			Faces: faces,
		})
		m.Faces += faces
	})
	if err := e.atomicWriteJSON(filepath.Join(e.dir, "manifest.json"), &m); err != nil {
		return "", err
	}

	e.log.Info("exported world mesh", "path", path, "objects", len(objs), "faces", m.Faces)
	return path, nil
}

// WriteOBJ encodes objs as OBJ text. Vertex positions are offset by each
// object's origin; face indices are 1-based and shared by v, vt and vn.
func WriteOBJ(w io.Writer, objs []Object) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# voxelgd chunk mesh")

	base := 0
	for _, o := range objs {
		g := o.Geometry
		fmt.Fprintf(bw, "o %s\n", o.Name())
		for _, v := range g.Vertices {
			p := v.Add(o.Origin)
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
		for _, uv := range g.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
		}
		for _, n := range g.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		for i := 0; i+2 < len(g.Indices); i += 3 {
			a := base + int(g.Indices[i]) + 1
			b := base + int(g.Indices[i+1]) + 1
			c := base + int(g.Indices[i+2]) + 1
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
		base += len(g.Vertices)
	}
	return bw.Flush()
}

// Open opens an exported file, decompressing it when the name ends in ZstdSuffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ZstdSuffix) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &zstdFile{dec: dec, f: f}, nil
}

type zstdFile struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// atomicWrite streams into a temp file and renames it over path.
func (e *Exporter) atomicWrite(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	err = writeMaybeCompressed(f, strings.HasSuffix(path, ZstdSuffix), write)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func writeMaybeCompressed(f *os.File, compress bool, write func(io.Writer) error) error {
	if !compress {
		if err := write(f); err != nil {
			return fmt.Errorf("write mesh: %w", err)
		}
		return nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := write(enc); err != nil {
		enc.Close()
		return fmt.Errorf("write mesh: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush zstd: %w", err)
	}
	return nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (e *Exporter) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
