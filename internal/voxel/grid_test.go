package voxel

import (
	"errors"
	"testing"
)

func TestNewGridLength(t *testing.T) {
	tests := []struct {
		name string
		dims Dims
	}{
		{"default", DefaultDims()},
		{"cube3", Dims{Axis: 3, Height: 3}},
		{"tall", Dims{Axis: 2, Height: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.dims)
			want := tt.dims.Axis * tt.dims.Axis * tt.dims.Height
			if g.Len() != want {
				t.Errorf("Len() = %d, want %d", g.Len(), want)
			}
			if n := g.SolidCount(); n != 0 {
				t.Errorf("SolidCount() = %d, want 0 (new grid is air)", n)
			}
		})
	}
}

func TestGridIndexLayout(t *testing.T) {
	d := Dims{Axis: 4, Height: 3}

	tests := []struct {
		x, y, z int
		want    int
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 1},
		{0, 0, 1, 4},
		{0, 1, 0, 16},
		{3, 2, 3, 3 + 3*4 + 2*16},
	}
	for _, tt := range tests {
		if got := d.Index(tt.x, tt.y, tt.z); got != tt.want {
			t.Errorf("Index(%d,%d,%d) = %d, want %d", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}

func TestGridSetAndGet(t *testing.T) {
	g := NewGrid(Dims{Axis: 4, Height: 4})

	if err := g.Set(1, 2, 3, Solid); err != nil {
		t.Fatalf("Set: %v", err)
	}
	b, err := g.At(1, 2, 3)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if !b.IsSolid() {
		t.Error("At(1,2,3) should be solid")
	}
	if !g.Solid(1, 2, 3) {
		t.Error("Solid(1,2,3) = false, want true")
	}
	if g.Solid(3, 2, 1) {
		t.Error("Solid(3,2,1) = true, want false")
	}
}

func TestGridOutOfRange(t *testing.T) {
	g := NewGrid(Dims{Axis: 2, Height: 2})

	coords := [][3]int{{-1, 0, 0}, {2, 0, 0}, {0, -1, 0}, {0, 2, 0}, {0, 0, -1}, {0, 0, 2}}
	for _, c := range coords {
		if _, err := g.At(c[0], c[1], c[2]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("At%v error = %v, want ErrOutOfRange", c, err)
		}
		if err := g.Set(c[0], c[1], c[2], Solid); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Set%v error = %v, want ErrOutOfRange", c, err)
		}
		if g.Solid(c[0], c[1], c[2]) {
			t.Errorf("Solid%v = true, want false for out-of-range", c)
		}
	}
}

func TestGridUnallocated(t *testing.T) {
	var g Grid

	if g.Allocated() {
		t.Fatal("zero Grid should not be allocated")
	}
	if _, err := g.At(0, 0, 0); !errors.Is(err, ErrUnallocated) {
		t.Errorf("At error = %v, want ErrUnallocated", err)
	}
	if err := g.Set(0, 0, 0, Solid); !errors.Is(err, ErrUnallocated) {
		t.Errorf("Set error = %v, want ErrUnallocated", err)
	}
	if err := g.Fill(func(_, _, _ int) bool { return true }); !errors.Is(err, ErrUnallocated) {
		t.Errorf("Fill error = %v, want ErrUnallocated", err)
	}
	if g.Solid(0, 0, 0) {
		t.Error("Solid on unallocated grid should read as air")
	}

	var nilGrid *Grid
	if nilGrid.Allocated() {
		t.Error("nil *Grid should not be allocated")
	}
}

func TestGridFillOrder(t *testing.T) {
	g := NewGrid(Dims{Axis: 2, Height: 2})

	var visited [][3]int
	err := g.Fill(func(x, y, z int) bool {
		visited = append(visited, [3]int{x, y, z})
		return y == 1
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	want := [][3]int{
		{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1},
		{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1},
	}
	if len(visited) != len(want) {
		t.Fatalf("visited %d blocks, want %d", len(visited), len(want))
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, visited[i], want[i])
		}
	}
	if n := g.SolidCount(); n != 4 {
		t.Errorf("SolidCount() = %d, want 4", n)
	}

	g.Reset()
	if n := g.SolidCount(); n != 0 {
		t.Errorf("SolidCount() after Reset = %d, want 0", n)
	}
	if g.Len() != 8 {
		t.Errorf("Len() after Reset = %d, want 8", g.Len())
	}
}
