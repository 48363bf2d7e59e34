package voxel

import (
	"math"
	"testing"
)

func TestPositionKeyPacking(t *testing.T) {
	tests := []struct {
		name string
		x, z int32
		want uint64
	}{
		{"origin", 0, 0, 0},
		{"x_one", 1, 0, 1 << 32},
		{"z_one", 0, 1, 1},
		{"negative_z", 0, -1, 0x00000000FFFFFFFF},
		{"negative_x", -1, 0, 0xFFFFFFFF00000000},
		{"min_max", math.MinInt32, math.MaxInt32, 0x800000007FFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PositionKey(tt.x, tt.z); got != tt.want {
				t.Errorf("PositionKey(%d, %d) = %#016x, want %#016x", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestPositionKeyInjective(t *testing.T) {
	edges := []int32{
		math.MinInt32, math.MinInt32 + 1, -65536, -2, -1, 0, 1, 2, 65535, math.MaxInt32 - 1, math.MaxInt32,
	}

	seen := make(map[uint64]ChunkPos)
	for _, x := range edges {
		for _, z := range edges {
			key := PositionKey(x, z)
			if prev, ok := seen[key]; ok {
				t.Fatalf("PositionKey collision: (%d,%d) and %v -> %#x", x, z, prev, key)
			}
			seen[key] = ChunkPos{X: x, Z: z}

			if back := PosFromKey(key); back != (ChunkPos{X: x, Z: z}) {
				t.Errorf("PosFromKey(PositionKey(%d,%d)) = %v", x, z, back)
			}
		}
	}
}

func TestPositionKeyPure(t *testing.T) {
	a := ChunkPos{X: -7, Z: 12}
	b := ChunkPos{X: -7, Z: 12}
	if a.Key() != b.Key() {
		t.Errorf("equal positions hash differently: %#x vs %#x", a.Key(), b.Key())
	}
	if a.Key() != PositionKey(-7, 12) {
		t.Error("Key() disagrees with PositionKey")
	}
}

func TestChunkPosOrigin(t *testing.T) {
	d := Dims{Axis: 16, Height: 64}
	got := ChunkPos{X: -2, Z: 3}.Origin(d)
	if got.X() != -32 || got.Y() != 0 || got.Z() != 48 {
		t.Errorf("Origin = %v, want [-32 0 48]", got)
	}
}

func TestFloorDivMod(t *testing.T) {
	tests := []struct {
		a, b     int
		div, mod int
	}{
		{0, 16, 0, 0},
		{15, 16, 0, 15},
		{16, 16, 1, 0},
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.div {
			t.Errorf("FloorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.div)
		}
		if got := Mod(tt.a, tt.b); got != tt.mod {
			t.Errorf("Mod(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.mod)
		}
	}
}

func TestSettingsClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{"in_range", Settings{SeaLevel: 10, Frequency: 0.5, Octaves: 3}, Settings{SeaLevel: 10, Frequency: 0.5, Octaves: 3}},
		{"low", Settings{SeaLevel: -4, Frequency: 0, Octaves: 0}, Settings{SeaLevel: 0, Frequency: MinFrequency, Octaves: 1}},
		{"high", Settings{SeaLevel: 500, Frequency: 99, Octaves: 40}, Settings{SeaLevel: 64, Frequency: MaxFrequency, Octaves: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(64); got != tt.want {
				t.Errorf("Clamp = %+v, want %+v", got, tt.want)
			}
		})
	}

	if d := DefaultSettings(64); d.SeaLevel != 16 || d.Octaves != 4 {
		t.Errorf("DefaultSettings(64) = %+v", d)
	}
}
