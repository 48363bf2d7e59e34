package voxel

// Settings control block generation.
type Settings struct {
	SeaLevel  int
	Frequency float32
	Octaves   int
}

const (
	MinFrequency = 0.0001
	MaxFrequency = 10
	MinOctaves   = 1
	MaxOctaves   = 12
)

// DefaultSettings returns the settings a new world starts with for the given height.
func DefaultSettings(height int) Settings {
	return Settings{
		SeaLevel:  height / 4,
		Frequency: 0.01,
		Octaves:   4,
	}
}

// Clamp returns s with every field forced into its valid range.
// Sea level is bounded by the grid height.
func (s Settings) Clamp(height int) Settings {
	s.SeaLevel = clamp(s.SeaLevel, 0, height)
	s.Frequency = clamp(s.Frequency, MinFrequency, MaxFrequency)
	s.Octaves = clamp(s.Octaves, MinOctaves, MaxOctaves)
	return s
}

func clamp[T int | float32](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
