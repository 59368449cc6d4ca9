package renderer

import (
	"fmt"
	"time"
)

// FrameStats contains statistics about one rendered frame
type FrameStats struct {
	Objects           int // Objects submitted
	ObjectsCulled     int // Objects rejected by their bounds before any triangle work
	TrianglesIn       int // Triangles of the objects that survived culling
	BackfaceCulled    int // Triangles facing away from the camera
	Degenerate        int // Triangles with zero area in view space
	ClippedAway       int // Triangles entirely outside the view volume
	ClipEmitted       int // Triangles produced by the clipper
	Rasterized        int // Screen triangles handed to the raster stage
	FragmentsShaded   int // Fragments that passed the depth test
	FragmentsOccluded int // Fragments that failed the depth test
	Duration          time.Duration
}

// Add accumulates the counters of other into s
func (s *FrameStats) Add(other FrameStats) {
	s.Objects += other.Objects
	s.ObjectsCulled += other.ObjectsCulled
	s.TrianglesIn += other.TrianglesIn
	s.BackfaceCulled += other.BackfaceCulled
	s.Degenerate += other.Degenerate
	s.ClippedAway += other.ClippedAway
	s.ClipEmitted += other.ClipEmitted
	s.Rasterized += other.Rasterized
	s.FragmentsShaded += other.FragmentsShaded
	s.FragmentsOccluded += other.FragmentsOccluded
	s.Duration += other.Duration
}

// LogAttrs returns the counters as slog key-value pairs
func (s FrameStats) LogAttrs() []any {
	return []any{
		"objects", s.Objects,
		"objectsCulled", s.ObjectsCulled,
		"triangles", s.TrianglesIn,
		"backface", s.BackfaceCulled,
		"degenerate", s.Degenerate,
		"clippedAway", s.ClippedAway,
		"rasterized", s.Rasterized,
		"shaded", s.FragmentsShaded,
		"occluded", s.FragmentsOccluded,
		"duration", s.Duration,
	}
}

func (s FrameStats) String() string {
	return fmt.Sprintf("%d/%d objects, %d triangles in, %d rasterized, %d fragments shaded, %d occluded in %v",
		s.Objects-s.ObjectsCulled, s.Objects, s.TrianglesIn, s.Rasterized,
		s.FragmentsShaded, s.FragmentsOccluded, s.Duration)
}
