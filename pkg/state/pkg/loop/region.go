package loop

// RegionKind tells which overlay shape represents the loop range.
type RegionKind string

const (
	NoRegion      RegionKind = "none"
	MarkerARegion RegionKind = "markerA"
	MarkerBRegion RegionKind = "markerB"
	RangeRegion   RegionKind = "range"

	EnabledRangeColor  = "rgba(59, 130, 246, 0.18)"
	DisabledRangeColor = "rgba(113, 113, 122, 0.12)"
	MarkerColor        = "rgba(16, 185, 129, 0.9)"
)

// Region is the overlay shape derived from a loop snapshot. It never holds state of its own.
type Region struct {
	Kind    RegionKind `json:"Kind"`
	Start   float64    `json:"Start"`
	End     float64    `json:"End"`
	Enabled bool       `json:"Enabled"`
	Color   string     `json:"Color"`
	Drag    bool       `json:"Drag"`
	Resize  bool       `json:"Resize"`
}

// Project derives the single overlay region for the snapshot.
// Markers are zero-width and fixed, a range can be dragged and resized.
func Project(s Snapshot) Region {
	switch {
	case s.A != nil && s.B != nil:
		a, b, _ := s.Bounds()
		color := DisabledRangeColor
		if s.Enabled {
			color = EnabledRangeColor
		}

		return Region{
			Kind:    RangeRegion,
			Start:   a,
			End:     b,
			Enabled: s.Enabled,
			Color:   color,
			Drag:    true,
			Resize:  true,
		}
	case s.A != nil:
		return Region{
			Kind:  MarkerARegion,
			Start: *s.A,
			End:   *s.A,
			Color: MarkerColor,
		}
	case s.B != nil:
		return Region{
			Kind:  MarkerBRegion,
			Start: *s.B,
			End:   *s.B,
			Color: MarkerColor,
		}
	default:
		return Region{
			Kind: NoRegion,
		}
	}
}
