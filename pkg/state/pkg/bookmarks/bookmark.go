package bookmarks

import (
	"fmt"
	"math"
	"time"
)

// Type tells whether a bookmark marks a single moment or a phrase.
type Type string

const (
	PointType  Type = "POINT"
	RegionType Type = "REGION"
)

// Bookmark is a saved point or phrase. Only the fields matching Type are set.
type Bookmark struct {
	ID        string    `json:"ID"`
	Type      Type      `json:"Type"`
	Time      *float64  `json:"Time,omitempty"`
	Start     *float64  `json:"Start,omitempty"`
	End       *float64  `json:"End,omitempty"`
	Label     string    `json:"Label"`
	Tag       string    `json:"Tag,omitempty"`
	CreatedAt time.Time `json:"CreatedAt"`
}

// FormatTime renders seconds as m:ss, flooring fractions. Negative and non-finite values render as 0:00.
func FormatTime(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		sec = 0
	}

	s := int(math.Floor(sec))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func pointLabel(t float64) string {
	return fmt.Sprintf("Point @ %s", FormatTime(t))
}

func phraseLabel(start, end float64) string {
	return fmt.Sprintf("Phrase %s → %s", FormatTime(start), FormatTime(end))
}
