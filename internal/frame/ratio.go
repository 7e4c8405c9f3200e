package frame

import "math"

// RatioName is the label of a supported frame aspect ratio, e.g. "4x3".
type RatioName string

// Supported frame aspect ratios. All names are landscape-oriented (width first).
const (
	Ratio3x2  RatioName = "3x2"
	Ratio4x3  RatioName = "4x3"
	Ratio5x4  RatioName = "5x4"
	Ratio1x1  RatioName = "1x1"
	Ratio7x5  RatioName = "7x5"
	Ratio16x9 RatioName = "16x9"
	Ratio2x1  RatioName = "2x1"
	Ratio3x1  RatioName = "3x1"
)

// AspectRatio pairs a ratio name with its canonical width/height value.
type AspectRatio struct {
	Name  RatioName `json:"name"`
	Value float64   `json:"value"`
}

// catalog is the ordered list of ratios the frame product line supports.
// The order is significant: when two entries are equally close to a photo's
// ratio, the one listed first wins.
var catalog = []AspectRatio{
	{Name: Ratio3x2, Value: 3.0 / 2.0},
	{Name: Ratio4x3, Value: 4.0 / 3.0},
	{Name: Ratio5x4, Value: 5.0 / 4.0},
	{Name: Ratio1x1, Value: 1.0},
	{Name: Ratio7x5, Value: 7.0 / 5.0},
	{Name: Ratio16x9, Value: 16.0 / 9.0},
	{Name: Ratio2x1, Value: 2.0},
	{Name: Ratio3x1, Value: 3.0},
}

// Catalog returns a copy of the supported aspect ratios in priority order.
func Catalog() []AspectRatio {
	out := make([]AspectRatio, len(catalog))
	copy(out, catalog)
	return out
}

// LookupRatio returns the catalog entry for name.
func LookupRatio(name RatioName) (AspectRatio, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r, true
		}
	}
	return AspectRatio{}, false
}

// IsValid reports whether the name is present in the catalog.
func (n RatioName) IsValid() bool {
	_, ok := LookupRatio(n)
	return ok
}

// String returns the ratio label.
func (n RatioName) String() string {
	return string(n)
}

// FindClosestAspectRatio returns the catalog ratio whose value is nearest to
// ratio. Distances are compared with a strict less-than, so on an exact tie
// the entry that appears first in the catalog is returned. NaN input matches
// nothing closer than the first entry and therefore yields Ratio3x2.
func FindClosestAspectRatio(ratio float64) RatioName {
	best := catalog[0].Name
	bestDiff := math.Abs(ratio - catalog[0].Value)

	for _, candidate := range catalog[1:] {
		diff := math.Abs(ratio - candidate.Value)
		if diff < bestDiff {
			best = candidate.Name
			bestDiff = diff
		}
	}
	return best
}
