// Package hotspot proposes interactive hotspot rectangles over scene
// artwork. A hotspot is where the page wires a click to a transition
// trigger; authoring picks them from the proposals, the controller only ever
// sees the resulting trigger events.
package hotspot

import (
	"fmt"
	"image"
	"sort"
)

// Region is a proposed hotspot rectangle.
type Region struct {
	Rect  image.Rectangle
	Score float64 // 0.0-1.0, area-weighted edge density
}

// Detector is the interface for hotspot proposal strategies.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// NewDetector creates a detector by variant name.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "saliency":
		return nil, fmt.Errorf("saliency detector not yet implemented")
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// Propose runs a detector and returns at most maxCount regions, highest
// score first, overlapping candidates merged.
func Propose(det Detector, img image.Image, maxCount int) ([]Region, error) {
	regions, err := det.Detect(img)
	if err != nil {
		return nil, err
	}

	regions = mergeOverlapping(regions)
	sort.Slice(regions, func(i, j int) bool { return regions[i].Score > regions[j].Score })

	if maxCount > 0 && len(regions) > maxCount {
		regions = regions[:maxCount]
	}
	return regions, nil
}

func mergeOverlapping(regions []Region) []Region {
	merged := make([]Region, 0, len(regions))
	for _, r := range regions {
		absorbed := false
		for i := range merged {
			if r.Rect.Overlaps(merged[i].Rect) {
				merged[i].Rect = merged[i].Rect.Union(r.Rect)
				if r.Score > merged[i].Score {
					merged[i].Score = r.Score
				}
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, r)
		}
	}
	return merged
}
