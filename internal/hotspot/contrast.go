package hotspot

import (
	"image"
	"image/color"
	"math"
)

// ContrastDetector finds candidate regions by Sobel edge detection followed
// by dilation and connected-component extraction. High-contrast clusters in
// the artwork are where a clickable fragment usually sits.
type ContrastDetector struct {
	MinArea       int     // minimum region area in pixels²
	EdgeThreshold float64 // gradient magnitude threshold
	DilateSize    int
	DilatePasses  int
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinArea:       500,
		EdgeThreshold: 30.0,
		DilateSize:    5,
		DilatePasses:  2,
	}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	gray := toGrayscale(img)
	edges := sobel(gray, d.EdgeThreshold)
	dilated := dilate(edges, d.DilateSize, d.DilatePasses)
	rects := components(dilated)

	total := float64(gray.Bounds().Dx() * gray.Bounds().Dy())
	regions := make([]Region, 0, len(rects))
	for _, rect := range rects {
		area := rect.Dx() * rect.Dy()
		if area < d.MinArea {
			continue
		}
		// Larger regions score higher, capped so a full-page region does
		// not drown everything else.
		score := math.Min(float64(area)/total*8, 1.0)
		regions = append(regions, Region{Rect: rect, Score: score})
	}

	return regions, nil
}

func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

var sobelX = [3][3]float64{
	{-1, 0, 1},
	{-2, 0, 2},
	{-1, 0, 1},
}

var sobelY = [3][3]float64{
	{-1, -2, -1},
	{0, 0, 0},
	{1, 2, 1},
}

func sobel(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					gx += pixel * sobelX[ky+1][kx+1]
					gy += pixel * sobelY[ky+1][kx+1]
				}
			}
			if math.Sqrt(gx*gx+gy*gy) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return edges
}

func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := img
	half := kernelSize / 2

	for iter := 0; iter < iterations; iter++ {
		next := image.NewGray(bounds)
		for y := bounds.Min.Y + half; y < bounds.Max.Y-half; y++ {
			for x := bounds.Min.X + half; x < bounds.Max.X-half; x++ {
				maxVal := uint8(0)
				for ky := -half; ky <= half; ky++ {
					for kx := -half; kx <= half; kx++ {
						if v := result.GrayAt(x+kx, y+ky).Y; v > maxVal {
							maxVal = v
						}
					}
				}
				next.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}
		result = next
	}

	return result
}

func components(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([][]bool, bounds.Dy())
	for i := range visited {
		visited[i] = make([]bool, bounds.Dx())
	}

	var rects []image.Rectangle
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 && !visited[y-bounds.Min.Y][x-bounds.Min.X] {
				rects = append(rects, flood(img, visited, x, y))
			}
		}
	}

	return rects
}

func flood(img *image.Gray, visited [][]bool, startX, startY int) image.Rectangle {
	bounds := img.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < bounds.Min.X || p.X >= bounds.Max.X || p.Y < bounds.Min.Y || p.Y >= bounds.Max.Y {
			continue
		}
		if visited[p.Y-bounds.Min.Y][p.X-bounds.Min.X] || img.GrayAt(p.X, p.Y).Y <= 128 {
			continue
		}
		visited[p.Y-bounds.Min.Y][p.X-bounds.Min.X] = true

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}
