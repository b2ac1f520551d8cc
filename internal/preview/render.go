package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"

	"github.com/tuuundra/oddysseia-sub000/internal/system"
)

var backgroundColor = color.RGBA{R: 8, G: 8, B: 12, A: 255}

func fillBackground(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)
}

// blendLayer composites src over dst with a uniform opacity. Layers are
// rendered on transparent scratch buffers, so fully transparent pixels are
// skipped rather than darkening the accumulated frame.
func blendLayer(dst, src *image.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}

	bounds := dst.Bounds().Intersect(src.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		di := dst.PixOffset(bounds.Min.X, y)
		si := src.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x, di, si = x+1, di+4, si+4 {
			sa := float64(src.Pix[si+3]) / 255.0
			if sa == 0 {
				continue
			}
			a := sa * opacity
			for c := 0; c < 3; c++ {
				sv := float64(src.Pix[si+c])
				dv := float64(dst.Pix[di+c])
				dst.Pix[di+c] = uint8(math.Round(sv*a + dv*(1-a)))
			}
		}
	}
}

const (
	shareCodeSize   = 96
	shareCodeMargin = 16
)

// overlayShareCode stamps a QR code for the share link into the bottom-right
// corner of the frame.
func overlayShareCode(frame *image.RGBA, url string) error {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("share code: %w", err)
	}
	code := qr.Image(shareCodeSize)

	bounds := frame.Bounds()
	origin := image.Pt(
		bounds.Max.X-shareCodeSize-shareCodeMargin,
		bounds.Max.Y-shareCodeSize-shareCodeMargin,
	)
	dst := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(shareCodeSize, shareCodeSize))}
	draw.Draw(frame, dst.Intersect(bounds), code, code.Bounds().Min, draw.Src)
	return nil
}

const (
	sheetColumns = 5
	sheetThumbW  = 320
)

// contactSheet renders a thumbnail grid of evenly spaced frames so a run can
// be reviewed at a glance without scrubbing through the PNGs.
func (e *Exporter) contactSheet(specs []frameSpec) error {
	count := sheetColumns * sheetColumns
	if count > len(specs) {
		count = len(specs)
	}
	if count == 0 {
		return nil
	}

	thumbH := sheetThumbW * e.cfg.Preview.Height / e.cfg.Preview.Width
	rows := (count + sheetColumns - 1) / sheetColumns
	sheet := image.NewRGBA(image.Rect(0, 0, sheetColumns*sheetThumbW, rows*thumbH))
	fillBackground(sheet)

	sceneOrder := e.ctrl.Registry().Scenes()
	for i := 0; i < count; i++ {
		spec := specs[i*len(specs)/count]
		frame, err := e.renderFrame(spec, sceneOrder)
		if err != nil {
			return err
		}

		cell := image.Rect(0, 0, sheetThumbW, thumbH).
			Add(image.Pt((i%sheetColumns)*sheetThumbW, (i/sheetColumns)*thumbH))
		xdraw.ApproxBiLinear.Scale(sheet, cell, frame, frame.Bounds(), xdraw.Src, nil)
		system.PutFrame(frame)
	}

	path := filepath.Join(e.cfg.Preview.OutDir, "contact_sheet.png")
	if err := writePNG(path, sheet); err != nil {
		return err
	}
	fmt.Printf("[*] Contact sheet: %s\n", path)
	return nil
}
