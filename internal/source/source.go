package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Source provides artwork pages for storyboard scenes and the preview
// exporter.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// FitzSource renders storyboard pages out of a PDF document.
type FitzSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzSource(path string) (*FitzSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzSource{doc: doc, path: path}, nil
}

func (f *FitzSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzSource) RenderPage(index int, dpi int) (image.Image, error) {
	// fitz documents are not safe for concurrent page rendering; open a
	// fresh handle so export workers do not serialize on each other.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzSource) Close() error {
	return f.doc.Close()
}
