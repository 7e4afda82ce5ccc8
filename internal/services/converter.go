package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"
)

// ImageArtifact is the raster output of a conversion: the PNG payload
// plus an inline preview reference.
type ImageArtifact struct {
	File         []byte
	ImageDataURL string
}

// DocumentConverter renders the first page of a source document into an
// image suitable for display alongside the stored record. Pages beyond
// the first carry no weight in feedback generation.
type DocumentConverter interface {
	Convert(ctx context.Context, data []byte) (*ImageArtifact, error)
}

type pdfConverter struct {
	outputWidth int
}

func NewPDFConverter(outputWidth int) DocumentConverter {
	if outputWidth <= 0 {
		outputWidth = 1500
	}
	return &pdfConverter{outputWidth: outputWidth}
}

// Convert implements DocumentConverter. Every failure mode, including a
// renderer panic on a malformed document, comes back as a plain error so
// the pipeline reacts to all of them the same way.
func (c *pdfConverter) Convert(ctx context.Context, data []byte) (artifact *ImageArtifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("renderer fault: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	page, err := pdfReader.GetPage(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get first page: %w", err)
	}

	device := render.NewImageDevice()
	device.OutputWidth = c.outputWidth

	img, err := device.Render(page)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageArtifact{
		File:         buf.Bytes(),
		ImageDataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
