package port

import (
	"context"

	"plansift/internal/domain"
)

// PDFGeometry is a PDF page's media box dimensions in PDF points.
type PDFGeometry struct {
	WidthPT  float64 `json:"width_pt"`
	HeightPT float64 `json:"height_pt"`
}

// PageSource abstracts the external storage collaborator that owns page
// bytes. Geometry comes from metadata recorded at upload time; this core
// never parses PDF headers itself.
type PageSource interface {
	ReadPDF(ctx context.Context, page domain.PageRef) ([]byte, error)
	ReadPageImage(ctx context.Context, page domain.PageRef) ([]byte, error)
	Geometry(ctx context.Context, page domain.PageRef) (*PDFGeometry, error)
}

// Detection is one text region returned by the fallback detector.
type Detection struct {
	BBox       domain.BBox `json:"bbox"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
}

// Detector abstracts the model-based text-region fallback. It is invoked
// only when the vector provider yields zero tokens.
type Detector interface {
	Detect(ctx context.Context, pageID string, imageBytes []byte) ([]Detection, error)
}

// TokenProvider produces text tokens for a page from one source.
type TokenProvider interface {
	Tokens(ctx context.Context, page domain.PageRef) ([]domain.TextToken, error)
}
