package s3

import (
	"context"
	"encoding/json"
	"fmt"

	"plansift/internal/domain"
	"plansift/internal/port"
)

// PageSource implements port.PageSource on top of object storage using
// fixed key conventions:
//
//	projects/<project>/pdfs/<pdf>.pdf            source document
//	projects/<project>/pdfs/<pdf>.pdf.meta.json  geometry sidecar (written at upload)
//	projects/<project>/pages/<page>.png          page raster
type PageSource struct {
	storage port.ObjectStorage
	bucket  string
}

// NewPageSource creates a storage-backed page source.
func NewPageSource(storage port.ObjectStorage, bucket string) *PageSource {
	return &PageSource{storage: storage, bucket: bucket}
}

var _ port.PageSource = (*PageSource)(nil)

func (s *PageSource) ReadPDF(ctx context.Context, page domain.PageRef) ([]byte, error) {
	return s.storage.Download(ctx, s.bucket, s.pdfKey(page))
}

func (s *PageSource) ReadPageImage(ctx context.Context, page domain.PageRef) ([]byte, error) {
	key := fmt.Sprintf("projects/%s/pages/%s.png", page.ProjectID, page.PageID)
	return s.storage.Download(ctx, s.bucket, key)
}

// Geometry reads the sidecar metadata recorded when the PDF was uploaded.
// The media box never changes after upload, so the sidecar is authoritative.
func (s *PageSource) Geometry(ctx context.Context, page domain.PageRef) (*port.PDFGeometry, error) {
	data, err := s.storage.Download(ctx, s.bucket, s.pdfKey(page)+".meta.json")
	if err != nil {
		return nil, fmt.Errorf("reading geometry sidecar: %w", err)
	}
	var geom port.PDFGeometry
	if err := json.Unmarshal(data, &geom); err != nil {
		return nil, fmt.Errorf("decoding geometry sidecar: %w", err)
	}
	return &geom, nil
}

func (s *PageSource) pdfKey(page domain.PageRef) string {
	return fmt.Sprintf("projects/%s/pdfs/%s.pdf", page.ProjectID, page.PDFID)
}
