package token

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"plansift/internal/domain"
	"plansift/internal/port"
)

// VectorProviderConfig holds the poppler binary and the target raster.
type VectorProviderConfig struct {
	Pdftotext      string // binary name or absolute path; if empty -> "pdftotext"
	TargetWidthPX  int
	TargetHeightPX int
}

// VectorProvider extracts exact word tokens from a page's embedded PDF
// text via `pdftotext -bbox` and maps PDF-point coordinates onto the page
// raster. Vector tokens carry confidence 1.0.
type VectorProvider struct {
	source port.PageSource
	runner Runner
	cfg    VectorProviderConfig
	logger *zap.Logger
}

// NewVectorProvider creates a vector-PDF token provider.
func NewVectorProvider(source port.PageSource, runner Runner, cfg VectorProviderConfig, logger *zap.Logger) *VectorProvider {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &VectorProvider{source: source, runner: runner, cfg: cfg, logger: logger}
}

// bboxDoc mirrors the XHTML structure emitted by `pdftotext -bbox`.
type bboxDoc struct {
	XMLName xml.Name   `xml:"html"`
	Pages   []bboxPage `xml:"body>doc>page"`
}

type bboxPage struct {
	Width  float64    `xml:"width,attr"`
	Height float64    `xml:"height,attr"`
	Words  []bboxWord `xml:"word"`
}

type bboxWord struct {
	XMin float64 `xml:"xMin,attr"`
	YMin float64 `xml:"yMin,attr"`
	XMax float64 `xml:"xMax,attr"`
	YMax float64 `xml:"yMax,attr"`
	Text string  `xml:",chardata"`
}

// Tokens extracts word tokens for one page. A missing or unreadable PDF
// yields domain.ErrSourceUnavailable so the chain can proceed to the
// fallback; an empty page yields an empty slice and no error.
func (p *VectorProvider) Tokens(ctx context.Context, page domain.PageRef) ([]domain.TextToken, error) {
	pdfBytes, err := p.source.ReadPDF(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pdf for page %s: %v", domain.ErrSourceUnavailable, page.PageID, err)
	}

	geom, err := p.source.Geometry(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: reading geometry for page %s: %v", domain.ErrSourceUnavailable, page.PageID, err)
	}
	if geom.WidthPT <= 0 || geom.HeightPT <= 0 {
		return nil, fmt.Errorf("%w: page %s has degenerate geometry", domain.ErrSourceUnavailable, page.PageID)
	}

	out, err := p.extractBBoxXML(ctx, pdfBytes, page.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext for page %s: %v", domain.ErrSourceUnavailable, page.PageID, err)
	}

	var doc bboxDoc
	if err := xml.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing bbox output for page %s: %v", domain.ErrSourceUnavailable, page.PageID, err)
	}
	if len(doc.Pages) == 0 {
		return nil, nil
	}

	// Scale PDF points to the page raster independently per axis.
	sx := float64(p.cfg.TargetWidthPX) / geom.WidthPT
	sy := float64(p.cfg.TargetHeightPX) / geom.HeightPT

	words := doc.Pages[0].Words
	tokens := make([]domain.TextToken, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		bbox := domain.NewBBox(
			w.XMin*sx,
			w.YMin*sy,
			(w.XMax-w.XMin)*sx,
			(w.YMax-w.YMin)*sy,
		)
		if !bbox.Valid() {
			continue
		}
		tokens = append(tokens, domain.TextToken{
			Text:       text,
			BBox:       bbox,
			Confidence: 1.0,
			Source:     domain.SourceVector,
			Page:       page,
		})
	}

	p.logger.Debug("vector tokens extracted",
		zap.String("page_id", page.PageID),
		zap.Int("count", len(tokens)))
	return tokens, nil
}

// extractBBoxXML writes the PDF to a scratch file and runs pdftotext
// restricted to the page's number, capturing the XHTML on stdout.
func (p *VectorProvider) extractBBoxXML(ctx context.Context, pdfBytes []byte, pageNumber int) ([]byte, error) {
	tmp, err := os.CreateTemp("", "plansift-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating scratch pdf: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(pdfBytes); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("writing scratch pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing scratch pdf: %w", err)
	}

	n := strconv.Itoa(pageNumber)
	return p.runner.Run(ctx, p.cfg.Pdftotext,
		"-bbox", "-f", n, "-l", n, filepath.Clean(tmp.Name()), "-")
}
