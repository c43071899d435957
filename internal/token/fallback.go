package token

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"plansift/internal/domain"
	"plansift/internal/port"
)

// FallbackProvider produces model-detected tokens from the page raster.
// It is only consulted when the vector provider yields zero tokens.
type FallbackProvider struct {
	source   port.PageSource
	detector port.Detector
	logger   *zap.Logger
}

// NewFallbackProvider creates a model-detection token provider.
func NewFallbackProvider(source port.PageSource, detector port.Detector, logger *zap.Logger) *FallbackProvider {
	return &FallbackProvider{source: source, detector: detector, logger: logger}
}

// Tokens reads the page image and asks the detector for text regions.
func (p *FallbackProvider) Tokens(ctx context.Context, page domain.PageRef) ([]domain.TextToken, error) {
	img, err := p.source.ReadPageImage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: reading page image for %s: %v", domain.ErrSourceUnavailable, page.PageID, err)
	}

	detections, err := p.detector.Detect(ctx, page.PageID, img)
	if err != nil {
		return nil, fmt.Errorf("detecting text regions for page %s: %w", page.PageID, err)
	}

	tokens := make([]domain.TextToken, 0, len(detections))
	for _, d := range detections {
		if d.Text == "" || !d.BBox.Valid() {
			continue
		}
		tokens = append(tokens, domain.TextToken{
			Text:       d.Text,
			BBox:       d.BBox,
			Confidence: d.Confidence,
			Source:     domain.SourceModel,
			Page:       page,
		})
	}

	p.logger.Debug("fallback tokens detected",
		zap.String("page_id", page.PageID),
		zap.Int("count", len(tokens)))
	return tokens, nil
}

// DetectorClient implements port.Detector against an HTTP detection
// service speaking a small JSON protocol.
type DetectorClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewDetectorClient creates an HTTP-backed fallback detector.
func NewDetectorClient(endpoint, apiKey string, timeout time.Duration) *DetectorClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &DetectorClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	PageID string `json:"page_id"`
	Image  string `json:"image"` // base64 page raster
}

type detectResponse struct {
	Detections []port.Detection `json:"detections"`
}

func (c *DetectorClient) Detect(ctx context.Context, pageID string, imageBytes []byte) ([]port.Detection, error) {
	reqBody, err := json.Marshal(detectRequest{
		PageID: pageID,
		Image:  base64.StdEncoding.EncodeToString(imageBytes),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling detector: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading detector response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out detectResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding detector response: %w", err)
	}
	return out.Detections, nil
}
