package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plansift/internal/blocks"
	"plansift/internal/domain"
	"plansift/internal/extract"
	"plansift/internal/index"
	"plansift/internal/port"
	"plansift/internal/rules"
	"plansift/internal/token"
)

// ExtractionRequest describes one extraction run over a set of pages.
// Payloads arrive as the raw JSON the guide-negotiation subsystem
// produced; they are parsed and validated here, with malformed entries
// skipped and counted.
type ExtractionRequest struct {
	ProjectID   uuid.UUID
	Pages       []domain.PageRef
	RawPayloads []byte
	Type        domain.ObjectType
	Policy      domain.ExtractionPolicy
}

// ExtractionService runs the token → block → object pipeline per page
// and rebuilds the project index afterwards. Page extraction fans out
// concurrently (the work is I/O-bound); the matching core itself stays
// single-threaded and pure. Index rebuild is single-writer per project —
// serializing concurrent runs for one project is the caller's contract.
type ExtractionService struct {
	provider    port.TokenProvider
	adapter     *blocks.Adapter
	assembler   *extract.Assembler
	objects     port.ObjectRepository
	indices     port.IndexRepository
	concurrency int
	logger      *zap.Logger
}

// NewExtractionService creates an ExtractionService.
func NewExtractionService(
	provider port.TokenProvider,
	adapter *blocks.Adapter,
	assembler *extract.Assembler,
	objects port.ObjectRepository,
	indices port.IndexRepository,
	concurrency int,
	logger *zap.Logger,
) *ExtractionService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ExtractionService{
		provider:    provider,
		adapter:     adapter,
		assembler:   assembler,
		objects:     objects,
		indices:     indices,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run extracts every page in the request and rebuilds the project index.
// A failed page is logged and yields zero objects — one malformed page
// never aborts a project-wide run, and deterministic IDs make any page
// safe to re-run later.
func (s *ExtractionService) Run(ctx context.Context, req ExtractionRequest) ([]domain.ExtractionStats, error) {
	payloads, skipped, err := rules.ParsePayloads(req.RawPayloads)
	if err != nil {
		return nil, fmt.Errorf("extractionService.Run: %w", err)
	}
	for _, sk := range skipped {
		s.logger.Warn("skipping malformed rule payload",
			zap.Stringer("project_id", req.ProjectID),
			zap.Int("position", sk.Position),
			zap.String("reason", sk.Reason))
	}

	runID := uuid.New()
	stats := make([]domain.ExtractionStats, len(req.Pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range req.Pages {
		g.Go(func() error {
			page := req.Pages[i]
			st, err := s.extractPage(gctx, runID, page, payloads, req.Type, req.Policy)
			if err != nil {
				// Catch page-level failures here: the page yields no
				// objects and the rest of the run continues.
				s.logger.Error("page extraction failed",
					zap.String("page_id", page.PageID),
					zap.Error(err))
				st = domain.ExtractionStats{PageID: page.PageID}
			}
			st.SkippedRules = len(skipped)
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extractionService.Run: %w", err)
	}

	if err := s.rebuildIndex(ctx, req.ProjectID); err != nil {
		return stats, fmt.Errorf("extractionService.Run: %w", err)
	}
	return stats, nil
}

// extractPage runs the full pipeline for a single page.
func (s *ExtractionService) extractPage(
	ctx context.Context,
	runID uuid.UUID,
	page domain.PageRef,
	payloads []rules.Payload,
	typ domain.ObjectType,
	policy domain.ExtractionPolicy,
) (domain.ExtractionStats, error) {
	stats := domain.ExtractionStats{PageID: page.PageID}

	raw, err := s.provider.Tokens(ctx, page)
	if err != nil {
		return stats, fmt.Errorf("tokens: %w", err)
	}
	if len(raw) == 0 {
		s.logger.Info("no tokens on page", zap.String("page_id", page.PageID))
		if err := s.objects.ReplacePage(ctx, page, nil); err != nil {
			return stats, fmt.Errorf("replacing page objects: %w", err)
		}
		return stats, nil
	}

	merged := token.Merge(raw)
	stats.TokenCount = len(merged)
	stats.MergedOut = len(raw) - len(merged)

	blockSet := s.adapter.CreateBlocks(merged, payloads)
	stats.BlockCount = len(blockSet)

	result := s.assembler.Assemble(extract.Input{
		Page:     page,
		Blocks:   blockSet,
		Payloads: payloads,
		Type:     typ,
		Source:   merged[0].Source,
		Policy:   policy,
		RunID:    runID,
	})
	stats.ObjectCount = len(result.Objects)
	stats.DroppedNameOnly = result.DroppedNameOnly

	if err := s.objects.ReplacePage(ctx, page, result.Objects); err != nil {
		return stats, fmt.Errorf("replacing page objects: %w", err)
	}

	s.logger.Info("page extracted",
		zap.String("page_id", page.PageID),
		zap.Int("tokens", stats.TokenCount),
		zap.Int("blocks", stats.BlockCount),
		zap.Int("objects", stats.ObjectCount),
		zap.Int("dropped_name_only", stats.DroppedNameOnly))
	return stats, nil
}

// rebuildIndex replaces the project's reverse indices from scratch.
func (s *ExtractionService) rebuildIndex(ctx context.Context, projectID uuid.UUID) error {
	objects, err := s.objects.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("listing project objects: %w", err)
	}
	idx := index.Build(projectID, objects)
	if err := s.indices.Replace(ctx, idx); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	s.logger.Info("project index rebuilt",
		zap.Stringer("project_id", projectID),
		zap.Int("objects", len(objects)))
	return nil
}
