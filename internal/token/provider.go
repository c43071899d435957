package token

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"plansift/internal/domain"
	"plansift/internal/port"
)

// ChainProvider applies strict source priority: the fallback runs only
// when the vector provider yields zero tokens, never alongside it. Vector
// text is exact, so blending would only add noise and detector cost.
type ChainProvider struct {
	vector   port.TokenProvider
	fallback port.TokenProvider
	logger   *zap.Logger
}

// NewChainProvider creates the vector-then-fallback provider chain.
// fallback may be nil when no detector is configured.
func NewChainProvider(vector, fallback port.TokenProvider, logger *zap.Logger) *ChainProvider {
	return &ChainProvider{vector: vector, fallback: fallback, logger: logger}
}

// Tokens returns the raw token set from the winning source. A page where
// neither source yields tokens returns an empty slice and no error; zero
// tokens is a signal, not a failure. De-duplication is the merger's job.
func (c *ChainProvider) Tokens(ctx context.Context, page domain.PageRef) ([]domain.TextToken, error) {
	vectorTokens, err := c.vector.Tokens(ctx, page)
	if err != nil {
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, err
		}
		c.logger.Warn("vector source unavailable, proceeding to fallback",
			zap.String("page_id", page.PageID),
			zap.Error(err))
		vectorTokens = nil
	}

	if len(vectorTokens) > 0 {
		return vectorTokens, nil
	}

	if c.fallback == nil {
		return nil, nil
	}

	modelTokens, err := c.fallback.Tokens(ctx, page)
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) {
			c.logger.Warn("fallback source unavailable",
				zap.String("page_id", page.PageID),
				zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return modelTokens, nil
}
