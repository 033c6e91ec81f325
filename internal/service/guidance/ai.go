package guidance

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/metrics"
)

// boundedAIClient wraps the generation subsystem with a rate limit and a
// per-call deadline. Generation runs before any persisting transaction, so
// the bound here is what keeps a slow model from stalling the pipeline.
type boundedAIClient struct {
	inner   AIClient
	timeout time.Duration
	limiter *rate.Limiter
}

func newBoundedAIClient(inner AIClient, timeout time.Duration, requestsPerMinute int) *boundedAIClient {
	return &boundedAIClient{
		inner:   inner,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
	}
}

func (c *boundedAIClient) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewExternalError("ai", "generation rate wait aborted").WithCause(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result, err := c.inner.Generate(ctx, req)
	metrics.AIGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.NewExternalError("ai", "generation call failed").WithCause(err)
	}
	return result, nil
}
