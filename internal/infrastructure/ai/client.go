package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	guidancesvc "github.com/auditready/auditready-backend/internal/service/guidance"
)

// Client calls the external AI generation subsystem over HTTP. Timeouts and
// rate limits are applied by the caller; this client only speaks the wire
// protocol.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a generation client for the given endpoint
func NewClient(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   logger,
	}
}

type generationRequest struct {
	UnifiedRequirementID uuid.UUID `json:"unified_requirement_id"`
	FrameworkSelections  []string  `json:"framework_selections,omitempty"`
	PriorContent         string    `json:"prior_content,omitempty"`
	SuggestionType       string    `json:"suggestion_type"`
}

type generationResponse struct {
	SuggestedContent string  `json:"suggested_content"`
	Rationale        string  `json:"rationale"`
	Confidence       float64 `json:"confidence"`
	ModelID          string  `json:"model_id"`
	Citations        []struct {
		SourceChunkID  uuid.UUID `json:"source_chunk_id"`
		RelevanceScore float64   `json:"relevance_score"`
		ContextText    string    `json:"context_text"`
	} `json:"citations"`
}

// Generate runs one generation call
func (c *Client) Generate(ctx context.Context, req guidancesvc.GenerationRequest) (*guidancesvc.GenerationResult, error) {
	body, err := json.Marshal(generationRequest{
		UnifiedRequirementID: req.UnifiedRequirementID,
		FrameworkSelections:  req.FrameworkSelections,
		PriorContent:         req.PriorContent,
		SuggestionType:       string(req.SuggestionType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("generation subsystem returned an error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload),
		)
		return nil, fmt.Errorf("generation subsystem returned status %d", resp.StatusCode)
	}

	var decoded generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	result := &guidancesvc.GenerationResult{
		SuggestedContent: decoded.SuggestedContent,
		Rationale:        decoded.Rationale,
		Confidence:       decoded.Confidence,
		ModelID:          decoded.ModelID,
	}
	for _, citation := range decoded.Citations {
		result.Citations = append(result.Citations, guidancesvc.GeneratedCitation{
			SourceChunkID:  citation.SourceChunkID,
			RelevanceScore: citation.RelevanceScore,
			ContextText:    citation.ContextText,
		})
	}
	return result, nil
}

var _ guidancesvc.AIClient = (*Client)(nil)
