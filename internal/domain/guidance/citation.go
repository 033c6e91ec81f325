package guidance

import (
	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// Citation links a guidance block or an AI suggestion (exactly one of the
// two, never both) back to a chunk of the knowledge corpus.
type Citation struct {
	ID             uuid.UUID  `json:"id"`
	BlockID        *uuid.UUID `json:"block_id,omitempty"`
	SuggestionID   *uuid.UUID `json:"suggestion_id,omitempty"`
	SourceChunkID  uuid.UUID  `json:"source_chunk_id"`
	RelevanceScore float64    `json:"relevance_score"`
	ContextText    string     `json:"context_text"`
}

// NewBlockCitation creates a citation attached to a guidance block
func NewBlockCitation(blockID, sourceChunkID uuid.UUID, relevance float64, context string) (*Citation, error) {
	c := &Citation{
		ID:             uuid.New(),
		BlockID:        &blockID,
		SourceChunkID:  sourceChunkID,
		RelevanceScore: relevance,
		ContextText:    context,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewSuggestionCitation creates a citation attached to an AI suggestion
func NewSuggestionCitation(suggestionID, sourceChunkID uuid.UUID, relevance float64, context string) (*Citation, error) {
	c := &Citation{
		ID:             uuid.New(),
		SuggestionID:   &suggestionID,
		SourceChunkID:  sourceChunkID,
		RelevanceScore: relevance,
		ContextText:    context,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate enforces the exactly-one-parent rule and chunk presence
func (c *Citation) Validate() error {
	hasBlock := c.BlockID != nil && *c.BlockID != uuid.Nil
	hasSuggestion := c.SuggestionID != nil && *c.SuggestionID != uuid.Nil

	if hasBlock == hasSuggestion {
		return errors.NewValidationError("INVALID_CITATION_PARENT",
			"citation must reference exactly one of block or suggestion")
	}
	if c.SourceChunkID == uuid.Nil {
		return errors.NewValidationError("INVALID_SOURCE_CHUNK", "citation source chunk is required")
	}
	if c.RelevanceScore < 0 || c.RelevanceScore > 1 {
		return errors.NewValidationError("INVALID_RELEVANCE", "relevance score must be within [0,1]")
	}
	return nil
}
