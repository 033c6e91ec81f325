package guidance

import (
	"strings"

	"github.com/google/uuid"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// BlockKind identifies the structural role of a guidance block. The four
// kinds are a closed set; ValidateContent switches over them exhaustively.
type BlockKind string

const (
	BlockIntro       BlockKind = "intro"
	BlockBaseline    BlockKind = "baseline"
	BlockConditional BlockKind = "conditional"
	// BlockOperationalExcellence holds the beyond-baseline practices shown
	// to organizations that have already fulfilled the requirement.
	BlockOperationalExcellence BlockKind = "operational_excellence"
)

func (k BlockKind) String() string {
	return string(k)
}

func (k BlockKind) IsValid() bool {
	switch k {
	case BlockIntro, BlockBaseline, BlockConditional, BlockOperationalExcellence:
		return true
	}
	return false
}

// Block is one structural unit of a guidance version's content. Blocks are
// ordered, optionally rendered only for selected frameworks, and carry
// generation metadata plus citations when machine-authored.
type Block struct {
	ID                  uuid.UUID   `json:"id"`
	Order               int         `json:"block_order"`
	Kind                BlockKind   `json:"kind"`
	Content             string      `json:"content"`
	FrameworkConditions []string    `json:"framework_conditions,omitempty"`
	Citations           []Citation  `json:"citations,omitempty"`
	AI                  *AIMetadata `json:"ai,omitempty"`
}

// AIMetadata records provenance for a machine-authored block
type AIMetadata struct {
	ModelID    string  `json:"model_id"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// IsAIGenerated reports whether the block was machine-authored
func (b *Block) IsAIGenerated() bool {
	return b.AI != nil
}

// RendersFor reports whether the block is visible when the given framework
// is selected. A block with no conditions renders for every framework.
func (b *Block) RendersFor(framework string) bool {
	if len(b.FrameworkConditions) == 0 {
		return true
	}
	for _, f := range b.FrameworkConditions {
		if strings.EqualFold(f, framework) {
			return true
		}
	}
	return false
}

// Validate checks the block's structural rules. AI-authored blocks must
// carry at least one citation; conditional blocks must name at least one
// framework; every kind must be known.
func (b *Block) Validate() error {
	if !b.Kind.IsValid() {
		return errors.NewValidationError("INVALID_BLOCK_KIND", "unknown block kind: "+string(b.Kind))
	}
	if strings.TrimSpace(b.Content) == "" {
		return errors.NewValidationError("EMPTY_BLOCK", "block content is required")
	}

	switch b.Kind {
	case BlockIntro, BlockBaseline, BlockOperationalExcellence:
		// no kind-specific structure beyond content
	case BlockConditional:
		if len(b.FrameworkConditions) == 0 {
			return errors.NewValidationError("MISSING_FRAMEWORK_CONDITION",
				"conditional block must name at least one framework")
		}
	}

	if b.IsAIGenerated() && len(b.Citations) == 0 {
		return errors.NewCitationRequiredError("AI-generated block carries no citations")
	}
	for i := range b.Citations {
		if err := b.Citations[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// wordCount counts whitespace-separated words in the block content
func (b *Block) wordCount() int {
	return len(strings.Fields(b.Content))
}
