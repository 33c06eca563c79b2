package ingest

import (
	"fmt"
	"strings"

	"github.com/learnanything/practice-backend/internal/domain"
)

// maxBatchSize bounds a single ingest call.
const maxBatchSize = 500

// Candidate is one card candidate as received from a content collaborator.
// DifficultyTag is free-form here; it is normalized onto the closed set
// during validation. An empty tag defaults to MEDIUM.
type Candidate struct {
	Front         string
	Back          string
	DifficultyTag string
}

// normalized returns the trimmed front/back and the canonical difficulty
// tag. Only valid after Validate has passed.
func (c Candidate) normalized() (front, back string, tag domain.DifficultyTag) {
	tag, _ = domain.NormalizeDifficultyTag(c.DifficultyTag)
	return strings.TrimSpace(c.Front), strings.TrimSpace(c.Back), tag
}

// IngestInput holds a batch of candidates for one deck.
type IngestInput struct {
	DeckTopic  string
	Candidates []Candidate
}

// Validate checks the batch shape and every candidate, collecting all
// errors. Upstream shape is never trusted: empty front/back and unknown
// difficulty tags are rejected here.
func (i *IngestInput) Validate() error {
	var errs []domain.FieldError

	if domain.NormalizeDeckTopic(i.DeckTopic) == "" {
		errs = append(errs, domain.FieldError{Field: "deck_topic", Message: "required"})
	}
	if len(i.Candidates) == 0 {
		errs = append(errs, domain.FieldError{Field: "candidates", Message: "required (at least 1)"})
	} else if len(i.Candidates) > maxBatchSize {
		errs = append(errs, domain.FieldError{Field: "candidates", Message: fmt.Sprintf("too many (max %d)", maxBatchSize)})
	}

	for idx, candidate := range i.Candidates {
		if strings.TrimSpace(candidate.Front) == "" {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("candidates[%d].front", idx),
				Message: "required",
			})
		}
		if strings.TrimSpace(candidate.Back) == "" {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("candidates[%d].back", idx),
				Message: "required",
			})
		}
		if _, ok := domain.NormalizeDifficultyTag(candidate.DifficultyTag); !ok {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("candidates[%d].difficulty_tag", idx),
				Message: "must be EASY, MEDIUM, or HARD",
			})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
