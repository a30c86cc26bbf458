package services

import (
	"context"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

// SequencePeeker is the read side of the sequence allocator
type SequencePeeker interface {
	Peek(ctx context.Context, scope models.Scope, kind sequence.Kind, prefix string) (string, error)
}

type SequenceService struct {
	Repo     SequencePeeker
	Prefixes sequence.Prefixes
}

func NewSequenceService(repo SequencePeeker, prefixes sequence.Prefixes) *SequenceService {
	return &SequenceService{Repo: repo, Prefixes: prefixes}
}

// NextNumber previews the next number of kind. It reserves nothing; the
// number is only issued when the document is saved.
func (s *SequenceService) NextNumber(ctx context.Context, scope models.Scope, kind string) (string, error) {
	k, err := sequence.ParseKind(kind)
	if err != nil {
		return "", apperr.Validation("kind", "%v", err)
	}
	next, err := s.Repo.Peek(ctx, scope, k, s.Prefixes.For(k))
	if err != nil {
		return "", apperr.EnsureInternal("peek sequence", err)
	}
	return next, nil
}
