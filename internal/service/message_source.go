package service

import (
	"context"
	"errors"
	"regexp"

	"messagesapp/internal/api/v1/dto"
)

var (
	// ErrCannotEnrich reports a page in which at least one item failed
	// enrichment. No partial pages are returned: one failed item poisons
	// the whole page.
	ErrCannotEnrich = errors.New("cannot enrich message data")

	ErrMessageNotFound = errors.New("message not found")
)

// ListMessagesParams are the inputs of one listing request.
type ListMessagesParams struct {
	FiscalCode          string
	PageSize            int
	MaximumID           string
	MinimumID           string
	EnrichResultData    bool
	GetArchivedMessages bool
}

// MessageSource produces one page of a recipient's messages. Two
// implementations exist: the legacy fallback composing three stores, and
// the materialized-view source reading one pre-joined store. Both honor the
// same contract; the selector routes between them per request.
type MessageSource interface {
	List(ctx context.Context, params ListMessagesParams) (*dto.PaginatedMessages, error)
}

// FeatureFlagType drives the source selection policy.
type FeatureFlagType string

const (
	FeatureFlagNone   FeatureFlagType = "none"
	FeatureFlagBeta   FeatureFlagType = "beta"
	FeatureFlagCanary FeatureFlagType = "canary"
	FeatureFlagProd   FeatureFlagType = "prod"
)

// SourceSelector picks the message source for a request. It performs no
// I/O: both sources are injected pre-built and the decision depends only on
// static flags and the caller's fiscal code.
type SourceSelector struct {
	switchToFallback bool
	flagType         FeatureFlagType
	fallback         MessageSource
	view             MessageSource
	betaTesters      map[string]struct{}
	canaryPattern    *regexp.Regexp
}

// NewSourceSelector builds a selector. canaryPattern may be nil (no canary
// match, canary requests stay on fallback); betaTesters may be empty.
func NewSourceSelector(
	switchToFallback bool,
	flagType FeatureFlagType,
	fallback MessageSource,
	view MessageSource,
	betaTesters []string,
	canaryPattern *regexp.Regexp,
) *SourceSelector {
	testers := make(map[string]struct{}, len(betaTesters))
	for _, fiscalCode := range betaTesters {
		testers[fiscalCode] = struct{}{}
	}
	return &SourceSelector{
		switchToFallback: switchToFallback,
		flagType:         flagType,
		fallback:         fallback,
		view:             view,
		betaTesters:      testers,
		canaryPattern:    canaryPattern,
	}
}

// Select routes one request. The force-fallback switch wins over everything;
// otherwise beta serves the allow-listed testers from the view, canary the
// fiscal codes matching the configured pattern, prod everyone.
func (s *SourceSelector) Select(fiscalCode string) MessageSource {
	if s.switchToFallback {
		return s.fallback
	}
	switch s.flagType {
	case FeatureFlagBeta:
		if _, ok := s.betaTesters[fiscalCode]; ok {
			return s.view
		}
		return s.fallback
	case FeatureFlagCanary:
		if s.canaryPattern != nil && s.canaryPattern.MatchString(fiscalCode) {
			return s.view
		}
		return s.fallback
	case FeatureFlagProd:
		return s.view
	default:
		return s.fallback
	}
}
