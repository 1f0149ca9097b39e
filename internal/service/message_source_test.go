package service

import (
	"context"
	"regexp"
	"testing"

	"messagesapp/internal/api/v1/dto"
)

type namedSource string

func (s namedSource) List(context.Context, ListMessagesParams) (*dto.PaginatedMessages, error) {
	return nil, nil
}

func TestSourceSelector(t *testing.T) {
	fallback := namedSource("fallback")
	view := namedSource("view")

	canary := regexp.MustCompile(`^XYZ`)
	betaTesters := []string{"BETA00A01C123D"}

	tests := []struct {
		name             string
		switchToFallback bool
		flagType         FeatureFlagType
		fiscalCode       string
		want             namedSource
	}{
		{"forced fallback wins over prod", true, FeatureFlagProd, "ANY", fallback},
		{"none stays on fallback", false, FeatureFlagNone, "ANY", fallback},
		{"beta tester gets the view", false, FeatureFlagBeta, "BETA00A01C123D", view},
		{"non tester stays on fallback", false, FeatureFlagBeta, "OTHER", fallback},
		{"canary match gets the view", false, FeatureFlagCanary, "XYZ00A01C123D", view},
		{"canary miss stays on fallback", false, FeatureFlagCanary, "ABC00A01C123D", fallback},
		{"prod gets the view", false, FeatureFlagProd, "ANY", view},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := NewSourceSelector(tt.switchToFallback, tt.flagType, fallback, view, betaTesters, canary)
			if got := selector.Select(tt.fiscalCode); got != tt.want {
				t.Errorf("Select(%q) picked %v, want %v", tt.fiscalCode, got, tt.want)
			}
		})
	}
}

func TestSourceSelectorNilCanaryPattern(t *testing.T) {
	fallback := namedSource("fallback")
	view := namedSource("view")
	selector := NewSourceSelector(false, FeatureFlagCanary, fallback, view, nil, nil)
	if got := selector.Select("XYZ00A01C123D"); got != fallback {
		t.Errorf("Select with nil pattern picked %v, want fallback", got)
	}
}
