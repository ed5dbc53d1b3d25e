package service

import (
	"context"

	"github.com/volspike/volspike/internal/domain"
)

// StaticTokenVerifier resolves end-user bearer tokens from a fixed map loaded
// at startup. The real user system lives elsewhere; the backend only needs
// token-to-tier resolution to gate the alert read path.
type StaticTokenVerifier struct {
	tokens map[string]domain.Tier
}

// NewStaticTokenVerifier builds a verifier from token -> tier-name pairs.
// Unknown tier names degrade to free.
func NewStaticTokenVerifier(tokens map[string]string) *StaticTokenVerifier {
	m := make(map[string]domain.Tier, len(tokens))
	for token, tierName := range tokens {
		if token == "" {
			continue
		}
		m[token] = domain.ParseTier(tierName)
	}
	return &StaticTokenVerifier{tokens: m}
}

// Verify returns the tier for a known token and domain.ErrUnauthorized
// otherwise.
func (v *StaticTokenVerifier) Verify(_ context.Context, token string) (domain.Tier, error) {
	tier, ok := v.tokens[token]
	if !ok {
		return domain.TierFree, domain.ErrUnauthorized
	}
	return tier, nil
}

// Compile-time interface check.
var _ domain.TokenVerifier = (*StaticTokenVerifier)(nil)
