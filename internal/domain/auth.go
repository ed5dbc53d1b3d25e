package domain

import "context"

// Tier is an end-user subscription tier. Tiers are ordered: free < pro < elite.
type Tier int

const (
	TierFree Tier = iota
	TierPro
	TierElite
)

// ParseTier maps a tier name to its ordered value. Unknown names map to free.
func ParseTier(s string) Tier {
	switch s {
	case "pro":
		return TierPro
	case "elite":
		return TierElite
	default:
		return TierFree
	}
}

func (t Tier) String() string {
	switch t {
	case TierPro:
		return "pro"
	case TierElite:
		return "elite"
	default:
		return "free"
	}
}

// TokenVerifier resolves an end-user bearer token to a subscription tier.
// The authentication system itself is an external collaborator; the server
// only needs the tier to gate the alert read path.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Tier, error)
}
