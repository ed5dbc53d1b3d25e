package universe

import "time"

// MemberMeta carries the per-member observation recorded by a classification
// pass. EnteredAt is non-zero only for symbols that entered this pass; for
// retained members the caller keeps the stored entry time.
type MemberMeta struct {
	QuoteVolume24h float64
	EnteredAt      time.Time
	LastSeenAt     time.Time
}

// Classify computes the next liquid-universe membership from the candidate
// list, the per-symbol 24h quote volumes, and the previous membership set.
//
// Membership uses a hysteresis band to prevent flapping: a non-member enters
// only at volume >= enter, a member exits only at volume < exit, and volumes
// in [exit, enter) leave a member's status unchanged. The thresholds must
// satisfy exit < enter; behavior outside that ordering is undefined and the
// ordering is enforced at configuration time.
//
// Candidates with no volume entry this pass are skipped entirely: they are
// neither admitted nor retained. Missing ticker data means no information,
// not a zero volume.
func Classify(
	candidates []string,
	volumes map[string]float64,
	enter, exit float64,
	current map[string]bool,
	now time.Time,
) map[string]MemberMeta {
	next := make(map[string]MemberMeta)

	for _, symbol := range candidates {
		volume, ok := volumes[symbol]
		if !ok {
			continue
		}

		if !current[symbol] {
			if volume >= enter {
				next[symbol] = MemberMeta{
					QuoteVolume24h: volume,
					EnteredAt:      now,
					LastSeenAt:     now,
				}
			}
			continue
		}

		if volume >= exit {
			next[symbol] = MemberMeta{
				QuoteVolume24h: volume,
				LastSeenAt:     now,
			}
		}
	}

	return next
}
