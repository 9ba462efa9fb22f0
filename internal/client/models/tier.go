package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// Tier identifies a subscription plan.
type Tier string

const (
	TierTrial      Tier = "trial"
	TierSemiannual Tier = "semiannual"
	TierAnnual     Tier = "annual"
)

// TrialLength is how long a trial subscription lasts.
const TrialLength = 7 * 24 * time.Hour

// ParseTier maps a plan name to a Tier. Matching ignores case and
// surrounding whitespace.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierTrial, TierSemiannual, TierAnnual:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown subscription tier %q", common.ErrValidationFailure, s)
	}
}

// IsPaid reports whether t is a paid plan.
func (t Tier) IsPaid() bool {
	return t == TierSemiannual || t == TierAnnual
}

// EndsAt returns when a subscription of tier t started at now runs out.
// Paid tiers use calendar arithmetic (six months, one year).
func (t Tier) EndsAt(now time.Time) (time.Time, error) {
	switch t {
	case TierTrial:
		return now.Add(TrialLength), nil
	case TierSemiannual:
		return now.AddDate(0, 6, 0), nil
	case TierAnnual:
		return now.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown subscription tier %q", common.ErrValidationFailure, string(t))
	}
}
