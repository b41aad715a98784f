package models

// Tier is the subscription level determining the daily message limit.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
	TierPlus Tier = "plus"
)

// ParseTier maps a configuration string to a Tier, defaulting to free.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPro:
		return TierPro
	case TierPlus:
		return TierPlus
	default:
		return TierFree
	}
}

// UsageCounter tracks the number of user-authored messages sent on a
// single calendar day, across all conversations. Counters for past days
// are never deleted; a new day simply gets a new counter.
type UsageCounter struct {
	Date  string // YYYY-MM-DD
	Count int
	Tier  Tier
}

// DateFormat is the layout of UsageCounter.Date.
const DateFormat = "2006-01-02"
