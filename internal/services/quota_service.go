package services

import (
	"errors"
	"fmt"
	"time"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/store"
)

// Unlimited marks a tier with no daily ceiling.
const Unlimited = -1

// LimitFor returns the daily message limit for a tier.
func LimitFor(tier models.Tier) int {
	switch tier {
	case models.TierPro:
		return 500
	case models.TierPlus:
		return Unlimited
	default:
		return 20
	}
}

// QuotaService tracks the per-day count of user-authored messages against
// the tier-derived limit. Day rollover is lazy: every check reads the
// counter keyed by today's date, so yesterday's counter simply stops
// applying at midnight without any scheduled job.
type QuotaService struct {
	store store.Store
	tier  models.Tier
	now   func() time.Time
}

func NewQuotaService(st store.Store, tier models.Tier) *QuotaService {
	return &QuotaService{store: st, tier: tier, now: time.Now}
}

func (s *QuotaService) Tier() models.Tier {
	return s.tier
}

func (s *QuotaService) today() string {
	return s.now().Format(models.DateFormat)
}

// Used returns how many user messages were sent today.
func (s *QuotaService) Used() (int, error) {
	u, err := s.store.GetUsage(s.today())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read usage counter: %w", err)
	}
	return u.Count, nil
}

// CanSend reports whether another user message may be sent today.
func (s *QuotaService) CanSend() (bool, error) {
	limit := LimitFor(s.tier)
	if limit == Unlimited {
		return true, nil
	}
	count, err := s.Used()
	if err != nil {
		return false, err
	}
	return count < limit, nil
}

// RecordSend increments today's counter, creating it on the first send
// of the day.
func (s *QuotaService) RecordSend() error {
	date := s.today()
	u, err := s.store.GetUsage(date)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to read usage counter: %w", err)
		}
		u = &models.UsageCounter{Date: date, Tier: s.tier}
	}
	u.Count++
	u.Tier = s.tier
	if err := s.store.PutUsage(u); err != nil {
		return fmt.Errorf("failed to save usage counter: %w", err)
	}
	return nil
}

// Remaining returns how many sends are left today, or Unlimited.
func (s *QuotaService) Remaining() (int, error) {
	limit := LimitFor(s.tier)
	if limit == Unlimited {
		return Unlimited, nil
	}
	count, err := s.Used()
	if err != nil {
		return 0, err
	}
	if count >= limit {
		return 0, nil
	}
	return limit - count, nil
}
