package app

import (
	"errors"
	"time"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"
)

// ErrQuotaExceeded is a distinct outcome, not an infrastructure failure;
// handlers attach an upgrade suggestion when reporting it.
var ErrQuotaExceeded = errors.New("daily limit reached")

const defaultDailyLimit = 5

// QuotaPolicy decides whether a user may generate flashcards today.
// The lazy reset and the post-success decrement are two separate writes;
// a crash or a concurrent request between them can skew the counter.
// That weak consistency is accepted.
type QuotaPolicy struct {
	userRepo   *repository.UserRepository
	dailyLimit int
	now        func() time.Time
}

func NewQuotaPolicy(userRepo *repository.UserRepository, dailyLimit int) *QuotaPolicy {
	if dailyLimit <= 0 {
		dailyLimit = defaultDailyLimit
	}
	return &QuotaPolicy{
		userRepo:   userRepo,
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// EnsureToday resets the counter to the daily allotment on the first
// request of a new calendar day. It mutates user in place so callers see
// the refreshed counter.
func (p *QuotaPolicy) EnsureToday(user *model.User) error {
	today := p.today()
	if user.LastQuotaReset == today {
		return nil
	}
	if err := p.userRepo.ResetQuota(user.ID, p.dailyLimit, today); err != nil {
		return err
	}
	user.DailyQuota = p.dailyLimit
	user.LastQuotaReset = today
	return nil
}

// Allowed reports whether the user may generate now. Pro users are always
// allowed regardless of their counter value.
func (p *QuotaPolicy) Allowed(user *model.User) bool {
	return user.IsPro() || user.DailyQuota > 0
}

// Consume decrements the counter after a successful generation. Pro
// users' counters are left untouched.
func (p *QuotaPolicy) Consume(user *model.User) error {
	if user.IsPro() {
		return nil
	}
	if err := p.userRepo.DecrementQuota(user.ID); err != nil {
		return err
	}
	user.DailyQuota--
	return nil
}

func (p *QuotaPolicy) today() string {
	return p.now().Format("2006-01-02")
}
