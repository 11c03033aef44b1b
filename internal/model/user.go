package model

import "time"

const (
	PlanStandard = "standard"
	PlanPro      = "pro"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash     string     `gorm:"size:255;not null" json:"-"`
	Plan             string     `gorm:"size:16;not null;default:standard" json:"plan"`
	Role             string     `gorm:"size:16;not null;default:user" json:"-"`
	DailyQuota       int        `gorm:"not null;default:5" json:"daily_quota"`
	LastQuotaReset   string     `gorm:"size:10" json:"-"` // YYYY-MM-DD of the last lazy reset
	PreferredPayment string     `gorm:"size:32" json:"-"`
	LastLoginAt      *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"-"`
}

// IsPro reports whether the user has unlimited generations. The quota
// counter is only meaningful for standard-plan users.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}
