package portal

import (
	"time"
)

// LoginToken stores only an argon2 hash of the emailed secret; the plaintext
// exists in the outgoing email and nowhere else.
type LoginToken struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	CustomerID string     `gorm:"column:customer_id;index;not null" json:"customer_id"`
	TokenHash  string     `gorm:"column:token_hash;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	UsedAt     *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LoginToken) TableName() string {
	return "login_tokens"
}
