package customer

import (
	"time"
)

type SubscriptionStatus string

const (
	Active   SubscriptionStatus = "active"
	Canceled SubscriptionStatus = "canceled"
)

// Customer is a paying, provisioned account keyed by the payment provider's
// customer id. Created exactly once by fulfillment; invite_count is mutated
// only through atomic increments by the redirect gateway.
type Customer struct {
	CustomerID         string             `gorm:"column:customer_id;primaryKey" json:"customer_id"`
	ContactEmail       string             `gorm:"column:contact_email;index" json:"contact_email"`
	BusinessID         string             `gorm:"column:business_id;index" json:"business_id"`
	BusinessName       string             `gorm:"column:business_name" json:"business_name"`
	ReviewCountInitial int64              `gorm:"column:review_count_initial;not null;default:0" json:"review_count_initial"`
	ReviewCountCurrent int64              `gorm:"column:review_count_current;not null;default:0" json:"review_count_current"`
	InviteCount        int64              `gorm:"column:invite_count;not null;default:0" json:"invite_count"`
	SubscriptionStatus SubscriptionStatus `gorm:"column:subscription_status;not null;default:'active'" json:"subscription_status"`
	SignupTimestamp    time.Time          `gorm:"column:signup_timestamp" json:"signup_timestamp"`
	LastRedemptionDate *time.Time         `gorm:"column:last_redemption_date" json:"last_redemption_date,omitempty"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
