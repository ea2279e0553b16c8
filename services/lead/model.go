package lead

import (
	"time"
)

// Lead is one signup submission. A business may submit more than once; the
// record for "the lead" is always the most recent by created_at. Rows are
// never deleted.
type Lead struct {
	ID                    string     `gorm:"column:id;primaryKey" json:"id"`
	BusinessID            string     `gorm:"column:business_id;index;not null" json:"business_id"`
	ContactEmail          string     `gorm:"column:contact_email;not null" json:"contact_email"`
	SubmittedBusinessName string     `gorm:"column:submitted_business_name" json:"submitted_business_name"`
	LookupBusinessName    string     `gorm:"column:lookup_business_name" json:"lookup_business_name"`
	LookupRating          *float64   `gorm:"column:lookup_rating" json:"lookup_rating,omitempty"`
	LookupReviewCount     int64      `gorm:"column:lookup_review_count;not null;default:0" json:"lookup_review_count"`
	LookupReferenceURL    string     `gorm:"column:lookup_reference_url" json:"lookup_reference_url"`
	CustomDisplayName     *string    `gorm:"column:custom_display_name" json:"custom_display_name,omitempty"`
	CustomPhoneNumber     *string    `gorm:"column:custom_phone_number" json:"custom_phone_number,omitempty"`
	WelcomeEmailSent      bool       `gorm:"column:welcome_email_sent;not null;default:false" json:"welcome_email_sent"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}
