package customer

import (
	"context"
	"strings"
	"time"

	"reviewfunnel/pkg/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wraps the generic store with the store-side atomic operations
// this model depends on: keyed upsert and in-database counter increments,
// never read-modify-write from the application.
type Repository struct {
	repository.Repository[Customer]
	db *gorm.DB
}

type RepositoryParams struct {
	DB *gorm.DB
}

func NewRepository(p RepositoryParams) *Repository {
	return &Repository{
		Repository: repository.ProvideStore[Customer](p.DB),
		db:         p.DB,
	}
}

// Upsert is a create-or-overwrite keyed by customer_id. Redelivering the
// same provisioning event reproduces the same row instead of failing or
// diverging; invite_count and last_redemption_date are left untouched on
// conflict.
func (r *Repository) Upsert(ctx context.Context, record *Customer) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		// subscription_status is deliberately absent: a replayed
		// confirmation must never reactivate a canceled customer.
		DoUpdates: clause.AssignmentColumns([]string{
			"contact_email",
			"business_id",
			"business_name",
			"review_count_initial",
			"review_count_current",
			"signup_timestamp",
		}),
	}).Create(record).Error
}

// IncrementInviteCount performs a single atomic increment inside the store.
// Returns the number of rows affected; zero means the record vanished.
func (r *Repository) IncrementInviteCount(ctx context.Context, customerID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Customer{}).
		Where("customer_id = ? AND subscription_status = ?", customerID, Active).
		UpdateColumn("invite_count", gorm.Expr("invite_count + ?", 1))
	return res.RowsAffected, res.Error
}

// UpdateStatus flips the subscription gate for an existing record.
func (r *Repository) UpdateStatus(ctx context.Context, customerID string, status SubscriptionStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Customer{}).
		Where("customer_id = ?", customerID).
		Update("subscription_status", status)
	return res.RowsAffected, res.Error
}

// SetRedemptionDate stamps the refill redemption, guarded in-database so
// two concurrent claims in the same calendar month cannot both win.
func (r *Repository) SetRedemptionDate(ctx context.Context, customerID string, now time.Time) (int64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	res := r.db.WithContext(ctx).Model(&Customer{}).
		Where("customer_id = ? AND (last_redemption_date IS NULL OR last_redemption_date < ?)", customerID, monthStart).
		Update("last_redemption_date", now)
	return res.RowsAffected, res.Error
}

// FindByEmail matches case-normalized: emails are lower-cased before
// comparison.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	var record Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(contact_email) = ?", strings.ToLower(email)).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
