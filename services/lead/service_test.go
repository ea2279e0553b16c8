package lead

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewfunnel/pkg/errutil"
	"reviewfunnel/pkg/places"
	"reviewfunnel/pkg/repository"
	"reviewfunnel/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeLookup struct {
	snap *places.Snapshot
	err  error
}

func (f *fakeLookup) Lookup(ctx context.Context, businessID string) (*places.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func newTestService(t *testing.T, lookup places.Lookup) *Service {
	db := testutil.NewTestDB(t, &Lead{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return &Service{
		node:   node,
		lookup: lookup,
		repo:   repository.ProvideStore[Lead](db),
	}
}

func TestCreateSignupSnapshotsLookup(t *testing.T) {
	svc := newTestService(t, &fakeLookup{snap: &places.Snapshot{
		Name:         "Trattoria Uno",
		Rating:       4.6,
		ReviewCount:  132,
		ReferenceURL: "https://maps.example.com/biz-1",
	}})

	record, err := svc.CreateSignup(context.Background(), CreateSignupRequest{
		BusinessID:            "biz-1",
		ContactEmail:          "owner@example.com",
		SubmittedBusinessName: "Trattoria",
	})
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	require.Equal(t, "Trattoria Uno", record.LookupBusinessName)
	require.Equal(t, int64(132), record.LookupReviewCount)
	require.NotNil(t, record.LookupRating)
	require.InDelta(t, 4.6, *record.LookupRating, 0.001)
}

func TestCreateSignupMissingFields(t *testing.T) {
	svc := newTestService(t, &fakeLookup{})

	_, err := svc.CreateSignup(context.Background(), CreateSignupRequest{BusinessID: "biz-1"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, errutil.StatusOf(err))
}

func TestCreateSignupLookupFailure(t *testing.T) {
	svc := newTestService(t, &fakeLookup{err: errors.New("upstream down")})

	_, err := svc.CreateSignup(context.Background(), CreateSignupRequest{
		BusinessID:   "biz-1",
		ContactEmail: "owner@example.com",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadGateway, errutil.StatusOf(err))
}

func TestMostRecentByBusinessID(t *testing.T) {
	svc := newTestService(t, &fakeLookup{snap: &places.Snapshot{Name: "Trattoria Uno"}})
	ctx := context.Background()

	first, err := svc.CreateSignup(ctx, CreateSignupRequest{BusinessID: "biz-1", ContactEmail: "owner@example.com"})
	require.NoError(t, err)

	// Force distinct created_at values; sqlite timestamp precision would
	// otherwise make ordering ambiguous.
	require.NoError(t, svc.repo.Update(ctx, first.ID, map[string]interface{}{
		"created_at": time.Now().Add(-time.Hour),
	}))

	second, err := svc.CreateSignup(ctx, CreateSignupRequest{BusinessID: "biz-1", ContactEmail: "new-owner@example.com"})
	require.NoError(t, err)

	got, err := svc.MostRecentByBusinessID(ctx, "biz-1")
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
}

func TestMostRecentByBusinessIDNotFound(t *testing.T) {
	svc := newTestService(t, &fakeLookup{})

	_, err := svc.MostRecentByBusinessID(context.Background(), "biz-missing")
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}

func TestMostRecentByBusinessAndEmail(t *testing.T) {
	svc := newTestService(t, &fakeLookup{snap: &places.Snapshot{Name: "Trattoria Uno"}})
	ctx := context.Background()

	_, err := svc.CreateSignup(ctx, CreateSignupRequest{BusinessID: "biz-1", ContactEmail: "owner@example.com"})
	require.NoError(t, err)

	_, err = svc.MostRecentByBusinessAndEmail(ctx, "biz-1", "someone-else@example.com")
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))

	got, err := svc.MostRecentByBusinessAndEmail(ctx, "biz-1", "owner@example.com")
	require.NoError(t, err)
	require.Equal(t, "owner@example.com", got.ContactEmail)
}

func TestUpdateSignupDetailsPartial(t *testing.T) {
	svc := newTestService(t, &fakeLookup{snap: &places.Snapshot{Name: "Trattoria Uno"}})
	ctx := context.Background()

	record, err := svc.CreateSignup(ctx, CreateSignupRequest{BusinessID: "biz-1", ContactEmail: "owner@example.com"})
	require.NoError(t, err)

	name := "Uno's Kitchen"
	phone := "+1 555 0100"
	require.NoError(t, svc.UpdateSignupDetails(ctx, "biz-1", UpdateDetailsRequest{
		DisplayName: &name,
		PhoneNumber: &phone,
	}))

	// A later patch carrying only one field must not clobber the other.
	updated := "Uno's"
	require.NoError(t, svc.UpdateSignupDetails(ctx, "biz-1", UpdateDetailsRequest{DisplayName: &updated}))

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CustomDisplayName)
	require.Equal(t, "Uno's", *got.CustomDisplayName)
	require.NotNil(t, got.CustomPhoneNumber)
	require.Equal(t, "+1 555 0100", *got.CustomPhoneNumber)
}

func TestMarkWelcomeEmailSent(t *testing.T) {
	svc := newTestService(t, &fakeLookup{snap: &places.Snapshot{Name: "Trattoria Uno"}})
	ctx := context.Background()

	record, err := svc.CreateSignup(ctx, CreateSignupRequest{BusinessID: "biz-1", ContactEmail: "owner@example.com"})
	require.NoError(t, err)
	require.False(t, record.WelcomeEmailSent)

	require.NoError(t, svc.MarkWelcomeEmailSent(ctx, record.ID))

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	require.True(t, got.WelcomeEmailSent)
}
