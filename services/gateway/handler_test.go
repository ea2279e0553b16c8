package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewfunnel/pkg/config"
	"reviewfunnel/services/customer"
	"reviewfunnel/services/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestRouter(t *testing.T) (*gin.Engine, *customer.Service) {
	db := testutil.NewTestDB(t, &customer.Customer{})
	customers := customer.NewService(customer.ServiceParams{DB: db})

	cfg := &config.Config{}
	cfg.Links.ReviewURLTemplate = "https://search.example.com/review?placeid=%s"
	cfg.Links.FallbackURL = "https://example.com/"
	cfg.Links.InactiveURL = "https://example.com/inactive"

	h := NewHandler(HandlerParams{Customers: customers, Config: cfg})
	r := gin.New()
	RegisterRoutes(r, h)
	return r, customers
}

func seedCustomer(t *testing.T, customers *customer.Service, status customer.SubscriptionStatus) {
	t.Helper()
	require.NoError(t, customers.Provision(context.Background(), &customer.Customer{
		CustomerID:         "cus_1",
		ContactEmail:       "owner@example.com",
		BusinessID:         "biz-1",
		BusinessName:       "Trattoria Uno",
		SubscriptionStatus: status,
		SignupTimestamp:    time.Now(),
	}))
}

func scan(r *gin.Engine, customerID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/r/"+customerID, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRedirectActiveCustomer(t *testing.T) {
	r, customers := newTestRouter(t)
	seedCustomer(t, customers, customer.Active)

	w := scan(r, "cus_1")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://search.example.com/review?placeid=biz-1", w.Header().Get("Location"))

	record, err := customers.Get(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Equal(t, int64(1), record.InviteCount)
}

func TestRedirectCountsEveryScan(t *testing.T) {
	r, customers := newTestRouter(t)
	seedCustomer(t, customers, customer.Active)

	const scans = 20
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := scan(r, "cus_1")
			require.Equal(t, http.StatusFound, w.Code)
		}()
	}
	wg.Wait()

	record, err := customers.Get(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Equal(t, int64(scans), record.InviteCount)
}

func TestRedirectCanceledCustomer(t *testing.T) {
	r, customers := newTestRouter(t)
	seedCustomer(t, customers, customer.Canceled)

	w := scan(r, "cus_1")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://example.com/inactive", w.Header().Get("Location"))

	// The dead link must not keep counting.
	record, err := customers.Get(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Equal(t, int64(0), record.InviteCount)
}

func TestRedirectUnknownCustomer(t *testing.T) {
	r, _ := newTestRouter(t)

	w := scan(r, "cus_ghost")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://example.com/", w.Header().Get("Location"))
}
