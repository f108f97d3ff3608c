package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/repository/memory"
	redisrepo "github.com/kirinyoku/railgo/internal/repository/redis"
	"github.com/kirinyoku/railgo/internal/schedule"
	"github.com/kirinyoku/railgo/internal/service"
	"github.com/kirinyoku/railgo/internal/service/auth"
	"github.com/kirinyoku/railgo/internal/service/booking"
	"github.com/kirinyoku/railgo/internal/store"
	"github.com/kirinyoku/railgo/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	store.PasswordCost = bcrypt.MinCost
}

type allAvailable struct{}

func (allAvailable) IntN(int) int     { return 805 }
func (allAvailable) Float64() float64 { return 0.99 }

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]*redisrepo.StoredResponse
}

func (m *memIdempotency) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = nil
	return true, nil
}

func (m *memIdempotency) SaveResult(_ context.Context, key string, resp redisrepo.StoredResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = &resp
	return nil
}

func (m *memIdempotency) GetResult(_ context.Context, key string) (redisrepo.StoredResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.keys[key]; r != nil {
		return *r, true, nil
	}
	return redisrepo.StoredResponse{}, false, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	now := func() time.Time { return time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svcs := service.NewServices(service.Deps{
		Blob:      memory.NewBlob(),
		Generator: schedule.NewGenerator(allAvailable{}),
	}, log, service.Config{Clock: now})
	require.NoError(t, svcs.Auth.SeedDemoUser(context.Background()))

	return NewRouter(svcs, Options{
		Idempotency: &memIdempotency{keys: map[string]*redisrepo.StoredResponse{}},
		Clock:       now,
	}, log)
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestStations_ETag(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/stations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Station](t, w), 15)

	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	w = do(t, r, http.MethodGet, "/stations", nil, "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestTrains_Validation(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/trains?origin=CAI&destination=ALX&date=2025-03-10&passengers=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Train](t, w), 17)

	w = do(t, r, http.MethodGet, "/trains?origin=CAI&destination=CAI&date=2025-03-10", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[ValidationErrorResponse](t, w)
	assert.Equal(t, "Origin and destination must be different", resp.Errors["destination"])

	w = do(t, r, http.MethodGet, "/trains?origin=CAI&destination=ALX&date=2025-03-10&passengers=7", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, validate.Errors{"passengers": "Passengers must be between 1 and 6"}, decode[ValidationErrorResponse](t, w).Errors)

	w = do(t, r, http.MethodGet, "/trains?origin=CAI&destination=ALX&date=2025-03-10&passengers=two", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPassengers_RangeTags(t *testing.T) {
	r := newRouter(t)
	base := seatedDraft(t, r, 1, 1)

	old := passenger("passenger-0")
	old.Age = 130
	w := do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: []PassengerRequest{old}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, validate.Errors{"passengers[0].age": "Age must be between 1 and 120"}, decode[ValidationErrorResponse](t, w).Errors)

	many := make([]PassengerRequest, 7)
	for i := range many {
		many[i] = passenger("passenger-" + strconv.Itoa(i))
	}
	w = do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: many})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Passengers must be between 1 and 6", decode[ValidationErrorResponse](t, w).Errors["passengers"])

	w = do(t, r, http.MethodPut, base+"/search", SearchRequest{Origin: "CAI", Destination: "ALX", Date: "2025-03-10"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[ValidationErrorResponse](t, w).Errors, "passengers")
}

func TestAuthFlow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/auth/login", domain.Credentials{Email: auth.DemoEmail, Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode[ErrorResponse](t, w).Error)

	w = do(t, r, http.MethodPost, "/auth/login", domain.Credentials{Email: auth.DemoEmail, Password: auth.DemoPassword})
	require.Equal(t, http.StatusOK, w.Code)
	sess := decode[auth.Session](t, w)

	w = do(t, r, http.MethodGet, "/auth/me", nil, "Authorization", "Bearer "+sess.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", decode[domain.User](t, w).ID)

	w = do(t, r, http.MethodPost, "/auth/logout", nil, "Authorization", "Bearer "+sess.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/auth/me", nil, "Authorization", "Bearer "+sess.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/auth/register", domain.Registration{
		Email: auth.DemoEmail, Password: "secret1", ConfirmPassword: "secret1",
		FirstName: "A", LastName: "B", Phone: "01012345678",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPreferences(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPut, "/preferences", map[string]string{"theme": "dark"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPut, "/preferences", map[string]string{"theme": "dark"}, headerClientID, "browser-1")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/preferences", nil, headerClientID, "browser-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Preferences{Theme: domain.ThemeDark, Language: domain.LanguageEnglish}, decode[domain.Preferences](t, w))
}

func TestBookingFlow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/drafts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/drafts/" + decode[CreateDraftResponse](t, w).ID

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPut, base+"/search", domain.SearchParams{Origin: "CAI", Destination: "ALX", Date: "2025-03-10", Passengers: 2})
	require.Equal(t, http.StatusOK, w.Code)
	search := decode[SearchResponse](t, w)
	require.Len(t, search.Trains, 17)
	assert.Equal(t, booking.StepSearchSet, search.Draft.Step)

	var train domain.Train
	for _, tr := range search.Trains {
		if tr.Type == domain.TrainHighSpeed {
			train = tr
			break
		}
	}
	w = do(t, r, http.MethodPut, base+"/train", SelectTrainRequest{TrainID: train.ID})
	require.Equal(t, http.StatusOK, w.Code)

	econ := train.Coaches[3]
	for _, s := range econ.Seats[:2] {
		w = do(t, r, http.MethodPost, base+"/seats", SelectSeatRequest{CoachID: econ.ID, SeatID: s.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, base+"/seats", SelectSeatRequest{CoachID: econ.ID, SeatID: econ.Seats[2].ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, r, http.MethodPost, base+"/seats", SelectSeatRequest{CoachID: econ.ID, SeatID: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, base+"/passengers/prefill", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Passenger](t, w), 2)

	w = do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: []PassengerRequest{{ID: "passenger-0"}}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[ValidationErrorResponse](t, w).Errors, "passengers[0].firstName")

	w = do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: []PassengerRequest{passenger("passenger-0")}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: []PassengerRequest{passenger("passenger-0"), passenger("passenger-1")}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StepPassengersSet, decode[booking.View](t, w).Step)

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: domain.Payment{CardNumber: "1234"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()}, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[domain.Booking](t, w)
	assert.Equal(t, int64(300), b.TotalAmount)
	assert.Equal(t, domain.BookingConfirmed, b.Status)

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()}, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, b.ID, decode[domain.Booking](t, w).ID)

	w = do(t, r, http.MethodGet, "/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Booking](t, w), 1)

	w = do(t, r, http.MethodGet, "/bookings/"+b.ID+"/refund", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, decode[RefundResponse](t, w).Refund.RefundPercentage)

	w = do(t, r, http.MethodPost, "/bookings/"+b.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(270), decode[RefundResponse](t, w).Refund.RefundAmount)

	w = do(t, r, http.MethodGet, "/bookings/"+b.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.BookingCancelled, decode[domain.Booking](t, w).Status)

	w = do(t, r, http.MethodGet, "/bookings/booking-0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// seatedDraft searches CAI to ALX for passengers people and selects the
// first seats economy seats of the first high speed train.
func seatedDraft(t *testing.T, r http.Handler, passengers, seats int) string {
	t.Helper()

	w := do(t, r, http.MethodPost, "/drafts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/drafts/" + decode[CreateDraftResponse](t, w).ID

	w = do(t, r, http.MethodPut, base+"/search", domain.SearchParams{Origin: "CAI", Destination: "ALX", Date: "2025-03-10", Passengers: passengers})
	require.Equal(t, http.StatusOK, w.Code)

	var train domain.Train
	for _, tr := range decode[SearchResponse](t, w).Trains {
		if tr.Type == domain.TrainHighSpeed {
			train = tr
			break
		}
	}
	w = do(t, r, http.MethodPut, base+"/train", SelectTrainRequest{TrainID: train.ID})
	require.Equal(t, http.StatusOK, w.Code)

	econ := train.Coaches[3]
	for _, s := range econ.Seats[:seats] {
		w = do(t, r, http.MethodPost, base+"/seats", SelectSeatRequest{CoachID: econ.ID, SeatID: s.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	return base
}

func countBookings(t *testing.T, r http.Handler) int {
	t.Helper()
	w := do(t, r, http.MethodGet, "/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return len(decode[[]domain.Booking](t, w))
}

func TestCheckout_RequiresPassengers(t *testing.T) {
	r := newRouter(t)
	base := seatedDraft(t, r, 1, 1)

	w := do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, countBookings(t, r))
}

func TestCheckout_SeatShortfall(t *testing.T) {
	r := newRouter(t)
	base := seatedDraft(t, r, 2, 1)

	w := do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: []PassengerRequest{passenger("passenger-0"), passenger("passenger-1")}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, countBookings(t, r))
}

func TestCheckout_CompletedDraft(t *testing.T) {
	r := newRouter(t)
	base := seatedDraft(t, r, 1, 1)

	w := do(t, r, http.MethodPut, base+"/passengers", PassengersRequest{Passengers: []PassengerRequest{passenger("passenger-0")}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/checkout", CheckoutRequest{Payment: validCard()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, countBookings(t, r))
}

func TestDraftNotFound(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/drafts/draft-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func validCard() domain.Payment {
	return domain.Payment{CardNumber: "4111 1111 1111 1111", CardHolder: "Omar Hassan", ExpiryDate: "12/27", CVV: "123"}
}

func passenger(id string) PassengerRequest {
	return PassengerRequest{ID: id, FirstName: "Omar", LastName: "Hassan", Email: "omar@example.com", Phone: "01112345678", Age: 30}
}
