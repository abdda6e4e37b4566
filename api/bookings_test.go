package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func bookingRouter(service *MockBookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/bookings")
	group.Use(RequireAuth(testSecret))
	NewBookingHandler(service).Register(group)
	return router
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:              7,
		Token:           "tok-7",
		UserID:          "user-1",
		TempleID:        1,
		TempleName:      "Dwarkadhish Temple",
		VisitDate:       "2026-09-01",
		TimeSlot:        "08:00",
		TicketType:      domain.TicketTypeVIP,
		NumberOfTickets: 2,
		TotalAmount:     400,
		PaymentMethod:   domain.PaymentMethodUPI,
		DevoteeName:     "Asha Patel",
		DevoteeEmail:    "asha@example.com",
		Status:          domain.BookingStatusConfirmed,
		CreatedAt:       time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestBookingsRequireAuth(t *testing.T) {
	router := bookingRouter(&MockBookingService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListBookingsScopedToTokenSubject(t *testing.T) {
	service := &MockBookingService{}
	service.On("ListBookings", mock.Anything, "user-1").Return([]domain.Booking{*confirmedBooking()}, nil)
	router := bookingRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out []bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "tok-7", out[0].Token)
	assert.Equal(t, int64(400), out[0].TotalPrice)
	assert.Equal(t, "CONFIRMED", out[0].PaymentStatus)
	service.AssertExpectations(t)
}

func TestGetBookingForeignOwnerIs403(t *testing.T) {
	service := &MockBookingService{}
	service.On("GetBooking", mock.Anything, "tok-7", "user-2").Return(nil, booking.ErrNotOwner)
	router := bookingRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/tok-7", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-2"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelBooking(t *testing.T) {
	cancelled := confirmedBooking()
	cancelled.Status = domain.BookingStatusCancelled

	service := &MockBookingService{}
	service.On("CancelBooking", mock.Anything, "tok-7", "user-1").Return(cancelled, nil)
	router := bookingRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/tok-7/cancel", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "CANCELLED", out.PaymentStatus)
}

func TestExportBookingJSON(t *testing.T) {
	service := &MockBookingService{}
	service.On("GetBooking", mock.Anything, "tok-7", "user-1").Return(confirmedBooking(), nil)
	router := bookingRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/tok-7/export/json", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="darshan-ticket-tok-7.json"`, w.Header().Get("Content-Disposition"))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Dwarkadhish Temple", out["temple"])
}

func TestExportBookingPDF(t *testing.T) {
	service := &MockBookingService{}
	service.On("GetBooking", mock.Anything, "tok-7", "user-1").Return(confirmedBooking(), nil)
	router := bookingRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/tok-7/export/pdf", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, len(w.Body.Bytes()) > 0)
}

func TestExportBookingCalendarLink(t *testing.T) {
	service := &MockBookingService{}
	service.On("GetBooking", mock.Anything, "tok-7", "user-1").Return(confirmedBooking(), nil)
	router := bookingRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/tok-7/export/calendar", nil)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, out.URL, "calendar.google.com")
	assert.Contains(t, out.URL, "20260901T080000")
}
