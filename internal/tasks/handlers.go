package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/kafka"
	"github.com/mandirtech/edarshan/internal/metrics"
	"github.com/mandirtech/edarshan/internal/repository"
)

type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type HoldReleaser interface {
	ReleaseSlotHold(ctx context.Context, templeID int64, visitDate, slot string) error
}

// Handlers runs the worker side of the simulated payment flow. The two
// artificial delays live here, owned by the worker rather than a request, so
// an interrupted client never strands a booking mid-payment.
type Handlers struct {
	bookings     repository.BookingRepository
	enqueuer     Enqueuer
	producer     Producer
	holds        HoldReleaser
	bookingTopic string
	confirmDelay time.Duration
	metrics      *metrics.Metrics
}

type HandlerOption func(*Handlers)

func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handlers) {
		h.metrics = m
	}
}

func NewHandlers(
	bookings repository.BookingRepository,
	enqueuer Enqueuer,
	producer Producer,
	holds HoldReleaser,
	bookingTopic string,
	confirmDelay time.Duration,
	opts ...HandlerOption,
) *Handlers {
	h := &Handlers{
		bookings:     bookings,
		enqueuer:     enqueuer,
		producer:     producer,
		holds:        holds,
		bookingTopic: bookingTopic,
		confirmDelay: confirmDelay,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypePaymentProcess, h.HandlePaymentProcess)
	mux.HandleFunc(TypePaymentConfirm, h.HandlePaymentConfirm)
	mux.HandleFunc(TypeExpirySweep, h.HandleExpirySweep)
}

// HandlePaymentProcess moves a booking into PROCESSING and schedules the
// confirmation hop. Idempotent on status: a redelivered task is a no-op.
func (h *Handlers) HandlePaymentProcess(ctx context.Context, t *asynq.Task) error {
	var payload PaymentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	booking, err := h.bookings.GetByToken(ctx, payload.Token)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			log.Printf("payment process: booking %s gone, dropping task", payload.Token)
			return nil
		}
		return err
	}
	if booking.Status != domain.BookingStatusAwaitingPayment {
		return nil
	}

	if _, err := h.bookings.UpdateStatus(ctx, payload.Token, domain.BookingStatusProcessing); err != nil {
		return err
	}

	confirm, err := NewPaymentConfirmTask(payload.Token)
	if err != nil {
		return err
	}
	if _, err := h.enqueuer.Enqueue(confirm, asynq.ProcessIn(h.confirmDelay)); err != nil {
		return err
	}
	return nil
}

// HandlePaymentConfirm finishes the simulated payment: the booking becomes
// CONFIRMED, the slot hold is released and a booking_confirmed event goes out.
func (h *Handlers) HandlePaymentConfirm(ctx context.Context, t *asynq.Task) error {
	var payload PaymentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	booking, err := h.bookings.GetByToken(ctx, payload.Token)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil
		}
		return err
	}
	if booking.Status == domain.BookingStatusConfirmed || !booking.IsActive() {
		return nil
	}

	updated, err := h.bookings.UpdateStatus(ctx, payload.Token, domain.BookingStatusConfirmed)
	if err != nil {
		return err
	}

	if h.holds != nil {
		_ = h.holds.ReleaseSlotHold(ctx, updated.TempleID, updated.VisitDate, updated.TimeSlot)
	}
	if h.metrics != nil {
		h.metrics.PaymentsConfirmed.Inc()
	}
	if err := h.publish(ctx, "booking_confirmed", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_confirmed for %s: %v", updated.Token, err)
	}
	return nil
}

// HandleExpirySweep expires AWAITING_PAYMENT bookings whose hold window has
// lapsed and releases their slot holds.
func (h *Handlers) HandleExpirySweep(ctx context.Context, t *asynq.Task) error {
	var payload ExpirySweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	deadline := time.Now().Add(-time.Duration(payload.OlderThanMinutes) * time.Minute)
	expired, err := h.bookings.ExpireAwaitingBefore(ctx, deadline)
	if err != nil {
		return err
	}
	for _, b := range expired {
		if h.holds != nil {
			_ = h.holds.ReleaseSlotHold(ctx, b.TempleID, b.VisitDate, b.TimeSlot)
		}
		_ = h.publish(ctx, "booking_expired", &b)
	}
	if len(expired) > 0 {
		log.Printf("expired %d bookings", len(expired))
	}
	return nil
}

func (h *Handlers) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if h.producer == nil || h.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		Token:           booking.Token,
		TempleID:        booking.TempleID,
		TempleName:      booking.TempleName,
		VisitDate:       booking.VisitDate,
		TimeSlot:        booking.TimeSlot,
		DevoteeName:     booking.DevoteeName,
		DevoteeEmail:    booking.DevoteeEmail,
		NumberOfTickets: booking.NumberOfTickets,
		TotalAmount:     booking.TotalAmount,
		Status:          string(booking.Status),
		OccurredAt:      time.Now(),
	}
	return h.producer.Publish(ctx, h.bookingTopic, booking.Token, event)
}
