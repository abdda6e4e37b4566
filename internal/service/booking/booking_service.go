package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/mandirtech/edarshan/internal/kafka"
	"github.com/mandirtech/edarshan/internal/metrics"
	"github.com/mandirtech/edarshan/internal/repository"
	"github.com/mandirtech/edarshan/internal/slots"
	"github.com/mandirtech/edarshan/internal/tasks"
	"github.com/mandirtech/edarshan/internal/wizard"
)

var (
	ErrDraftNotFound   = errors.New("draft not found or expired")
	ErrDraftIncomplete = errors.New("draft has not completed all steps")
	ErrSlotHeld        = errors.New("slot is being checked out by another devotee")
	ErrNotOwner        = errors.New("booking belongs to another user")
)

// ValidationError carries the field-level messages of a rejected step.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

type BookingUseCase interface {
	StartDraft(ctx context.Context) (*wizard.Draft, error)
	GetDraft(ctx context.Context, id string) (*wizard.Draft, error)
	ApplyStep(ctx context.Context, draftID string, step wizard.Step, input StepInput) (*wizard.Draft, error)
	Back(ctx context.Context, draftID string) (*wizard.Draft, error)
	SlotsForTemple(ctx context.Context, templeID int64, visitDate string) ([]domain.Slot, error)
	Checkout(ctx context.Context, draftID, userID string) (*CheckoutResult, error)
	Confirm(ctx context.Context, token, draftID string) (*Confirmation, error)
	CreateBooking(ctx context.Context, userID string, input StepInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, token, userID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, token, userID string) (*domain.Booking, error)
}

// StepInput is the wire-level partial data for one wizard step. The service
// resolves temple IDs to records before handing it to the draft.
type StepInput struct {
	TempleID        *int64                 `json:"templeId,omitempty"`
	VisitDate       *string                `json:"selectedDate,omitempty"`
	TimeSlot        *string                `json:"timeSlot,omitempty"`
	TicketType      *domain.TicketType     `json:"ticketType,omitempty"`
	NumberOfTickets *int                   `json:"numberOfTickets,omitempty"`
	Devotees        *domain.DevoteeDetails `json:"devoteeDetails,omitempty"`
	PaymentMethod   *domain.PaymentMethod  `json:"paymentMethod,omitempty"`
}

type CheckoutResult struct {
	Booking *domain.Booking `json:"booking"`
	PayURL  string          `json:"url"`
}

// Confirmation pairs the server booking record with whatever is left of the
// wizard draft. When the two disagree the server side wins; Mismatches names
// the fields that differed so the UI can say so instead of silently picking.
type Confirmation struct {
	Booking    *domain.Booking `json:"ticket"`
	Draft      *wizard.Draft   `json:"draft,omitempty"`
	Mismatches []string        `json:"mismatches,omitempty"`
}

type Cache interface {
	SaveDraft(ctx context.Context, draft *wizard.Draft) error
	GetDraft(ctx context.Context, id string) (*wizard.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	AcquireSlotHold(ctx context.Context, templeID int64, visitDate, slot, draftID string, ttl time.Duration) (bool, error)
	ReleaseSlotHold(ctx context.Context, templeID int64, visitDate, slot string) error
}

// Producer publishes booking events. Checkout and cancellation are the only
// writers and both want the retrying path: a dropped event means a devotee
// never hears about their own booking.
type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const publishRetries = 3

type BookingService struct {
	bookings     repository.BookingRepository
	temples      repository.TempleRepository
	cache        Cache
	producer     Producer
	enqueuer     tasks.Enqueuer
	generator    *slots.Generator
	metrics      *metrics.Metrics
	bookingTopic string
	payURLBase   string
	holdTTL      time.Duration
	processDelay time.Duration
	maxTickets   int
	now          func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

// WithMaxTickets overrides the per-booking ticket ceiling new drafts start
// with.
func WithMaxTickets(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.maxTickets = n
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	temples repository.TempleRepository,
	cache Cache,
	producer Producer,
	enqueuer tasks.Enqueuer,
	generator *slots.Generator,
	bookingTopic string,
	payURLBase string,
	holdTTL, processDelay time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		temples:      temples,
		cache:        cache,
		producer:     producer,
		enqueuer:     enqueuer,
		generator:    generator,
		bookingTopic: bookingTopic,
		payURLBase:   payURLBase,
		holdTTL:      holdTTL,
		processDelay: processDelay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) StartDraft(ctx context.Context) (*wizard.Draft, error) {
	draft := s.newDraft()
	if err := s.cache.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *BookingService) newDraft() *wizard.Draft {
	draft := wizard.NewDraft(uuid.NewString(), s.now())
	if s.maxTickets >= wizard.MinTickets {
		draft.MaxTickets = s.maxTickets
	}
	return draft
}

func (s *BookingService) GetDraft(ctx context.Context, id string) (*wizard.Draft, error) {
	draft, err := s.cache.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// ApplyStep resolves the step input, validates what the step itself is
// responsible for, and lets the draft merge-and-advance.
func (s *BookingService) ApplyStep(ctx context.Context, draftID string, step wizard.Step, input StepInput) (*wizard.Draft, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	data := wizard.StepData{
		VisitDate:       input.VisitDate,
		TimeSlot:        input.TimeSlot,
		TicketType:      input.TicketType,
		NumberOfTickets: input.NumberOfTickets,
		Devotees:        input.Devotees,
		PaymentMethod:   input.PaymentMethod,
	}
	if input.TempleID != nil {
		temple, err := s.temples.GetByID(ctx, *input.TempleID)
		if err != nil {
			return nil, err
		}
		data.Temple = temple
	}

	// The devotee form validates before it may complete its step.
	if step == wizard.StepDevotees {
		if input.Devotees == nil {
			return nil, &ValidationError{Fields: map[string]string{"devoteeDetails": "devotee details are required"}}
		}
		n := draft.NumberOfTickets
		if input.NumberOfTickets != nil {
			n = *input.NumberOfTickets
		}
		if fields := wizard.ValidateDevotees(*input.Devotees, n); len(fields) > 0 {
			return nil, &ValidationError{Fields: fields}
		}
	}

	if err := draft.ApplyStep(step, data); err != nil {
		return nil, err
	}
	if err := s.cache.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *BookingService) Back(ctx context.Context, draftID string) (*wizard.Draft, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	draft.Back()
	if err := s.cache.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SlotsForTemple regenerates the slot list for a temple and date. Estimates
// are never cached; only the booked count is real.
func (s *BookingService) SlotsForTemple(ctx context.Context, templeID int64, visitDate string) ([]domain.Slot, error) {
	temple, err := s.temples.GetByID(ctx, templeID)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(*temple, func(slot string) int {
		n, err := s.bookings.CountActiveForSlot(ctx, templeID, visitDate, slot)
		if err != nil {
			log.Printf("count bookings for slot %s: %v", slot, err)
			return 0
		}
		return n
	})
}

// Checkout turns a completed draft into an AWAITING_PAYMENT booking and kicks
// off the simulated payment. The wizard's client-side total is recomputed from
// the stored temple prices; the server amount is what gets charged.
func (s *BookingService) Checkout(ctx context.Context, draftID, userID string) (*CheckoutResult, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !draft.Complete() {
		return nil, ErrDraftIncomplete
	}
	if fields := wizard.ValidateDevotees(*draft.Devotees, draft.NumberOfTickets); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	temple, err := s.temples.GetByID(ctx, draft.Temple.ID)
	if err != nil {
		return nil, err
	}
	total := temple.UnitPrice(draft.TicketType) * int64(draft.NumberOfTickets)

	held, err := s.cache.AcquireSlotHold(ctx, temple.ID, draft.VisitDate, draft.TimeSlot, draft.ID, s.holdTTL)
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, ErrSlotHeld
	}

	booking := &domain.Booking{
		Token:           uuid.NewString(),
		UserID:          userID,
		TempleID:        temple.ID,
		TempleName:      temple.Name,
		VisitDate:       draft.VisitDate,
		TimeSlot:        draft.TimeSlot,
		TicketType:      draft.TicketType,
		NumberOfTickets: draft.NumberOfTickets,
		TotalAmount:     total,
		PaymentMethod:   draft.PaymentMethod,
		DevoteeName:     draft.Devotees.Primary.Name,
		DevoteeEmail:    draft.Devotees.Primary.Email,
		DevoteePhone:    draft.Devotees.Primary.Phone,
	}
	if err := s.bookings.Create(ctx, booking, temple.Capacity); err != nil {
		_ = s.cache.ReleaseSlotHold(ctx, temple.ID, draft.VisitDate, draft.TimeSlot)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("WARNING: failed to publish booking_created for %s: %v", booking.Token, err)
	}

	task, err := tasks.NewPaymentProcessTask(booking.Token)
	if err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.Enqueue(task, asynq.ProcessIn(s.processDelay)); err != nil {
		return nil, fmt.Errorf("enqueue payment processing: %w", err)
	}

	return &CheckoutResult{
		Booking: booking,
		PayURL:  fmt.Sprintf("%s/payment-success?ticket_id=%s", s.payURLBase, booking.Token),
	}, nil
}

// Confirm returns the server booking record plus the surviving draft, if the
// client still has one, with an explicit list of fields where the two
// disagree.
func (s *BookingService) Confirm(ctx context.Context, token, draftID string) (*Confirmation, error) {
	booking, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	conf := &Confirmation{Booking: booking}
	if draftID != "" {
		draft, err := s.cache.GetDraft(ctx, draftID)
		if err == nil && draft != nil {
			conf.Draft = draft
			conf.Mismatches = reconcile(booking, draft)
			// The draft has served its purpose once the confirmed record is
			// rendered.
			if booking.Status == domain.BookingStatusConfirmed {
				_ = s.cache.DeleteDraft(ctx, draftID)
			}
		}
	}
	return conf, nil
}

// CreateBooking is the draft-less path behind POST /bookings: the client
// submits the whole record at once and the same validation, hold and payment
// pipeline runs.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, input StepInput) (*domain.Booking, error) {
	if input.TempleID == nil || input.VisitDate == nil || input.TimeSlot == nil ||
		input.Devotees == nil || input.PaymentMethod == nil {
		return nil, ErrDraftIncomplete
	}

	draft := s.newDraft()
	for step := wizard.StepTemple; step <= wizard.StepPayment; step++ {
		if _, err := s.applyToDraft(ctx, draft, step, input); err != nil {
			return nil, err
		}
	}
	if err := s.cache.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}

	result, err := s.Checkout(ctx, draft.ID, userID)
	if err != nil {
		return nil, err
	}
	return result.Booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, token, userID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if userID != "" && booking.UserID != userID {
		return nil, ErrNotOwner
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) CancelBooking(ctx context.Context, token, userID string) (*domain.Booking, error) {
	current, err := s.GetBooking(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if !current.CanBeCancelled() {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	_ = s.cache.ReleaseSlotHold(ctx, updated.TempleID, updated.VisitDate, updated.TimeSlot)
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_cancelled for %s: %v", updated.Token, err)
	}
	return updated, nil
}

func (s *BookingService) applyToDraft(ctx context.Context, draft *wizard.Draft, step wizard.Step, input StepInput) (*wizard.Draft, error) {
	data := wizard.StepData{}
	switch step {
	case wizard.StepTemple:
		temple, err := s.temples.GetByID(ctx, *input.TempleID)
		if err != nil {
			return nil, err
		}
		data.Temple = temple
	case wizard.StepSlot:
		data.VisitDate = input.VisitDate
		data.TimeSlot = input.TimeSlot
	case wizard.StepTickets:
		data.TicketType = input.TicketType
		data.NumberOfTickets = input.NumberOfTickets
	case wizard.StepDevotees:
		n := draft.NumberOfTickets
		if fields := wizard.ValidateDevotees(*input.Devotees, n); len(fields) > 0 {
			return nil, &ValidationError{Fields: fields}
		}
		data.Devotees = input.Devotees
	case wizard.StepPayment:
		data.PaymentMethod = input.PaymentMethod
	}
	if err := draft.ApplyStep(step, data); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
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
		OccurredAt:      s.now(),
	}
	return s.producer.PublishWithRetry(ctx, s.bookingTopic, booking.Token, event, publishRetries)
}

func reconcile(booking *domain.Booking, draft *wizard.Draft) []string {
	var mismatches []string
	if draft.TotalAmount != booking.TotalAmount {
		mismatches = append(mismatches, "totalAmount")
	}
	if draft.TimeSlot != booking.TimeSlot {
		mismatches = append(mismatches, "timeSlot")
	}
	if draft.VisitDate != booking.VisitDate {
		mismatches = append(mismatches, "selectedDate")
	}
	if draft.NumberOfTickets != booking.NumberOfTickets {
		mismatches = append(mismatches, "numberOfTickets")
	}
	return mismatches
}

var _ BookingUseCase = (*BookingService)(nil)
