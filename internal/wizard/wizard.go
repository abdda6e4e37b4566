package wizard

import (
	"errors"
	"time"

	"github.com/mandirtech/edarshan/internal/domain"
)

// Step numbers the six stages of the e-darshan booking flow.
type Step int

const (
	StepTemple Step = iota + 1
	StepSlot
	StepTickets
	StepDevotees
	StepPayment
	StepConfirmation
)

// MaxTickets is the default per-booking ceiling; each draft carries its own
// limit so deployments can configure a lower one.
const (
	MinTickets = 1
	MaxTickets = 10
)

var (
	ErrInvalidStep    = errors.New("step out of range")
	ErrStepNotReached = errors.New("step not reached yet")
	ErrTicketBounds   = errors.New("ticket count out of range")
)

// Draft is the accumulated state of one booking wizard session. It lives in
// redis between requests and is discarded when its TTL lapses.
type Draft struct {
	ID              string                 `json:"id"`
	Step            Step                   `json:"step"`
	Temple          *domain.Temple         `json:"temple,omitempty"`
	VisitDate       string                 `json:"selectedDate,omitempty"` // "YYYY-MM-DD"
	TimeSlot        string                 `json:"timeSlot,omitempty"`     // "HH:00"
	TicketType      domain.TicketType      `json:"ticketType"`
	NumberOfTickets int                    `json:"numberOfTickets"`
	MaxTickets      int                    `json:"maxTickets"`
	Devotees        *domain.DevoteeDetails `json:"devoteeDetails,omitempty"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod,omitempty"`
	TotalAmount     int64                  `json:"totalAmount"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// StepData is the partial update a completed step reports. Nil fields are
// left untouched by the merge.
type StepData struct {
	Temple          *domain.Temple
	VisitDate       *string
	TimeSlot        *string
	TicketType      *domain.TicketType
	NumberOfTickets *int
	Devotees        *domain.DevoteeDetails
	PaymentMethod   *domain.PaymentMethod
}

func NewDraft(id string, now time.Time) *Draft {
	return &Draft{
		ID:              id,
		Step:            StepTemple,
		TicketType:      domain.TicketTypeRegular,
		NumberOfTickets: MinTickets,
		MaxTickets:      MaxTickets,
		CreatedAt:       now,
	}
}

func (d *Draft) ticketLimit() int {
	if d.MaxTickets >= MinTickets {
		return d.MaxTickets
	}
	return MaxTickets
}

// ApplyStep merges data into the draft and, for any step before confirmation,
// advances the wizard to step+1. Steps ahead of the current position are
// rejected; re-submitting an earlier step is allowed and moves the wizard
// right after it.
func (d *Draft) ApplyStep(step Step, data StepData) error {
	if step < StepTemple || step > StepConfirmation {
		return ErrInvalidStep
	}
	if step > d.Step {
		return ErrStepNotReached
	}
	if err := d.merge(data); err != nil {
		return err
	}
	if step < StepConfirmation {
		d.Step = step + 1
	}
	return nil
}

// Back steps the wizard one stage back; it is a no-op on the first step.
func (d *Draft) Back() {
	if d.Step > StepTemple {
		d.Step--
	}
}

func (d *Draft) merge(data StepData) error {
	if data.NumberOfTickets != nil {
		if *data.NumberOfTickets < MinTickets || *data.NumberOfTickets > d.ticketLimit() {
			return ErrTicketBounds
		}
		d.NumberOfTickets = *data.NumberOfTickets
	}
	if data.Temple != nil {
		if d.Temple == nil || d.Temple.ID != data.Temple.ID {
			d.TimeSlot = ""
		}
		d.Temple = data.Temple
	}
	if data.VisitDate != nil {
		if d.VisitDate != *data.VisitDate {
			d.TimeSlot = ""
		}
		d.VisitDate = *data.VisitDate
	}
	if data.TimeSlot != nil {
		d.TimeSlot = *data.TimeSlot
	}
	if data.TicketType != nil {
		d.TicketType = *data.TicketType
	}
	if data.Devotees != nil {
		d.Devotees = data.Devotees
	}
	if data.PaymentMethod != nil {
		d.PaymentMethod = *data.PaymentMethod
	}
	d.recomputeTotal()
	return nil
}

// recomputeTotal keeps totalAmount == unitPrice(ticketType) * numberOfTickets
// whenever any of its inputs change.
func (d *Draft) recomputeTotal() {
	if d.Temple == nil {
		d.TotalAmount = 0
		return
	}
	d.TotalAmount = d.Temple.UnitPrice(d.TicketType) * int64(d.NumberOfTickets)
}

// Complete reports whether every step before confirmation has produced its
// data, i.e. the draft can be checked out.
func (d *Draft) Complete() bool {
	return d.Temple != nil &&
		d.VisitDate != "" &&
		d.TimeSlot != "" &&
		d.Devotees != nil &&
		d.PaymentMethod != "" &&
		d.NumberOfTickets >= MinTickets
}
