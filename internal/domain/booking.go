package domain

import "time"

type BookingStatus string

const (
	BookingStatusAwaitingPayment BookingStatus = "AWAITING_PAYMENT"
	BookingStatusProcessing      BookingStatus = "PROCESSING"
	BookingStatusConfirmed       BookingStatus = "CONFIRMED"
	BookingStatusCancelled       BookingStatus = "CANCELLED"
	BookingStatusExpired         BookingStatus = "EXPIRED"
)

type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetbanking, PaymentMethodWallet:
		return PaymentMethod(s), true
	}
	return "", false
}

// Devotee is the primary contact for a booking.
type Devotee struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Age     int    `json:"age"`
	Address string `json:"address"`
}

// Companion is an additional devotee tied to one extra ticket.
type Companion struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type DevoteeDetails struct {
	Primary    Devotee     `json:"primaryDevotee"`
	Additional []Companion `json:"additionalDevotees"`
}

type Booking struct {
	ID              int64
	Token           string
	UserID          string
	TempleID        int64
	TempleName      string
	VisitDate       string
	TimeSlot        string
	TicketType      TicketType
	NumberOfTickets int
	TotalAmount     int64
	PaymentMethod   PaymentMethod
	DevoteeName     string
	DevoteeEmail    string
	DevoteePhone    string
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusExpired
}

func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusAwaitingPayment || b.Status == BookingStatusConfirmed
}
