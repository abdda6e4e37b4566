package domain

import "time"

type TicketType string

const (
	TicketTypeRegular TicketType = "regular"
	TicketTypeVIP     TicketType = "vip"
	TicketTypeSenior  TicketType = "senior"
)

func ParseTicketType(s string) (TicketType, bool) {
	switch TicketType(s) {
	case TicketTypeRegular, TicketTypeVIP, TicketTypeSenior:
		return TicketType(s), true
	}
	return "", false
}

// TicketPrices holds per-type prices in whole rupees.
type TicketPrices struct {
	Regular int64 `json:"regular"`
	VIP     int64 `json:"vip"`
	Senior  int64 `json:"senior"`
}

func (p TicketPrices) For(t TicketType) int64 {
	switch t {
	case TicketTypeVIP:
		return p.VIP
	case TicketTypeSenior:
		return p.Senior
	default:
		return p.Regular
	}
}

type Temple struct {
	ID           int64
	Name         string
	Location     string
	Capacity     int
	OpenTime     string // "HH:MM"
	CloseTime    string // "HH:MM"
	TicketPrices TicketPrices
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UnitPrice returns the price of one ticket of the given type.
func (t *Temple) UnitPrice(tt TicketType) int64 {
	return t.TicketPrices.For(tt)
}
