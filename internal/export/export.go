package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mandirtech/edarshan/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// BookingJSON renders the confirmed booking as a downloadable JSON blob.
func BookingJSON(b *domain.Booking) ([]byte, string, error) {
	payload, err := json.MarshalIndent(map[string]interface{}{
		"ticketId":        b.Token,
		"temple":          b.TempleName,
		"devoteeName":     b.DevoteeName,
		"selectedDate":    b.VisitDate,
		"timeSlot":        b.TimeSlot,
		"ticketType":      b.TicketType,
		"numberOfTickets": b.NumberOfTickets,
		"totalAmount":     b.TotalAmount,
		"paymentMethod":   b.PaymentMethod,
		"paymentStatus":   b.Status,
		"bookedAt":        b.CreatedAt.Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return payload, fmt.Sprintf("darshan-ticket-%s.json", b.Token), nil
}

// TicketPDF builds the printable darshan ticket.
func TicketPDF(b *domain.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Darshan Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-DARSHAN TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket ID      : %s", b.Token),
		fmt.Sprintf("Temple         : %s", safe(b.TempleName)),
		fmt.Sprintf("Devotee        : %s", safe(b.DevoteeName)),
		fmt.Sprintf("Darshan Date   : %s", safe(b.VisitDate)),
		fmt.Sprintf("Time Slot      : %s", safe(b.TimeSlot)),
		fmt.Sprintf("Ticket Type    : %s", strings.ToUpper(string(b.TicketType))),
		fmt.Sprintf("Tickets        : %d", b.NumberOfTickets),
		fmt.Sprintf("Amount Paid    : Rs. %d", b.TotalAmount),
		fmt.Sprintf("Payment        : %s (%s)", b.Status, b.PaymentMethod),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Carry a valid photo ID. Arrive 15 minutes before your slot.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("darshan-ticket-%s.pdf", b.Token), nil
}

// CalendarURL builds a Google Calendar deep link for the darshan slot. The
// event spans the slot hour.
func CalendarURL(b *domain.Booking) (string, error) {
	start, err := time.Parse("2006-01-02 15:04", b.VisitDate+" "+b.TimeSlot)
	if err != nil {
		return "", fmt.Errorf("parse slot time: %w", err)
	}
	end := start.Add(time.Hour)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", fmt.Sprintf("Darshan at %s", b.TempleName))
	q.Set("dates", start.Format("20060102T150405")+"/"+end.Format("20060102T150405"))
	q.Set("details", fmt.Sprintf("E-darshan booking %s for %d ticket(s).", b.Token, b.NumberOfTickets))
	q.Set("location", b.TempleName)

	return "https://calendar.google.com/calendar/render?" + q.Encode(), nil
}

func safe(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
