package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mandirtech/edarshan/internal/kafka"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Message is the devotee-facing notification handed to downstream delivery
// (SMS/email gateways consume the notifications topic).
type Message struct {
	Token     string    `json:"token"`
	Recipient string    `json:"recipient"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Sender turns booking events into devotee notifications. Local delivery is a
// stdout stub; the rendered message also goes out on the notifications topic.
type Sender struct {
	producer Producer
	topic    string
}

func NewSender(producer Producer, topic string) *Sender {
	return &Sender{producer: producer, topic: topic}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg := render(event)
	fmt.Printf("notify %s <%s>: %s\n", msg.Recipient, msg.Email, msg.Subject)

	if s.producer == nil || s.topic == "" {
		return nil
	}
	if err := s.producer.Publish(ctx, s.topic, event.Token, msg); err != nil {
		log.Printf("WARNING: failed to forward notification for %s: %v", event.Token, err)
	}
	return nil
}

func render(event kafka.BookingEvent) Message {
	var subject, body string
	switch event.Type {
	case "booking_confirmed":
		subject = fmt.Sprintf("Darshan confirmed at %s", event.TempleName)
		body = fmt.Sprintf("Your darshan at %s on %s (%s) is confirmed. Ticket %s, %d ticket(s), Rs. %d.",
			event.TempleName, event.VisitDate, event.TimeSlot, event.Token, event.NumberOfTickets, event.TotalAmount)
	case "booking_cancelled":
		subject = fmt.Sprintf("Darshan booking cancelled at %s", event.TempleName)
		body = fmt.Sprintf("Booking %s for %s on %s was cancelled.", event.Token, event.TempleName, event.VisitDate)
	case "booking_expired":
		subject = fmt.Sprintf("Darshan booking expired at %s", event.TempleName)
		body = fmt.Sprintf("Booking %s expired before payment completed. The slot was released.", event.Token)
	default:
		subject = fmt.Sprintf("Darshan booking update for %s", event.TempleName)
		body = fmt.Sprintf("Booking %s is now %s.", event.Token, event.Status)
	}

	return Message{
		Token:     event.Token,
		Recipient: event.DevoteeName,
		Email:     event.DevoteeEmail,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now(),
	}
}
