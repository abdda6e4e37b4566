package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mandirtech/edarshan/internal/domain"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotFull        = errors.New("no capacity left in slot")
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking, capacity int) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error)
	CountActiveForSlot(ctx context.Context, templeID int64, visitDate, timeSlot string) (int, error)
	ExpireAwaitingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, token, user_id, temple_id, temple_name, visit_date, time_slot, ticket_type, number_of_tickets, total_amount, payment_method, devotee_name, devotee_email, devotee_phone, status, created_at, updated_at`

// Postgres rejects FOR UPDATE combined with aggregates, so the capacity check
// serializes on the parent temple row and runs the SUM unlocked afterwards.
const (
	lockTempleSQL = `SELECT id FROM temples WHERE id=$1 FOR UPDATE`

	slotTicketsSQL = `SELECT COALESCE(SUM(number_of_tickets), 0) FROM bookings
		WHERE temple_id=$1 AND visit_date=$2 AND time_slot=$3 AND status NOT IN ($4, $5)`
)

// Create inserts the booking after re-checking slot capacity inside the same
// transaction, so two concurrent checkouts cannot oversell a slot.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, capacity int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var templeID int64
	if err := tx.QueryRow(ctx, lockTempleSQL, booking.TempleID).Scan(&templeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTempleNotFound
		}
		return err
	}

	var taken int
	if err := tx.QueryRow(ctx, slotTicketsSQL,
		booking.TempleID, booking.VisitDate, booking.TimeSlot,
		domain.BookingStatusCancelled, domain.BookingStatusExpired).Scan(&taken); err != nil {
		return err
	}
	if taken+booking.NumberOfTickets > capacity {
		return ErrSlotFull
	}

	booking.Status = domain.BookingStatusAwaitingPayment
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (token, user_id, temple_id, temple_name, visit_date, time_slot, ticket_type, number_of_tickets, total_amount, payment_method, devotee_name, devotee_email, devotee_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		booking.Token, booking.UserID, booking.TempleID, booking.TempleName, booking.VisitDate, booking.TimeSlot,
		booking.TicketType, booking.NumberOfTickets, booking.TotalAmount, booking.PaymentMethod,
		booking.DevoteeName, booking.DevoteeEmail, booking.DevoteePhone, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING `+bookingColumns, status, token)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) CountActiveForSlot(ctx context.Context, templeID int64, visitDate, timeSlot string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, slotTicketsSQL,
		templeID, visitDate, timeSlot, domain.BookingStatusCancelled, domain.BookingStatusExpired).Scan(&count)
	return count, err
}

func (r *PGBookingRepository) ExpireAwaitingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusAwaitingPayment, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Token, &b.UserID, &b.TempleID, &b.TempleName, &b.VisitDate, &b.TimeSlot,
		&b.TicketType, &b.NumberOfTickets, &b.TotalAmount, &b.PaymentMethod,
		&b.DevoteeName, &b.DevoteeEmail, &b.DevoteePhone, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
