package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mandirtech/edarshan/internal/domain"
)

var ErrTempleNotFound = errors.New("temple not found")

type TempleRepository interface {
	List(ctx context.Context) ([]domain.Temple, error)
	GetByID(ctx context.Context, id int64) (*domain.Temple, error)
	IncrementVisits(ctx context.Context, id int64) (int64, error)
}

type PGTempleRepository struct {
	db *pgxpool.Pool
}

func NewTempleRepository(db *pgxpool.Pool) TempleRepository {
	return &PGTempleRepository{db: db}
}

const templeColumns = `id, name, location, capacity, open_time, close_time, price_regular, price_vip, price_senior, created_at, updated_at`

func (r *PGTempleRepository) List(ctx context.Context) ([]domain.Temple, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templeColumns+` FROM temples ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	temples := make([]domain.Temple, 0)
	for rows.Next() {
		t, err := scanTemple(rows)
		if err != nil {
			return nil, err
		}
		temples = append(temples, *t)
	}
	return temples, rows.Err()
}

func (r *PGTempleRepository) GetByID(ctx context.Context, id int64) (*domain.Temple, error) {
	row := r.db.QueryRow(ctx, `SELECT `+templeColumns+` FROM temples WHERE id=$1`, id)
	t, err := scanTemple(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTempleNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *PGTempleRepository) IncrementVisits(ctx context.Context, id int64) (int64, error) {
	var visits int64
	err := r.db.QueryRow(ctx, `UPDATE temples SET visits = visits + 1, updated_at = now() WHERE id=$1 RETURNING visits`, id).Scan(&visits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrTempleNotFound
		}
		return 0, err
	}
	return visits, nil
}

func scanTemple(row pgx.Row) (*domain.Temple, error) {
	var t domain.Temple
	if err := row.Scan(&t.ID, &t.Name, &t.Location, &t.Capacity, &t.OpenTime, &t.CloseTime,
		&t.TicketPrices.Regular, &t.TicketPrices.VIP, &t.TicketPrices.Senior, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ TempleRepository = (*PGTempleRepository)(nil)
