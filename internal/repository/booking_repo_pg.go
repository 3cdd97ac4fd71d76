package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rn1737/cargobooking/internal/domain"
)

// PGBookingRepository persists bookings in Postgres. Flights and timeline
// are value snapshots owned by the booking, never queried on their own, so
// they are stored as JSONB columns.
type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewPGBookingRepository(db *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	flights, timeline, err := marshalSnapshots(booking)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `INSERT INTO bookings (ref_id, origin, destination, pieces, weight_kg, status, created_at, updated_at, flights, timeline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		strings.ToUpper(booking.RefID), booking.Origin, booking.Destination, booking.Pieces, booking.WeightKg,
		booking.Status, booking.CreatedAt, booking.UpdatedAt, flights, timeline)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrRefIDExists
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT ref_id, origin, destination, pieces, weight_kg, status, created_at, updated_at, flights, timeline
		FROM bookings WHERE ref_id = upper($1)`, refID)
	return scanBooking(row)
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	flights, timeline, err := marshalSnapshots(booking)
	if err != nil {
		return err
	}

	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=$2, flights=$3, timeline=$4 WHERE ref_id = upper($5)`,
		booking.Status, booking.UpdatedAt, flights, timeline, booking.RefID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT ref_id, origin, destination, pieces, weight_kg, status, created_at, updated_at, flights, timeline
		FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var flights, timeline []byte
	if err := row.Scan(&b.RefID, &b.Origin, &b.Destination, &b.Pieces, &b.WeightKg, &b.Status, &b.CreatedAt, &b.UpdatedAt, &flights, &timeline); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(flights, &b.Flights); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(timeline, &b.Timeline); err != nil {
		return nil, err
	}
	return &b, nil
}

func marshalSnapshots(booking *domain.Booking) ([]byte, []byte, error) {
	flights, err := json.Marshal(booking.Flights)
	if err != nil {
		return nil, nil, err
	}
	timeline, err := json.Marshal(booking.Timeline)
	if err != nil {
		return nil, nil, err
	}
	return flights, timeline, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
