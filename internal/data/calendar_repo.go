package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ltm/adventcal/internal/data/pgxutil"
	"github.com/ltm/adventcal/internal/domain/model"
	apperrors "github.com/ltm/adventcal/internal/errors"
)

// CalendarRepo provides database operations for calendar messages and
// per-user opened days.
type CalendarRepo struct {
	Pool         *pgxpool.Pool
	timeProvider TimeProvider
}

// NewCalendarRepo creates a new CalendarRepo.
func NewCalendarRepo(pool *pgxpool.Pool) *CalendarRepo {
	return &CalendarRepo{Pool: pool, timeProvider: &RealTimeProvider{}}
}

// MessageForDay returns the hidden message behind a day.
func (r *CalendarRepo) MessageForDay(ctx context.Context, day int) (model.Message, error) {
	if !model.ValidDay(day) {
		return model.Message{}, apperrors.NotFoundf("no such day: %d", day)
	}
	q := pgxutil.From(ctx, r.Pool)
	var m model.Message
	err := q.QueryRow(ctx, `SELECT day, body FROM messages WHERE day = $1`, day).Scan(&m.Day, &m.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Message{}, apperrors.NotFoundf("no message for day %d", day)
		}
		return model.Message{}, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// OpenDay marks a day opened for a user. Re-opening is a no-op.
func (r *CalendarRepo) OpenDay(ctx context.Context, userID string, day int) error {
	if !model.ValidDay(day) {
		return apperrors.NotFoundf("no such day: %d", day)
	}
	q := pgxutil.From(ctx, r.Pool)
	if _, err := q.Exec(ctx, `
		INSERT INTO opened_days (user_id, day, opened_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO NOTHING`,
		userID, day, r.timeProvider.Now().UTC(),
	); err != nil {
		return fmt.Errorf("open day: %w", err)
	}
	return nil
}

// OpenedDays lists the days a user has opened, ascending.
func (r *CalendarRepo) OpenedDays(ctx context.Context, userID string) ([]int, error) {
	q := pgxutil.From(ctx, r.Pool)
	rows, err := q.Query(ctx, `SELECT day FROM opened_days WHERE user_id = $1 ORDER BY day`, userID)
	if err != nil {
		return nil, fmt.Errorf("list opened days: %w", err)
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan opened day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opened days: %w", err)
	}
	return days, nil
}

// IsOpened reports whether the user has opened the day.
func (r *CalendarRepo) IsOpened(ctx context.Context, userID string, day int) (bool, error) {
	q := pgxutil.From(ctx, r.Pool)
	var opened bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM opened_days WHERE user_id = $1 AND day = $2)`,
		userID, day,
	).Scan(&opened)
	if err != nil {
		return false, fmt.Errorf("check opened day: %w", err)
	}
	return opened, nil
}
