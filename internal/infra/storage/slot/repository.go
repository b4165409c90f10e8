package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DetailingBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

const table = "slot_counters"

// Repository счетчики занятости слотов (PostgreSQL).
// Строка слота создается при первом резервировании.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Reserve атомарно занимает место в слоте, если booked_count < capacity.
// Возвращает новое значение счетчика или ErrSlotFull.
// Условный upsert блокирует строку слота, поэтому конкурентные вызовы
// не превысят capacity даже при READ COMMITTED.
func (r *Repository) Reserve(ctx context.Context, key domain.SlotKey, capacity int) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("slot_date", "slot_time", "booked_count").
		Values(key.Date, key.Time, 1).
		Suffix(
			"ON CONFLICT (slot_date, slot_time) DO UPDATE "+
				"SET booked_count = slot_counters.booked_count + 1, updated_at = NOW() "+
				"WHERE slot_counters.booked_count < ? RETURNING booked_count",
			capacity,
		).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Reserve - build upsert query: %v", ErrBuildQuery, err)
	}

	var booked int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&booked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSlotFull
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Reserve - execute upsert: %v", ErrExecQuery, err)
	}

	return booked, nil
}

// Release освобождает одно место в слоте
func (r *Repository) Release(ctx context.Context, key domain.SlotKey) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("booked_count", squirrel.Expr("booked_count - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"slot_date": key.Date, "slot_time": key.Time}).
		Where(squirrel.Gt{"booked_count": 0}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrCounterUnderflow
	}

	return nil
}

// GetBookedCounts возвращает занятость слотов на дату. Слоты без строки не попадают в map.
func (r *Repository) GetBookedCounts(ctx context.Context, date time.Time) (map[types.TimeString]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_time", "booked_count").
		From(table).
		Where(squirrel.Eq{"slot_date": domain.DateOnly(date)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedCounts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedCounts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[types.TimeString]int)
	for rows.Next() {
		var t types.TimeString
		var booked int
		if err := rows.Scan(&t, &booked); err != nil {
			return nil, fmt.Errorf("%w: GetBookedCounts - scan row: %v", ErrScanRow, err)
		}
		counts[t] = booked
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBookedCounts - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}
