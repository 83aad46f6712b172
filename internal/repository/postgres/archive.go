package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

// ArchiveRepository mirrors saved schedules, requirements and request orders
// into Postgres JSONB tables.
type ArchiveRepository struct {
	db *DB
}

var _ repository.Archive = (*ArchiveRepository)(nil)

func NewArchiveRepository(db *DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

func (r *ArchiveRepository) ArchiveSchedule(ctx context.Context, s domain.SavedSchedule) error {
	data, targets, err := marshalPair(s.Data, s.Targets)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO schedule_archive (id, start_date, created_at, total_batches, data, targets)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			total_batches = EXCLUDED.total_batches,
			data = EXCLUDED.data,
			targets = EXCLUDED.targets,
			archived_at = NOW()`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, s.ID, s.StartDate, s.CreatedAt, s.TotalBatches, data, targets); err != nil {
			return fmt.Errorf("failed to archive schedule %s: %w", s.ID, err)
		}
		return nil
	})
}

func (r *ArchiveRepository) ArchiveRMRequirement(ctx context.Context, req domain.SavedRMRequirement) error {
	global, perSku, err := marshalPair(req.GlobalData, req.PerSkuData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rm_requirement_archive (id, start_date, created_at, global_data, per_sku_data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			global_data = EXCLUDED.global_data,
			per_sku_data = EXCLUDED.per_sku_data,
			archived_at = NOW()`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, req.ID, req.StartDate, req.CreatedAt, global, perSku); err != nil {
			return fmt.Errorf("failed to archive requirement %s: %w", req.ID, err)
		}
		return nil
	})
}

func (r *ArchiveRepository) ArchiveRequestOrder(ctx context.Context, o domain.RequestOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	var deadline interface{}
	if o.Deadline != "" {
		deadline = o.Deadline
	}

	query := `
		INSERT INTO request_order_archive (id, date, created_at, deadline, status, items)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			deadline = EXCLUDED.deadline,
			status = EXCLUDED.status,
			items = EXCLUDED.items,
			archived_at = NOW()`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, o.ID, o.Date, o.CreatedAt, deadline, string(o.Status), items); err != nil {
			return fmt.Errorf("failed to archive request order %s: %w", o.ID, err)
		}
		return nil
	})
}

type scheduleRow struct {
	ID           string `db:"id"`
	StartDate    string `db:"start_date"`
	CreatedAt    string `db:"created_at"`
	TotalBatches int    `db:"total_batches"`
	Data         []byte `db:"data"`
	Targets      []byte `db:"targets"`
}

// ListSchedules returns archived schedules whose start date falls in r,
// newest first.
func (r *ArchiveRepository) ListSchedules(ctx context.Context, dr DateRange) ([]domain.SavedSchedule, error) {
	where, args := buildDateRangeClause(dr, "start_date", 1)
	query := `
		SELECT id, to_char(start_date, 'YYYY-MM-DD') AS start_date,
			to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.MS"Z"') AS created_at,
			total_batches, data, targets
		FROM schedule_archive` + where + `
		ORDER BY start_date DESC, created_at DESC`

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list archived schedules: %w", err)
	}

	out := make([]domain.SavedSchedule, 0, len(rows))
	for _, row := range rows {
		s := domain.SavedSchedule{
			ID:           row.ID,
			StartDate:    row.StartDate,
			CreatedAt:    row.CreatedAt,
			TotalBatches: row.TotalBatches,
		}
		if err := json.Unmarshal(row.Data, &s.Data); err != nil {
			return nil, fmt.Errorf("failed to decode schedule %s: %w", row.ID, err)
		}
		if err := json.Unmarshal(row.Targets, &s.Targets); err != nil {
			return nil, fmt.Errorf("failed to decode targets of %s: %w", row.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CountOrdersByStatus groups archived request orders dated in r by status.
func (r *ArchiveRepository) CountOrdersByStatus(ctx context.Context, dr DateRange) (map[domain.OrderStatus]int, error) {
	where, args := buildDateRangeClause(dr, "date", 1)
	query := `SELECT status, COUNT(*) AS total FROM request_order_archive` + where + ` GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Total  int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count archived orders: %w", err)
	}

	counts := make(map[domain.OrderStatus]int, len(rows))
	for _, row := range rows {
		counts[domain.OrderStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func marshalPair(a, b interface{}) ([]byte, []byte, error) {
	first, err := json.Marshal(a)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode archive payload: %w", err)
	}
	second, err := json.Marshal(b)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode archive payload: %w", err)
	}
	return first, second, nil
}
