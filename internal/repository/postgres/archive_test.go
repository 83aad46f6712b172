package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockArchive(t *testing.T) (*ArchiveRepository, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewArchiveRepository(NewDBWithConn(conn, "postgres")), mock
}

func TestArchiveSchedule(t *testing.T) {
	repo, mock := newMockArchive(t)

	s := domain.SavedSchedule{
		ID:           "sched-1",
		StartDate:    "2024-03-04",
		CreatedAt:    "2024-03-01T10:00:00Z",
		TotalBatches: 3,
		Data:         map[string][]int{"FG1": {1, 2, 0, 0, 0, 0, 0}},
		Targets:      map[string]int{"FG1": 3},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO schedule_archive`).
		WithArgs("sched-1", "2024-03-04", "2024-03-01T10:00:00Z", 3,
			[]byte(`{"FG1":[1,2,0,0,0,0,0]}`), []byte(`{"FG1":3}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ArchiveSchedule(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRequestOrder_RollsBackOnError(t *testing.T) {
	repo, mock := newMockArchive(t)

	o := domain.RequestOrder{
		ID:        "RO-123456",
		Date:      "2024-03-04",
		CreatedAt: "2024-03-04T09:30:00Z",
		Status:    domain.OrderDraft,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO request_order_archive`).
		WithArgs("RO-123456", "2024-03-04", "2024-03-04T09:30:00Z", nil, "Draft", []byte("null")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.ArchiveRequestOrder(context.Background(), o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RO-123456")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRMRequirement(t *testing.T) {
	repo, mock := newMockArchive(t)

	req := domain.SavedRMRequirement{
		ID:         "rm-1",
		StartDate:  "2024-03-04",
		CreatedAt:  "2024-03-04T09:30:00Z",
		GlobalData: map[string]float64{"RM1": 2.5},
		PerSkuData: map[string]map[string]float64{"FG1": {"RM1": 2.5}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rm_requirement_archive`).
		WithArgs("rm-1", "2024-03-04", "2024-03-04T09:30:00Z", []byte(`{"RM1":2.5}`), []byte(`{"FG1":{"RM1":2.5}}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ArchiveRMRequirement(context.Background(), req))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSchedules(t *testing.T) {
	repo, mock := newMockArchive(t)

	rows := sqlmock.NewRows([]string{"id", "start_date", "created_at", "total_batches", "data", "targets"}).
		AddRow("sched-1", "2024-03-04", "2024-03-01T10:00:00.000Z", 3, []byte(`{"FG1":[1,2,0,0,0,0,0]}`), []byte(`{"FG1":3}`))

	mock.ExpectQuery(`FROM schedule_archive WHERE start_date >= \$1 AND start_date <= \$2`).
		WithArgs("2024-03-01", "2024-03-31").
		WillReturnRows(rows)

	got, err := repo.ListSchedules(context.Background(), DateRange{Start: "2024-03-01", End: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{1, 2, 0, 0, 0, 0, 0}, got[0].Data["FG1"])
	assert.Equal(t, 3, got[0].Targets["FG1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOrdersByStatus(t *testing.T) {
	repo, mock := newMockArchive(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS total FROM request_order_archive GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "total"}).
			AddRow("Draft", 2).
			AddRow("Completed", 5))

	got, err := repo.CountOrdersByStatus(context.Background(), DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, got[domain.OrderDraft])
	assert.Equal(t, 5, got[domain.OrderCompleted])
}

func TestMigrate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	for range schema {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), NewDBWithConn(conn, "postgres")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildDateRangeClause(t *testing.T) {
	where, args := buildDateRangeClause(DateRange{End: "2024-03-31"}, "date", 3)
	assert.Equal(t, " WHERE date <= $3", where)
	assert.Equal(t, []interface{}{"2024-03-31"}, args)

	where, args = buildDateRangeClause(DateRange{}, "date", 1)
	assert.Empty(t, where)
	assert.Nil(t, args)
}
