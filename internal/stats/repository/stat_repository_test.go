package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	statsdomain "github.com/ladoyle/simple-mail-bot/internal/stats/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepo(t *testing.T) (StatRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return NewStatRepository(gdb), mock
}

func TestRecordRun_CommitsRowsAndCursorTogether(t *testing.T) {
	repo, mock := newMockRepo(t)
	runAt := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "statistics"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordRun("a@example.com", runAt, []statsdomain.RuleCount{
		{RuleID: "r1", RuleName: "newsletters", Processed: 3},
		{RuleID: "r2", RuleName: "invoices", Processed: 1},
	}, "2000")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_EmptyCountsStillAdvancesCursor(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Baseline runs produce no rows but must still commit the cursor.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordRun("a@example.com", time.Now().UTC(), nil, "1000")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_InsertFailureRollsBackCursor(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "statistics"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.RecordRun("a@example.com", time.Now().UTC(), []statsdomain.RuleCount{
		{RuleID: "r1", RuleName: "r1", Processed: 1},
	}, "2000")

	require.Error(t, err)
	require.ErrorContains(t, err, "insert statistics")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_MissingAccountRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RecordRun("gone@example.com", time.Now().UTC(), nil, "1000")

	require.Error(t, err)
	require.ErrorContains(t, err, "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumProcessed(t *testing.T) {
	since := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ruleID string
		since  *time.Time
		until  *time.Time
	}{
		{name: "all rules, all time", ruleID: ""},
		{name: "single rule", ruleID: "r1"},
		{name: "bounded window", ruleID: "r1", since: &since},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(processed), 0) FROM "statistics"`)).
				WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(7)))

			total, err := repo.SumProcessed("a@example.com", tc.ruleID, tc.since, tc.until)

			require.NoError(t, err)
			require.Equal(t, int64(7), total)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
