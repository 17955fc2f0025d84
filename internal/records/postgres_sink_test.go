package records

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePTP(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO promises_to_pay").
		WithArgs(sqlmock.AnyArg(), "CUST001", 15000.0, "15-07-2025", "3-Month Installment", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewPostgresSink(db)
	id, err := sink.SavePTP(context.Background(), "CUST001", 15000, "15-07-2025", "3-Month Installment")
	require.NoError(t, err)
	assert.Regexp(t, `^PTP-[0-9A-F]{8}$`, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDispute(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO disputes").
		WithArgs(sqlmock.AnyArg(), "CUST002", "I never took this loan", "open", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewPostgresSink(db)
	id, err := sink.SaveDispute(context.Background(), "CUST002", "I never took this loan")
	require.NoError(t, err)
	assert.Regexp(t, `^DSP-[0-9A-F]{8}$`, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCallRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO call_records").
		WithArgs(sqlmock.AnyArg(), "CUST001", "ptp_recorded", "willing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewPostgresSink(db)
	err = sink.SaveCallRecord(context.Background(), CallRecord{
		CustomerID:    "CUST001",
		Outcome:       "ptp_recorded",
		PaymentStatus: "willing",
		Summary:       "Call completed.",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePTPFailureSurfaces(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO promises_to_pay").
		WillReturnError(context.DeadlineExceeded)

	sink := NewPostgresSink(db)
	_, err = sink.SavePTP(context.Background(), "CUST001", 1000, "01-01-2025", "Custom Payment Plan")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to insert ptp")
}
