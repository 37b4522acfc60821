package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/service"
)

func newReservationService(t *testing.T) (*service.ReservationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewReservationService(
		db,
		repository.NewScheduleRepo(db),
		repository.NewSeatHoldRepo(db),
		repository.NewBookingRepo(db),
		15*time.Minute,
	)
	return svc, mock
}

func inventoryRows(id string, available, capacity int, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "available_seats", "total_capacity", "status"}).
		AddRow(id, available, capacity, status)
}

func holdRows(id, scheduleID string, quantity int, status string, releasedAt interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "schedule_id", "quantity", "status", "held_at", "expires_at", "released_at"}).
		AddRow(id, scheduleID, quantity, status, now.Add(-20*time.Minute), now.Add(-5*time.Minute), releasedAt)
}

func expectHoldAdmission(mock sqlmock.Sqlmock, scheduleID string, available, capacity, quantity int) {
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs(scheduleID).
		WillReturnRows(inventoryRows(scheduleID, available, capacity, "scheduled"))
	mock.ExpectExec("INSERT INTO seat_holds").
		WithArgs(sqlmock.AnyArg(), scheduleID, quantity, "held", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules SET available_seats").
		WithArgs(-quantity, scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestCreateBooking_OneWay(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	expectHoldAdmission(mock, "sched-out", 40, 100, 3)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	before := time.Now().UTC()
	res, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-out",
		Quantity:           3,
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.BookingID)
	assert.NotEmpty(t, res.OutboundHoldID)
	assert.Nil(t, res.ReturnHoldID)
	// The deadline is TTL from admission, give or take test runtime.
	assert.WithinDuration(t, before.Add(15*time.Minute), res.ExpiresAt, 5*time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_RoundTrip(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	expectHoldAdmission(mock, "sched-out", 10, 100, 2)
	expectHoldAdmission(mock, "sched-ret", 5, 80, 2)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ret := "sched-ret"
	res, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-out",
		ReturnScheduleID:   &ret,
		Quantity:           2,
	})

	require.NoError(t, err)
	require.NotNil(t, res.ReturnHoldID)
	assert.NotEqual(t, res.OutboundHoldID, *res.ReturnHoldID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_InsufficientSeats(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs("sched-out").
		WillReturnRows(inventoryRows("sched-out", 2, 100, "scheduled"))
	mock.ExpectRollback()

	res, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-out",
		Quantity:           5,
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, repository.ErrInsufficientSeats)

	var ise *repository.InsufficientSeatsError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "sched-out", ise.ScheduleID)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 5, ise.Requested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_ReturnLegFailureRollsBackOutbound(t *testing.T) {
	svc, mock := newReservationService(t)

	// The outbound leg is admitted, then the return leg finds no seats.
	// The rollback must erase the outbound hold and its decrement.
	mock.ExpectBegin()
	expectHoldAdmission(mock, "sched-out", 10, 100, 2)
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs("sched-ret").
		WillReturnRows(inventoryRows("sched-ret", 0, 80, "scheduled"))
	mock.ExpectRollback()

	ret := "sched-ret"
	res, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-out",
		ReturnScheduleID:   &ret,
		Quantity:           2,
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, repository.ErrInsufficientSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_ScheduleNotBookable(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs("sched-out").
		WillReturnRows(inventoryRows("sched-out", 50, 100, "departed"))
	mock.ExpectRollback()

	res, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-out",
		Quantity:           1,
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, repository.ErrScheduleNotBookable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_ScheduleMissing(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs("no-such-schedule").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	res, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "no-such-schedule",
		Quantity:           1,
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryLifecycle_AdmitDenyRelease(t *testing.T) {
	// One schedule with capacity 100: a 60-seat hold brings the counter
	// to 40, a 50-seat request is then denied reporting exactly 40, and
	// releasing the first hold returns all 60 seats.
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs("sched-1").
		WillReturnRows(inventoryRows("sched-1", 100, 100, "scheduled"))
	mock.ExpectExec("INSERT INTO seat_holds").
		WithArgs(sqlmock.AnyArg(), "sched-1", 60, "held", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules SET available_seats").
		WithArgs(-60, "sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	first, err := svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-1",
		Quantity:           60,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, available_seats, total_capacity, status").
		WithArgs("sched-1").
		WillReturnRows(inventoryRows("sched-1", 40, 100, "scheduled"))
	mock.ExpectRollback()

	_, err = svc.CreateBooking(context.Background(), service.BookingRequest{
		OutboundScheduleID: "sched-1",
		Quantity:           50,
	})
	var ise *repository.InsufficientSeatsError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 40, ise.Available)
	assert.Equal(t, 50, ise.Requested)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds SET status").
		WithArgs("expired", sqlmock.AnyArg(), first.OutboundHoldID, "held").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, schedule_id, quantity, status").
		WithArgs(first.OutboundHoldID).
		WillReturnRows(holdRows(first.OutboundHoldID, "sched-1", 60, "expired", time.Now().UTC()))
	mock.ExpectExec("UPDATE schedules SET available_seats").
		WithArgs(60, "sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, err := svc.ReleaseHold(context.Background(), first.OutboundHoldID)
	require.NoError(t, err)
	assert.True(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseHold_RestoresSeats(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds SET status").
		WithArgs("expired", sqlmock.AnyArg(), "hold-1", "held").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, schedule_id, quantity, status").
		WithArgs("hold-1").
		WillReturnRows(holdRows("hold-1", "sched-1", 4, "expired", time.Now().UTC()))
	mock.ExpectExec("UPDATE schedules SET available_seats").
		WithArgs(4, "sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, err := svc.ReleaseHold(context.Background(), "hold-1")

	require.NoError(t, err)
	assert.True(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseHold_AlreadyReleased(t *testing.T) {
	svc, mock := newReservationService(t)

	// The conditional update affects no rows because the hold already
	// left the held state; no seat counter is touched.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds SET status").
		WithArgs("expired", sqlmock.AnyArg(), "hold-1", "held").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, schedule_id, quantity, status").
		WithArgs("hold-1").
		WillReturnRows(holdRows("hold-1", "sched-1", 4, "confirmed", nil))
	mock.ExpectRollback()

	released, err := svc.ReleaseHold(context.Background(), "hold-1")

	require.NoError(t, err)
	assert.False(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseHold_Missing(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds SET status").
		WithArgs("expired", sqlmock.AnyArg(), "no-such-hold", "held").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, schedule_id, quantity, status").
		WithArgs("no-such-hold").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	released, err := svc.ReleaseHold(context.Background(), "no-such-hold")

	assert.False(t, released)
	assert.ErrorIs(t, err, repository.ErrHoldNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseExpiredHold_RestoresSeats(t *testing.T) {
	svc, mock := newReservationService(t)

	// The reaper path adds the deadline predicate to the conditional
	// update so a live hold can never be swept early.
	mock.ExpectBegin()
	mock.ExpectExec("AND expires_at <").
		WithArgs("expired", sqlmock.AnyArg(), "hold-1", "held", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, schedule_id, quantity, status").
		WithArgs("hold-1").
		WillReturnRows(holdRows("hold-1", "sched-1", 2, "expired", time.Now().UTC()))
	mock.ExpectExec("UPDATE schedules SET available_seats").
		WithArgs(2, "sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, seats, err := svc.ReleaseExpiredHold(context.Background(), "hold-1")

	require.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, 2, seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseExpiredHold_DeadlineNotPassed(t *testing.T) {
	svc, mock := newReservationService(t)

	mock.ExpectBegin()
	mock.ExpectExec("AND expires_at <").
		WithArgs("expired", sqlmock.AnyArg(), "hold-1", "held", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, schedule_id, quantity, status").
		WithArgs("hold-1").
		WillReturnRows(holdRows("hold-1", "sched-1", 2, "held", nil))
	mock.ExpectRollback()

	released, seats, err := svc.ReleaseExpiredHold(context.Background(), "hold-1")

	require.NoError(t, err)
	assert.False(t, released)
	assert.Zero(t, seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
