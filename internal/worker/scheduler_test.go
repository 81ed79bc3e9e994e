package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type cycleMock struct {
	mock.Mock
}

func (m *cycleMock) RunAll(ctx context.Context, now time.Time) usecase.Report {
	return m.Called(ctx, now).Get(0).(usecase.Report)
}

func (m *cycleMock) AnnualBackup(ctx context.Context, now time.Time) (bool, error) {
	args := m.Called(ctx, now)
	return args.Bool(0), args.Error(1)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestTickRunsDailyOncePerDay(t *testing.T) {
	cycle := &cycleMock{}
	cycle.On("RunAll", mock.Anything, mock.Anything).Return(usecase.Report{}).Once()
	cycle.On("AnnualBackup", mock.Anything, mock.Anything).Return(false, nil)

	s := NewScheduler(cycle, time.Hour, 2, quietLogger())
	clock := time.Date(2026, 3, 10, 2, 5, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Tick(context.Background())
	clock = clock.Add(20 * time.Minute)
	s.Tick(context.Background())

	cycle.AssertNumberOfCalls(t, "RunAll", 1)
	cycle.AssertNumberOfCalls(t, "AnnualBackup", 2)
}

func TestTickSkipsOtherHours(t *testing.T) {
	cycle := &cycleMock{}
	cycle.On("AnnualBackup", mock.Anything, mock.Anything).Return(false, nil)

	s := NewScheduler(cycle, time.Hour, 2, quietLogger())
	s.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	s.Tick(context.Background())

	cycle.AssertNotCalled(t, "RunAll", mock.Anything, mock.Anything)
}

func TestTickSurvivesFailures(t *testing.T) {
	cycle := &cycleMock{}
	cycle.On("RunAll", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(usecase.Report{})
	cycle.On("AnnualBackup", mock.Anything, mock.Anything).Return(false, errors.New("disk full"))

	s := NewScheduler(cycle, time.Hour, 2, quietLogger())
	s.now = func() time.Time { return time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC) }

	assert.NotPanics(t, func() { s.Tick(context.Background()) })
	cycle.AssertNumberOfCalls(t, "AnnualBackup", 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	cycle := &cycleMock{}
	cycle.On("AnnualBackup", mock.Anything, mock.Anything).Return(false, nil)

	s := NewScheduler(cycle, time.Millisecond, 99, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
