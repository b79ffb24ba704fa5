package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(clock *fakeClock, isFailure func(error) bool) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Second,
		IsFailure:        isFailure,
		Now:              clock.now,
	})
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cb := newTestBreaker(&fakeClock{t: time.Unix(0, 0)}, nil)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBoom)
	}
	assert.Equal(t, CBClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(&fakeClock{t: time.Unix(0, 0)}, nil)

	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	_ = cb.Execute(succeed)
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock, nil)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}
	a := assert.New(t)
	a.Equal(CBOpen, cb.State())

	clock.advance(10 * time.Second)
	a.Equal(CBHalfOpen, cb.State())

	a.NoError(cb.Execute(succeed))
	a.Equal(CBHalfOpen, cb.State())
	a.NoError(cb.Execute(succeed))
	a.Equal(CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := newTestBreaker(clock, nil)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}
	clock.advance(11 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_IgnoredErrorsPassThrough(t *testing.T) {
	errClient := errors.New("404")
	cb := newTestBreaker(&fakeClock{t: time.Unix(0, 0)}, func(err error) bool { return !errors.Is(err, errClient) })

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errClient }), errClient)
	}

	assert.Equal(t, CBClosed, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(9).String())
}

func TestCircuitBreaker_ReportsTransitions(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var seen []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Second,
		Now:              clock.now,
		OnStateChange:    func(from, to CBState) { seen = append(seen, from.String()+">"+to.String()) },
	})

	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	counts := cb.Counts()
	assert.Equal(t, CBOpen, counts.State)
	assert.Equal(t, clock.t, counts.OpenedAt)

	clock.advance(time.Second)
	_ = cb.Execute(succeed)

	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, seen)
	assert.Equal(t, CBCounts{State: CBClosed, OpenedAt: time.Unix(0, 0)}, cb.Counts())
}
