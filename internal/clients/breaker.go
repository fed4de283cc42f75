package clients

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/sirupsen/logrus"
)

// BreakerState represents the current state of the circuit breaker
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// ErrBreakerOpen is returned without contacting the backend while the circuit is open
var ErrBreakerOpen = apperrors.New(apperrors.CodeUpstreamUnavailable, "Backend temporarily unavailable, please try again shortly")

// Breaker guards backend calls. Only upstream faults (transport errors,
// timeouts, 5xx) count as failures; a 4xx is the backend answering normally.
type Breaker struct {
	logger            *logrus.Logger
	state             BreakerState
	failureCount      int
	successCount      int
	lastFailureTime   time.Time
	mu                sync.Mutex
	maxFailures       int
	resetTimeout      time.Duration
	halfOpenSuccesses int
	now               func() time.Time
}

// NewBreaker creates a breaker that opens after maxFailures consecutive faults
func NewBreaker(maxFailures int, resetTimeout time.Duration, logger *logrus.Logger) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &Breaker{
		logger:            logger,
		state:             StateClosed,
		maxFailures:       maxFailures,
		resetTimeout:      resetTimeout,
		halfOpenSuccesses: 2,
		now:               time.Now,
	}
}

// Execute runs fn unless the circuit is open
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !b.allow() {
		return ErrBreakerOpen
	}

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && isUpstreamFault(err) {
		b.onFailure(err)
		return err
	}
	b.onSuccess()
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return true
	}
	if b.now().Sub(b.lastFailureTime) > b.resetTimeout {
		b.state = StateHalfOpen
		b.successCount = 0
		b.logger.Info("Circuit breaker: OPEN → HALF_OPEN (probing backend)")
		return true
	}
	return false
}

func (b *Breaker) onFailure(err error) {
	b.failureCount++
	b.lastFailureTime = b.now()

	switch b.state {
	case StateClosed:
		if b.failureCount >= b.maxFailures {
			b.state = StateOpen
			b.logger.WithFields(logrus.Fields{
				"failure_count": b.failureCount,
				"error":         err.Error(),
			}).Error("Circuit breaker: CLOSED → OPEN (backend unhealthy)")
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.failureCount = 0
		b.logger.WithError(err).Error("Circuit breaker: HALF_OPEN → OPEN (backend still unhealthy)")
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.halfOpenSuccesses {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
			b.logger.Info("Circuit breaker: HALF_OPEN → CLOSED (backend recovered)")
		}
	}
}

// State returns the current circuit breaker state
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns current circuit breaker statistics
func (b *Breaker) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"state":         b.state.String(),
		"failure_count": b.failureCount,
		"max_failures":  b.maxFailures,
		"last_failure":  b.lastFailureTime,
		"reset_timeout": b.resetTimeout.String(),
	}
}

func isUpstreamFault(err error) bool {
	return apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable) ||
		apperrors.HasCode(err, apperrors.CodeUpstreamTimeout)
}
