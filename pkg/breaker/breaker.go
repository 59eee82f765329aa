package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/tair/smart-inventory/pkg/logger"
)

// ErrOpen is returned without calling through while the circuit is open
var ErrOpen = errors.New("circuit breaker is open")

// State represents the state of a circuit breaker
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Settings configures a Breaker
type Settings struct {
	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures int
	// OpenTimeout is how long the circuit stays open before a trial call
	OpenTimeout time.Duration
	// HalfOpenSuccesses closes a half-open circuit
	HalfOpenSuccesses int
	// IsFailure decides which errors count. Nil counts every error.
	IsFailure func(error) bool
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu              sync.Mutex
	state           State
	failures        int
	successes       int
	lastStateChange time.Time
	trialInFlight   bool
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if settings.HalfOpenSuccesses <= 0 {
		settings.HalfOpenSuccesses = 1
	}
	return &Breaker{
		name:            name,
		settings:        settings,
		now:             time.Now,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Call runs fn unless the circuit is open. While half-open only one trial
// call runs at a time; other callers get ErrOpen.
func (b *Breaker) Call(fn func() error) error {
	trial, ok := b.allow()
	if !ok {
		return ErrOpen
	}
	if trial {
		defer b.endTrial()
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && (b.settings.IsFailure == nil || b.settings.IsFailure(err)) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() (trial, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.lastStateChange) >= b.settings.OpenTimeout {
		b.setState(StateHalfOpen)
		logger.Logger.Info().Str("circuit", b.name).Msg("Circuit breaker transitioning to half-open")
	}

	switch b.state {
	case StateOpen:
		return false, false
	case StateHalfOpen:
		if b.trialInFlight {
			return false, false
		}
		b.trialInFlight = true
		return true, true
	}
	return false, true
}

func (b *Breaker) endTrial() {
	b.mu.Lock()
	b.trialInFlight = false
	b.mu.Unlock()
}

func (b *Breaker) onFailure() {
	b.failures++

	switch {
	case b.state == StateHalfOpen:
		b.setState(StateOpen)
		logger.Logger.Warn().Str("circuit", b.name).Msg("Circuit breaker reopened after half-open failure")
	case b.failures >= b.settings.MaxFailures:
		b.setState(StateOpen)
		logger.Logger.Error().
			Str("circuit", b.name).
			Int("failures", b.failures).
			Int("threshold", b.settings.MaxFailures).
			Msg("Circuit breaker opened")
	}
}

func (b *Breaker) onSuccess() {
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.settings.HalfOpenSuccesses {
			b.setState(StateClosed)
			logger.Logger.Info().Str("circuit", b.name).Msg("Circuit breaker closed after successful recovery")
		}
		return
	}
	b.failures = 0
}

// setState must be called with mu held
func (b *Breaker) setState(s State) {
	b.state = s
	b.failures = 0
	b.successes = 0
	b.lastStateChange = b.now()
}
