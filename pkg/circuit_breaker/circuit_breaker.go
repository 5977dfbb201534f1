package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type Settings struct {
	// Window is the number of most recent calls the failure ratio is computed over.
	Window int
	// Cooldown is how long the breaker stays open before letting a probe through.
	Cooldown time.Duration
	// FailureRatio in (0, 1] opens the breaker once reached inside the window.
	FailureRatio float64
	// Probes is the number of consecutive successes in half-open needed to
	// close; no more than Probes trial calls are in flight while half-open.
	Probes int
}

type circuitBreaker struct {
	mu  sync.Mutex
	cfg Settings
	now func() time.Time

	state    State
	openedAt time.Time
	window   []bool
	pos      int
	probesOK int
	inFlight int
}

func New(cfg Settings) CircuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	return &circuitBreaker{
		cfg:    cfg,
		now:    time.Now,
		state:  Closed,
		window: make([]bool, cfg.Window),
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	probe, ok := cb.allow()
	if !ok {
		return ErrOpen
	}
	err := fn()
	cb.record(err != nil, probe)
	return err
}

// allow admits a call; probe reports that it was admitted as a half-open trial.
func (cb *circuitBreaker) allow() (probe, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case Closed:
		return false, true
	case Open:
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			return false, false
		}
		cb.state = HalfOpen
		cb.probesOK = 0
		cb.inFlight = 0
	}
	if cb.probesOK+cb.inFlight >= cb.cfg.Probes {
		return false, false
	}
	cb.inFlight++
	return true, true
}

func (cb *circuitBreaker) record(failed, probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe && cb.inFlight > 0 {
		cb.inFlight--
	}
	if cb.state == Open {
		return
	}
	cb.window[cb.pos] = failed
	cb.pos = (cb.pos + 1) % len(cb.window)

	if cb.state == HalfOpen {
		if !probe {
			return
		}
		if failed {
			cb.trip()
			return
		}
		cb.probesOK++
		if cb.probesOK >= cb.cfg.Probes {
			cb.reset()
		}
		return
	}

	fails := 0
	for _, f := range cb.window {
		if f {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.window)) >= cb.cfg.FailureRatio {
		cb.trip()
	}
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.probesOK = 0
	cb.inFlight = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.pos = 0
	cb.probesOK = 0
	cb.inFlight = 0
	cb.state = Closed
}
