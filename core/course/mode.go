package course

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/coursepath/core"
)

const DefaultProbeTimeout = 3 * time.Second

// ModeSelector decides whether the data layer talks to the remote gateway (ModeLive)
// or to the mock catalog (ModeDemo).
//
// The mode is determined by the first probe and only changes through RetryProbe.
type ModeSelector struct {
	prober  Prober
	live    Backend
	demo    Backend
	timeout time.Duration
	logger  core.Logger

	probeMu  sync.Mutex // serializes probes
	mutex    sync.RWMutex
	mode     Mode
	onChange []func(from, to Mode)
}

var _ BackendSelector = (*ModeSelector)(nil)

// NewModeSelector returns an unprobed ModeSelector. When prober or live is nil the gateway
// is considered unreachable.
func NewModeSelector(prober Prober, live, demo Backend, timeout time.Duration, logger core.Logger) *ModeSelector {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &ModeSelector{
		prober:  prober,
		live:    live,
		demo:    demo,
		timeout: timeout,
		logger:  logger,
	}
}

// OnChange registers fn to be called after every mode transition.
func (s *ModeSelector) OnChange(fn func(from, to Mode)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *ModeSelector) Mode() Mode {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.mode
}

// Probe determines the mode on first call; later calls return the mode already determined.
func (s *ModeSelector) Probe(ctx context.Context) Mode {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	if mode := s.Mode(); mode != ModeUnprobed {
		return mode
	}
	return s.setMode(s.probe(ctx))
}

// RetryProbe re-runs the probe on explicit user request and adopts its result.
func (s *ModeSelector) RetryProbe(ctx context.Context) Mode {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	mode := s.setMode(s.probe(ctx))
	if mode == ModeLive {
		s.logger.Info("connected to the course gateway")
	}
	return mode
}

// Backend returns the Backend for the current mode, probing first if needed.
func (s *ModeSelector) Backend(ctx context.Context) Backend {
	mode := s.Mode()
	if mode == ModeUnprobed {
		mode = s.Probe(ctx)
	}
	if mode == ModeLive {
		return s.live
	}
	return s.demo
}

func (s *ModeSelector) probe(ctx context.Context) Mode {
	if s.prober == nil || s.live == nil {
		s.logger.Warn("Using demo data - no course gateway configured")
		return ModeDemo
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.prober.Ping(ctx); err != nil {
		s.logger.Warn("Using demo data - course gateway is not available", err)
		return ModeDemo
	}
	return ModeLive
}

func (s *ModeSelector) setMode(mode Mode) Mode {
	s.mutex.Lock()
	from := s.mode
	s.mode = mode
	observers := append([]func(from, to Mode){}, s.onChange...)
	s.mutex.Unlock()

	if from != mode {
		s.logger.Debug(fmt.Sprintf("data mode: %s -> %s", from, mode))
		for _, fn := range observers {
			fn(from, mode)
		}
	}
	return mode
}
