package autofilter

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autofilter/pkg/debounce"
)

// Option configures a Controller.
type Option func(*settings)

type settings struct {
	logger *log.Logger
	clock  debounce.Clock
	frames FrameScheduler
	ctx    context.Context
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used by both debouncers.
func WithClock(c debounce.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithFrames sets the frame scheduler.
func WithFrames(f FrameScheduler) Option {
	return func(s *settings) {
		if f != nil {
			s.frames = f
		}
	}
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

func newSettings(h Host, opts []Option) settings {
	s := settings{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		clock:  debounce.RealClock{},
		ctx:    context.Background(),
	}
	if fs, ok := h.(FrameScheduler); ok {
		s.frames = fs
	} else {
		s.frames = SyncFrames{}
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
