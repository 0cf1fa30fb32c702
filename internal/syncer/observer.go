package syncer

import (
	"time"

	"go.uber.org/zap"

	"github.com/five82/roster/internal/roster"
)

// Observer is notified about every remote operation the Syncer issues.
// Implementations must be safe for concurrent use.
type Observer interface {
	Started(op Op)
	Succeeded(op Op, elapsed time.Duration)
	Failed(op Op, elapsed time.Duration, err error)
	// Superseded reports a completion that was discarded because a newer
	// request for the same slot had been issued.
	Superseded(op Op)
}

// Observers fans notifications out to several observers.
type Observers []Observer

func (o Observers) Started(op Op) {
	for _, obs := range o {
		obs.Started(op)
	}
}

func (o Observers) Succeeded(op Op, elapsed time.Duration) {
	for _, obs := range o {
		obs.Succeeded(op, elapsed)
	}
}

func (o Observers) Failed(op Op, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.Failed(op, elapsed, err)
	}
}

func (o Observers) Superseded(op Op) {
	for _, obs := range o {
		obs.Superseded(op)
	}
}

type nopObserver struct{}

func (nopObserver) Started(Op)                      {}
func (nopObserver) Succeeded(Op, time.Duration)     {}
func (nopObserver) Failed(Op, time.Duration, error) {}
func (nopObserver) Superseded(Op)                   {}

// LogObserver writes failures at error level and everything else at debug.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver wraps logger; a nil logger discards everything.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger.Named("sync")}
}

func (l *LogObserver) Started(op Op) {
	l.logger.Debug("request started", zap.String("op", string(op)))
}

func (l *LogObserver) Succeeded(op Op, elapsed time.Duration) {
	l.logger.Debug("request succeeded",
		zap.String("op", string(op)),
		zap.Duration("elapsed", elapsed),
	)
}

func (l *LogObserver) Failed(op Op, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	}
	if kind := roster.KindOf(err); kind != 0 {
		fields = append(fields, zap.String("kind", kind.String()))
	}
	if id := roster.RequestIDOf(err); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	l.logger.Error(op.failureMessage(), fields...)
}

func (l *LogObserver) Superseded(op Op) {
	l.logger.Debug("stale completion discarded", zap.String("op", string(op)))
}
