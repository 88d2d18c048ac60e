// Package cleanup периодически удаляет из реестра отозванные токены,
// срок действия которых уже истек.
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval пауза между проходами по умолчанию
const DefaultInterval = time.Hour

// State состояние цикла очистки
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Purger удаляет истекшие записи реестра отозванных токенов
type Purger interface {
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

// Loop фоновый цикл очистки: проход, затем ожидание интервала
type Loop struct {
	logger   *slog.Logger
	purger   Purger
	now      func() time.Time
	stopC    chan struct{}
	done     chan struct{}
	interval time.Duration
	stopOnce sync.Once
	state    atomic.Int32
	started  atomic.Bool
}

// New создает цикл очистки. interval <= 0 заменяется на DefaultInterval.
func New(logger *slog.Logger, purger Purger, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Loop{
		logger:   logger,
		purger:   purger,
		interval: interval,
		now:      time.Now,
		stopC:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run выполняет проходы до отмены ctx или вызова Stop. Блокирует вызывающего.
// Отмена во время ожидания завершает цикл без нового прохода.
// Цикл запускается один раз; повторный Run сразу возвращается.
func (l *Loop) Run(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		l.logger.WarnContext(ctx, "revoked token cleanup already started")
		return
	}

	l.state.Store(int32(StateRunning))
	defer close(l.done)
	defer l.state.Store(int32(StateStopped))

	l.logger.InfoContext(ctx, "revoked token cleanup started", slog.Duration("interval", l.interval))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.state.Store(int32(StateStopping))
			l.logger.InfoContext(ctx, "revoked token cleanup stopped", slog.String("reason", "context done"))
			return
		case <-l.stopC:
			l.state.Store(int32(StateStopping))
			l.logger.InfoContext(ctx, "revoked token cleanup stopped", slog.String("reason", "stop requested"))
			return
		case <-timer.C:
			if ctx.Err() != nil || l.stopRequested() {
				continue
			}
			l.pass(ctx)
			timer.Reset(l.interval)
		}
	}
}

// pass удаляет истекшие токены одним запросом; ошибка не прерывает цикл
func (l *Loop) pass(ctx context.Context) {
	deleted, err := l.purger.DeleteExpiredRevokedTokens(ctx, l.now().UTC())
	if err != nil {
		l.logger.ErrorContext(ctx, "revoked token cleanup failed", slog.Any("error", err))
		return
	}

	l.logger.InfoContext(ctx, "expired revoked tokens deleted", slog.Int64("count", deleted))
}

func (l *Loop) stopRequested() bool {
	select {
	case <-l.stopC:
		return true
	default:
		return false
	}
}

// Stop просит цикл завершиться. Повторные вызовы безопасны.
func (l *Loop) Stop() {
	l.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	l.stopOnce.Do(func() {
		close(l.stopC)
	})
}

// Done закрывается после выхода из Run
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// State текущее состояние цикла
func (l *Loop) State() State {
	return State(l.state.Load())
}
