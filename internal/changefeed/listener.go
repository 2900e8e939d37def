package changefeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

// AllTables subscribes a handler to every table.
const AllTables = "*"

type Handler func(ctx context.Context, event ChangeEvent) error

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Listener consumes change events and fans them out to per-table handlers.
// Handlers run in the listener goroutine; a failing handler is logged and
// does not stop the others. Missed events are not replayed.
type Listener struct {
	consumer MessageReader
	logger   logger.ZapLogger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewListener(consumer MessageReader, logger logger.ZapLogger) *Listener {
	return &Listener{
		consumer: consumer,
		logger:   logger,
		handlers: map[string][]Handler{},
	}
}

func (l *Listener) Subscribe(table string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[table] = append(l.handlers[table], h)
}

func (l *Listener) Start(ctx context.Context) {
	l.logger.Info("Starting change feed listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping change feed listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read change event", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.Dispatch(ctx, msg.Value)
		}
	}
}

func (l *Listener) Dispatch(ctx context.Context, value []byte) {
	var event ChangeEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal change event", zap.Error(err))
		return
	}

	l.mu.RLock()
	handlers := append(append([]Handler(nil), l.handlers[event.Table]...), l.handlers[AllTables]...)
	l.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			l.logger.Error("Change handler failed",
				zap.String("table", event.Table),
				zap.String("id", event.ID),
				zap.Error(err),
			)
		}
	}
}
