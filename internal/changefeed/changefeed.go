package changefeed

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/pkg/broker"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

const (
	TableCategories    = "categories"
	TableProducts      = "products"
	TableProductImages = "product_images"
	TableOrders        = "orders"
	TableProfiles      = "profiles"
)

// ChangeEvent is a row-level change notification.
type ChangeEvent struct {
	Table     string    `json:"table"`
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

type KafkaPublisher struct {
	producer *broker.KafkaProducer
}

func NewKafkaPublisher(producer *broker.KafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// keyed by table so every change to one table stays in order
	return p.producer.Publish(ctx, []byte(event.Table), payload)
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ChangeEvent) error { return nil }

// Notify publishes in the background. Failures are logged, never returned:
// the mutation that triggered the event has already succeeded.
func Notify(pub Publisher, log logger.ZapLogger, table string, typ EventType, id string) {
	if pub == nil {
		return
	}
	event := ChangeEvent{Table: table, Type: typ, ID: id, Timestamp: time.Now().UTC()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.Publish(ctx, event); err != nil {
			log.Warn("failed to publish change event",
				zap.String("table", event.Table),
				zap.String("type", string(event.Type)),
				zap.String("id", event.ID),
				zap.Error(err),
			)
		}
	}()
}
