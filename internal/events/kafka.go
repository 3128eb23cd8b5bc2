package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrderPlaced is emitted once an order has committed.
type OrderPlaced struct {
	OrderID      int64     `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID int64     `json:"restaurant_id"`
	TotalAmount  int64     `json:"total_amount"`
	ItemCount    int       `json:"item_count"`
	PlacedAt     time.Time `json:"placed_at"`
}

// OrderStatusChanged is emitted when a restaurant moves an order along.
type OrderStatusChanged struct {
	OrderID      int64     `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID int64     `json:"restaurant_id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	ChangedAt    time.Time `json:"changed_at"`
}

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events to one topic.
type KafkaPublisher struct {
	writer messageWriter
}

// ParseBrokers splits a comma-separated broker list.
func ParseBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, evt OrderPlaced) error {
	return p.publish(ctx, TypeOrderPlaced, evt.CustomerID, evt)
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error {
	return p.publish(ctx, TypeOrderStatusChanged, evt.CustomerID, evt)
}

// publish keys every event by customer so one customer's events stay ordered
// within a partition.
func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, evt any) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: "event", Value: []byte(eventType)}},
		Time:    time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops events. Used when no brokers are configured.
type Noop struct{}

func (Noop) OrderPlaced(context.Context, OrderPlaced) error               { return nil }
func (Noop) OrderStatusChanged(context.Context, OrderStatusChanged) error { return nil }
func (Noop) Close() error                                                 { return nil }
