package events

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestParseBrokers(t *testing.T) {
	got := ParseBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if ParseBrokers("") != nil {
		t.Error("empty input should give no brokers")
	}
}

func TestKafkaPublisher_OrderPlaced(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}

	evt := OrderPlaced{OrderID: 9, CustomerID: "cust-1", RestaurantID: 7, TotalAmount: 8000, ItemCount: 2}
	if err := p.OrderPlaced(context.Background(), evt); err != nil {
		t.Fatal(err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "cust-1" {
		t.Errorf("expected customer key, got %q", w.msgs[0].Key)
	}
	var decoded OrderPlaced
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil || decoded.TotalAmount != 8000 {
		t.Errorf("unexpected payload %s: %v", w.msgs[0].Value, err)
	}
}

func TestKafkaPublisher_EventTypeHeader(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	ctx := context.Background()

	_ = p.OrderPlaced(ctx, OrderPlaced{OrderID: 1, CustomerID: "c"})
	_ = p.OrderStatusChanged(ctx, OrderStatusChanged{OrderID: 1, CustomerID: "c", From: "Pending", To: "Preparing"})

	if len(w.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.msgs))
	}
	for i, want := range []string{TypeOrderPlaced, TypeOrderStatusChanged} {
		h := w.msgs[i].Headers
		if len(h) != 1 || h[0].Key != "event" || string(h[0].Value) != want {
			t.Errorf("message %d: headers %v, want event=%s", i, h, want)
		}
	}
}
