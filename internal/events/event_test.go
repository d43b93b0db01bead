package events

import (
	"context"
	"encoding/json"
	"testing"

	"busgo/internal/domain/models"

	"github.com/shopspring/decimal"
)

func TestNewBookingEvent(t *testing.T) {
	uid := int64(3)
	from, to := "Colombo", "Kegalle"
	b := models.Booking{
		ID: 11, TripID: 7, UserID: &uid, Seats: 2, Status: models.BookingConfirmed,
		BoardingStop: &from, AlightingStop: &to,
		TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("900")),
	}
	e := NewBookingEvent(BookingCreated, b, "req-1")
	if e.BookingID != 11 || e.TripID != 7 || e.RequestID != "req-1" || e.OccurredAt.IsZero() {
		t.Fatalf("unexpected event %+v", e)
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["type"] != "booking.created" || got["boardingStop"] != "Colombo" || got["totalPrice"] != "900" {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestRecorderAndLogPublisher(t *testing.T) {
	e := NewBookingEvent(BookingCancelled, models.Booking{ID: 1, TripID: 2}, "")
	var pubs = []Publisher{LogPublisher{}, &Recorder{}}
	for _, p := range pubs {
		if err := p.Publish(context.Background(), e); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if err := p.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if rec := pubs[1].(*Recorder); len(rec.Events) != 1 || rec.Events[0].Type != BookingCancelled {
		t.Fatalf("recorder got %+v", rec.Events)
	}
}

func TestKafkaPublisherTopic(t *testing.T) {
	p := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "booking-events"})
	defer p.Close()
	if p.Topic() != "booking-events" {
		t.Fatalf("topic = %q", p.Topic())
	}
}
