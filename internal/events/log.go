package events

import (
	"context"
	"log"
)

// LogPublisher is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e BookingEvent) error {
	log.Printf("[EVENT] type=%s booking_id=%d trip_id=%d seats=%d status=%s request_id=%s",
		e.Type, e.BookingID, e.TripID, e.Seats, e.Status, e.RequestID)
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory; handy in tests.
type Recorder struct {
	Events []BookingEvent
}

func (r *Recorder) Publish(_ context.Context, e BookingEvent) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }
