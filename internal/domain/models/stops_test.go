package models

import (
	"reflect"
	"testing"
)

func TestStopsValueScan(t *testing.T) {
	in := Stops{"Colombo", "Kegalle", "Kandy"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != `["Colombo","Kegalle","Kandy"]` {
		t.Fatalf("Value = %v", v)
	}

	var out Stops
	if err := out.Scan([]byte(`["Colombo","Kegalle","Kandy"]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("Scan = %#v", out)
	}
}

func TestStopsNull(t *testing.T) {
	var s Stops
	if v, err := s.Value(); err != nil || v != nil {
		t.Fatalf("nil stops should store NULL, got %v %v", v, err)
	}
	s = Stops{"x"}
	if err := s.Scan(nil); err != nil || s != nil {
		t.Fatalf("Scan(nil) = %#v %v", s, err)
	}
	if err := s.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestFareStopsFallback(t *testing.T) {
	r := Route{Origin: "Colombo", Destination: "Kandy"}
	if got := r.FareStops(); !reflect.DeepEqual(got, []string{"Colombo", "Kandy"}) {
		t.Fatalf("FareStops = %v", got)
	}
	tr := Trip{Origin: "A", Destination: "B", Stops: Stops{"A", "M", "B"}}
	if got := tr.FareStops(); len(got) != 3 {
		t.Fatalf("FareStops = %v", got)
	}
}
