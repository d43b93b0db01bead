package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeStops(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  []string
	}{
		{"comma string", "Colombo, Kandy ,  , Galle", []string{"Colombo", "Kandy", "Galle"}},
		{"string list", []string{" Colombo", "", "Kandy "}, []string{"Colombo", "Kandy"}},
		{"json list", []any{"Colombo", nil, " Galle "}, []string{"Colombo", "Galle"}},
		{"nil", nil, nil},
		{"blank", " , ,", nil},
		{"empty list", []string{}, nil},
		{"other shape", 42, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeStops(c.input); !reflect.DeepEqual(got, c.want) {
				t.Fatalf("NormalizeStops(%v) = %#v, want %#v", c.input, got, c.want)
			}
		})
	}
}

func TestStopIndex(t *testing.T) {
	stops := []string{"Colombo", "Kegalle", "Kandy"}
	if i := StopIndex(stops, " kegalle "); i != 1 {
		t.Fatalf("StopIndex = %d, want 1", i)
	}
	if i := StopIndex(stops, "Galle"); i != -1 {
		t.Fatalf("StopIndex = %d, want -1", i)
	}
	if i := StopIndex(stops, ""); i != -1 {
		t.Fatalf("empty name matched index %d", i)
	}
}

func TestAnchorStops(t *testing.T) {
	cases := []struct {
		name  string
		stops []string
		want  []string
	}{
		{"already anchored", []string{"colombo", "Kegalle", "KANDY"}, []string{"colombo", "Kegalle", "KANDY"}},
		{"missing both ends", []string{"Kegalle"}, []string{"Colombo", "Kegalle", "Kandy"}},
		{"missing destination", []string{"Colombo", "Kegalle"}, []string{"Colombo", "Kegalle", "Kandy"}},
		{"empty stays empty", nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AnchorStops(c.stops, "Colombo", "Kandy"); !reflect.DeepEqual(got, c.want) {
				t.Fatalf("AnchorStops(%v) = %#v, want %#v", c.stops, got, c.want)
			}
		})
	}
}
