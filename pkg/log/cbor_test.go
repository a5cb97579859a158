package log

import (
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 19, 12, 30, 0, 123456789, time.UTC)

	tests := []struct {
		name  string
		event Event
		check func(t *testing.T, got Event)
	}{
		{
			name: "fetch",
			event: Event{
				Timestamp:    ts,
				ControllerID: "ctrl-1",
				Category:     CategoryFetch,
				StatusType:   "VacuumStatus",
				Fetch: &FetchEvent{
					Duration:   25 * time.Millisecond,
					Properties: 4,
					Payload:    map[string]any{"battery": "full"},
				},
			},
			check: func(t *testing.T, got Event) {
				if got.Fetch == nil {
					t.Fatal("Fetch payload lost")
				}
				if got.Fetch.Duration != 25*time.Millisecond || got.Fetch.Properties != 4 {
					t.Errorf("unexpected fetch %+v", got.Fetch)
				}
				if got.Fetch.Payload["battery"] != "full" {
					t.Errorf("payload: got %v", got.Fetch.Payload)
				}
			},
		},
		{
			name: "setter",
			event: Event{
				Timestamp:    ts,
				ControllerID: "ctrl-1",
				Category:     CategorySetter,
				Setter:       &SetterEvent{SetterName: "set_level", Value: 1, Duration: time.Microsecond},
			},
			check: func(t *testing.T, got Event) {
				if got.Setter == nil || got.Setter.SetterName != "set_level" {
					t.Fatalf("unexpected setter %+v", got.Setter)
				}
				if got.Setter.Value != uint64(1) {
					t.Errorf("value: got %v (%T)", got.Setter.Value, got.Setter.Value)
				}
			},
		},
		{
			name: "error",
			event: Event{
				Timestamp: ts,
				Category:  CategoryError,
				Error:     &ErrorEventData{Operation: "setter", Message: "setter not found", SetterName: "set_x"},
			},
			check: func(t *testing.T, got Event) {
				if got.Error == nil || *got.Error != (ErrorEventData{Operation: "setter", Message: "setter not found", SetterName: "set_x"}) {
					t.Errorf("unexpected error data %+v", got.Error)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}
			got, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if !got.Timestamp.Equal(ts) {
				t.Errorf("timestamp: got %v, want %v", got.Timestamp, ts)
			}
			if got.Category != tt.event.Category || got.ControllerID != tt.event.ControllerID {
				t.Errorf("header mismatch: %+v", got)
			}
			tt.check(t, got)
		})
	}
}

func TestDecodeEventGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff}); err == nil {
		t.Error("expected error decoding garbage")
	}
}
