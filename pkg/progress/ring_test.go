package progress

import (
	"fmt"
	"testing"
	"time"
)

func TestRingPushAndRecent(t *testing.T) {
	r := NewRing(4096)

	events := []Event{
		{Status: "submitting", Progress: 0},
		{Status: "in_progress", Progress: 40},
		{Status: "succeeded", Progress: 100},
	}
	for _, ev := range events {
		ev.At = time.Now().UTC()
		if err := r.Push(ev); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	got := r.Recent()
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i, ev := range got {
		if ev.Status != events[i].Status || ev.Progress != events[i].Progress {
			t.Errorf("events[%d] = %+v, want %+v", i, ev, events[i])
		}
	}
}

func TestRingRecentDoesNotConsume(t *testing.T) {
	r := NewRing(1024)
	if err := r.Push(Event{Status: "in_progress", Progress: 10}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if len(r.Recent()) != 1 || len(r.Recent()) != 1 {
		t.Fatal("Recent consumed the ring")
	}
}

func TestRingDropsOldestWhenFull(t *testing.T) {
	r := NewRing(256)

	for i := 0; i < 50; i++ {
		ev := Event{Status: "in_progress", Progress: float64(i), Error: fmt.Sprintf("pad-%02d", i)}
		if err := r.Push(ev); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}

	got := r.Recent()
	if len(got) == 0 {
		t.Fatal("ring emptied itself")
	}
	// Newest event always survives; the oldest have been evicted.
	if got[len(got)-1].Progress != 49 {
		t.Errorf("last progress = %v, want 49", got[len(got)-1].Progress)
	}
	if got[0].Progress == 0 {
		t.Error("oldest event survived a full ring")
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRing(64)
	if got := r.Recent(); got != nil {
		t.Errorf("Recent on empty ring = %v, want nil", got)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}
