package lavalink

import (
	"errors"
	"testing"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	a, b, c := testTrack("a"), testTrack("b"), testTrack("c")
	q.Add(a)
	q.Add(b)
	q.Add(c)

	if q.Size() != 3 {
		t.Fatalf("Size = %d, want 3", q.Size())
	}
	for i, want := range []*Track{a, b, c} {
		got := q.Shift()
		if got != want {
			t.Errorf("Shift #%d = %v, want %v", i, got, want)
		}
	}
	if q.Shift() != nil {
		t.Error("Shift on empty queue should return nil")
	}
}

func TestQueueUnshift(t *testing.T) {
	q := NewQueue()
	q.Add(testTrack("a"))
	front := testTrack("front")
	q.Unshift(front)

	if got := q.Shift(); got != front {
		t.Errorf("Shift = %v, want the unshifted track", got)
	}
}

func TestQueueRemoveOutOfRange(t *testing.T) {
	q := NewQueue()
	q.Add(testTrack("a"))

	if got := q.Remove(-1); got != nil {
		t.Errorf("Remove(-1) = %v, want nil", got)
	}
	if got := q.Remove(5); got != nil {
		t.Errorf("Remove(5) = %v, want nil", got)
	}
	if q.Size() != 1 {
		t.Errorf("Size after failed removes = %d, want 1", q.Size())
	}

	if got := q.Remove(0); got == nil {
		t.Error("Remove(0) should return the removed track")
	}
	if q.Size() != 0 {
		t.Errorf("Size after remove = %d, want 0", q.Size())
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Add(testTrack("a"))
	q.Add(testTrack("b"))
	q.Current = testTrack("current")

	removed := q.Clear()
	if len(removed) != 2 {
		t.Fatalf("Clear returned %d tracks, want 2", len(removed))
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty after Clear")
	}
	if q.Current == nil {
		t.Error("Clear must not touch the current slot")
	}
}

func TestQueueShufflePermutes(t *testing.T) {
	q := NewQueue()
	tracks := make(map[*Track]bool)
	for i := 0; i < 20; i++ {
		track := testTrack(string(rune('a' + i)))
		tracks[track] = true
		q.Add(track)
	}

	q.Shuffle()

	if q.Size() != 20 {
		t.Fatalf("Size after shuffle = %d, want 20", q.Size())
	}
	for _, track := range q.Tracks() {
		if !tracks[track] {
			t.Errorf("shuffle introduced an unknown track %v", track)
		}
		delete(tracks, track)
	}
	if len(tracks) != 0 {
		t.Errorf("shuffle dropped %d tracks", len(tracks))
	}
}

func TestQueueTotalSizeAndDuration(t *testing.T) {
	q := NewQueue()
	q.Add(testTrack("a"))
	q.Add(testTrack("b"))

	if got := q.TotalSize(); got != 2 {
		t.Errorf("TotalSize = %d, want 2", got)
	}

	q.Current = testTrack("current")
	if got := q.TotalSize(); got != 3 {
		t.Errorf("TotalSize with current = %d, want 3", got)
	}

	if got := q.DurationLength(); got != 360000 {
		t.Errorf("DurationLength = %d, want 360000", got)
	}
}

func TestParseLoopMode(t *testing.T) {
	cases := []struct {
		in   string
		want LoopMode
	}{
		{"none", LoopNone},
		{"track", LoopTrack},
		{"queue", LoopQueue},
		{"TRACK", LoopTrack},
		{"Queue", LoopQueue},
	}
	for _, tc := range cases {
		got, err := ParseLoopMode(tc.in)
		if err != nil {
			t.Errorf("ParseLoopMode(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLoopMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseLoopMode("bogus"); !errors.Is(err, ErrInvalidLoopMode) {
		t.Errorf("ParseLoopMode(bogus) error = %v, want ErrInvalidLoopMode", err)
	}
}
