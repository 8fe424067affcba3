package lavalink

import (
	"fmt"
	"math/rand"
	"strings"
)

// LoopMode is the requeue policy applied when a track finishes.
type LoopMode string

const (
	LoopNone  LoopMode = "none"
	LoopTrack LoopMode = "track"
	LoopQueue LoopMode = "queue"
)

// ParseLoopMode canonicalizes a loop mode string case-insensitively.
func ParseLoopMode(mode string) (LoopMode, error) {
	switch LoopMode(strings.ToLower(mode)) {
	case LoopNone:
		return LoopNone, nil
	case LoopTrack:
		return LoopTrack, nil
	case LoopQueue:
		return LoopQueue, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLoopMode, mode)
}

// Queue is the ordered pending-track list of one player plus its current and
// previous slots. Insertion order is play order. The current track is never a
// member of the pending list at the same time.
type Queue struct {
	items []*Track

	// Current is the track actively playing, nil when idle.
	Current *Track
	// Previous is the last completed track, nil until one finishes.
	Previous *Track

	loop LoopMode
}

// NewQueue creates an empty queue with loop mode none.
func NewQueue() *Queue {
	return &Queue{loop: LoopNone}
}

// Add appends a track to the end of the pending list.
func (q *Queue) Add(track *Track) {
	q.items = append(q.items, track)
}

// Unshift inserts a track at the front of the pending list, making it the
// next track served.
func (q *Queue) Unshift(track *Track) {
	q.items = append([]*Track{track}, q.items...)
}

// Shift removes and returns the head of the pending list, nil when empty.
func (q *Queue) Shift() *Track {
	if len(q.items) == 0 {
		return nil
	}
	track := q.items[0]
	q.items = q.items[1:]
	return track
}

// Remove removes and returns the track at index, nil when out of range.
func (q *Queue) Remove(index int) *Track {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	track := q.items[index]
	q.items = append(q.items[:index], q.items[index+1:]...)
	return track
}

// Clear empties the pending list and returns the removed tracks.
func (q *Queue) Clear() []*Track {
	removed := q.items
	q.items = nil
	return removed
}

// Shuffle permutes the pending list in place with a Fisher-Yates shuffle.
// The current track is untouched.
func (q *Queue) Shuffle() {
	for i := len(q.items) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		q.items[i], q.items[j] = q.items[j], q.items[i]
	}
}

// Tracks returns a copy of the pending list.
func (q *Queue) Tracks() []*Track {
	out := make([]*Track, len(q.items))
	copy(out, q.items)
	return out
}

// Size is the number of pending tracks.
func (q *Queue) Size() int {
	return len(q.items)
}

// TotalSize is the pending count plus one when a track is playing.
func (q *Queue) TotalSize() int {
	if q.Current != nil {
		return len(q.items) + 1
	}
	return len(q.items)
}

// IsEmpty reports whether the pending list is empty.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

// DurationLength is the summed duration of the pending tracks in
// milliseconds. The current track is not included.
func (q *Queue) DurationLength() int64 {
	var total int64
	for _, track := range q.items {
		total += track.Info.Length
	}
	return total
}

// Loop returns the queue's loop mode.
func (q *Queue) Loop() LoopMode {
	return q.loop
}

// SetLoop sets the queue's loop mode.
func (q *Queue) SetLoop(mode LoopMode) {
	q.loop = mode
}
