package lavalink

import (
	"math"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// PlayOptions controls how a play command is issued.
type PlayOptions struct {
	// NoReplace asks the node to ignore the command if a track is playing.
	NoReplace bool
	// StartTime is the position to start from, in milliseconds.
	StartTime int64
	// Paused starts the track paused.
	Paused bool
}

// Player is the event-driven playback session of one guild. It consumes node
// notifications, drives its queue and republishes state changes as events.
type Player struct {
	manager *Manager
	node    *Node

	guildID string

	mu        sync.Mutex
	voiceID   string
	textID    string
	queue     *Queue
	filters   *Filters
	conn      *Connection
	connected bool
	playing   bool
	paused    bool
	position  int64
	ping      int
	deaf      bool
	mute      bool
	destroyed bool
}

func newPlayer(manager *Manager, node *Node, opts CreatePlayerOptions) *Player {
	p := &Player{
		manager: manager,
		node:    node,
		guildID: opts.GuildID,
		voiceID: opts.VoiceID,
		textID:  opts.TextID,
		queue:   NewQueue(),
		deaf:    opts.SelfDeaf,
		mute:    opts.SelfMute,
	}
	p.filters = newFilters(p)
	p.conn = newConnection(p)
	return p
}

// GuildID returns the guild this player is bound to.
func (p *Player) GuildID() string {
	return p.guildID
}

// Node returns the node hosting this player.
func (p *Player) Node() *Node {
	return p.node
}

// Queue returns the player's track queue.
func (p *Player) Queue() *Queue {
	return p.queue
}

// Connection returns the player's voice session binder.
func (p *Player) Connection() *Connection {
	return p.conn
}

// Filters returns the player's filter settings.
func (p *Player) Filters() *Filters {
	return p.filters
}

// Play dequeues the head of the queue into the current slot and issues the
// play command. It is a no-op when the queue is empty. A track without an
// opaque token is resolved first; a resolve failure surfaces as a trackError
// event and leaves the session idle.
func (p *Player) Play(opts PlayOptions) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return ErrPlayerDestroyed
	}
	next := p.queue.Shift()
	p.mu.Unlock()
	if next == nil {
		return nil
	}

	if next.Encoded == "" {
		if err := p.resolve(next); err != nil {
			p.mu.Lock()
			p.playing = false
			destroyed := p.destroyed
			p.mu.Unlock()
			// The session may have been torn down while the resolve was
			// in flight.
			if !destroyed {
				p.manager.emit(Event{Type: EventTrackError, Player: p, Track: next, Err: err})
			}
			return nil
		}
	}

	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return ErrPlayerDestroyed
	}
	p.queue.Current = next
	p.playing = true
	p.position = 0
	p.mu.Unlock()

	p.node.Send(playPayload{
		Op:        "play",
		GuildID:   p.guildID,
		Track:     next.Encoded,
		StartTime: opts.StartTime,
		Pause:     opts.Paused,
		NoReplace: opts.NoReplace,
	})
	return nil
}

// resolve fills the opaque token of a track from an "author - title" search.
func (p *Player) resolve(track *Track) error {
	parts := make([]string, 0, 2)
	if track.Info.Author != "" {
		parts = append(parts, track.Info.Author)
	}
	if track.Info.Title != "" {
		parts = append(parts, track.Info.Title)
	}
	query := strings.Join(parts, " - ")

	candidates, err := p.manager.resolver.Resolve(query)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return ErrResolveFailed
	}
	track.Encoded = candidates[0].Encoded
	return nil
}

// Stop halts the current track without touching the queue.
func (p *Player) Stop() {
	p.mu.Lock()
	p.position = 0
	p.playing = false
	p.mu.Unlock()

	p.node.Send(stopPayload{Op: "stop", GuildID: p.guildID})
}

// Pause pauses or resumes playback. Local flags are updated optimistically
// without waiting for node confirmation.
func (p *Player) Pause(pause bool) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return ErrPlayerDestroyed
	}
	// A resume only counts as playing when there is a track to resume.
	p.playing = !pause && p.queue.Current != nil
	p.paused = pause
	p.mu.Unlock()

	p.node.Send(pausePayload{Op: "pause", GuildID: p.guildID, Pause: pause})
	return nil
}

// SeekTo seeks the current track to a position in milliseconds.
func (p *Player) SeekTo(position int64) error {
	if position < 0 {
		return ErrInvalidPosition
	}

	p.mu.Lock()
	p.position = position
	p.mu.Unlock()

	p.node.Send(seekPayload{Op: "seek", GuildID: p.guildID, Position: position})
	return nil
}

// SetVolume sets the gain multiplier, clamped to [0, 5], and pushes the
// filter settings to the node.
func (p *Player) SetVolume(volume float64) error {
	if math.IsNaN(volume) {
		return ErrInvalidVolume
	}
	volume = math.Min(5, math.Max(0, volume))
	p.filters.Volume = volume
	p.filters.Update()
	return nil
}

// SetLoop sets the requeue policy, accepting none, track or queue in any
// case.
func (p *Player) SetLoop(mode string) error {
	parsed, err := ParseLoopMode(mode)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.queue.SetLoop(parsed)
	p.mu.Unlock()
	return nil
}

// SetTextChannel updates the text channel the player reports to.
func (p *Player) SetTextChannel(channelID string) {
	p.mu.Lock()
	p.textID = channelID
	p.mu.Unlock()
}

// SetVoiceChannel moves the player to another voice channel and re-sends the
// join intent.
func (p *Player) SetVoiceChannel(channelID string) {
	p.setVoiceChannel(channelID)
	p.Connect()
}

func (p *Player) setVoiceChannel(channelID string) {
	p.mu.Lock()
	p.voiceID = channelID
	p.mu.Unlock()
}

// Connect sends the join-voice-channel intent through the platform gateway.
func (p *Player) Connect() {
	p.mu.Lock()
	voiceID := p.voiceID
	deaf, mute := p.deaf, p.mute
	p.connected = true
	p.mu.Unlock()

	p.manager.sendVoice(p.guildID, voiceID, mute, deaf)
}

// Reconnect re-sends the join intent for the current voice channel, used to
// re-establish the voice socket after a recoverable gateway close.
func (p *Player) Reconnect() {
	p.mu.Lock()
	voiceID := p.voiceID
	deaf, mute := p.deaf, p.mute
	p.mu.Unlock()

	if voiceID == "" {
		return
	}
	p.manager.sendVoice(p.guildID, voiceID, mute, deaf)
}

// Disconnect leaves the voice channel and pauses playback.
func (p *Player) Disconnect() {
	p.mu.Lock()
	if p.voiceID == "" {
		p.mu.Unlock()
		return
	}
	p.voiceID = ""
	p.connected = false
	p.playing = false
	p.paused = true
	p.mu.Unlock()

	p.manager.sendVoice(p.guildID, "", false, false)
}

// Destroy disconnects from voice, asks the node to tear down the remote
// player and removes the session from the registry. It is fire-and-forget
// and safe to call mid-playback, and more than once.
func (p *Player) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.mu.Unlock()

	p.Disconnect()
	p.node.Send(destroyPayload{Op: "destroy", GuildID: p.guildID})
	p.manager.emit(Event{Type: EventPlayerDestroy, Player: p})
	p.manager.removePlayer(p.guildID)
}

// Restart resynchronizes the remote player to local state after a control
// socket reconnect: filters are re-applied and the current track re-issued
// from the last known position.
func (p *Player) Restart() {
	p.filters.Update()

	p.mu.Lock()
	current := p.queue.Current
	position := p.position
	paused := p.paused
	if current != nil {
		p.playing = true
	}
	p.mu.Unlock()

	if current == nil {
		return
	}
	p.node.Send(playPayload{
		Op:        "play",
		GuildID:   p.guildID,
		Track:     current.Encoded,
		StartTime: position,
		Pause:     paused,
		NoReplace: true,
	})
}

// Queue helpers, locked counterparts of the queue operations for callers
// outside the node's callback context.

// Add appends a track to the pending queue.
func (p *Player) Add(track *Track) {
	p.mu.Lock()
	p.queue.Add(track)
	p.mu.Unlock()
}

// RemoveTrack removes and returns the pending track at index.
func (p *Player) RemoveTrack(index int) *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Remove(index)
}

// Shuffle permutes the pending queue.
func (p *Player) Shuffle() {
	p.mu.Lock()
	p.queue.Shuffle()
	p.mu.Unlock()
}

// ClearQueue empties the pending queue and returns the removed tracks.
func (p *Player) ClearQueue() []*Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Clear()
}

// QueueSize returns the number of pending tracks.
func (p *Player) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Size()
}

// QueueDuration returns the summed duration of the pending tracks.
func (p *Player) QueueDuration() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.DurationLength()
}

// QueueTracks returns a snapshot of the pending tracks.
func (p *Player) QueueTracks() []*Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Tracks()
}

// State accessors.

// Current returns the track actively playing, nil when idle.
func (p *Player) Current() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Current
}

// Previous returns the last completed track.
func (p *Player) Previous() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Previous
}

// Playing reports whether a track is playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position is the last known playback position in milliseconds.
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Ping is the last reported voice ping in milliseconds.
func (p *Player) Ping() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ping
}

// Connected reports whether the voice connection is up.
func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Loop returns the queue's loop mode.
func (p *Player) Loop() LoopMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Loop()
}

// VoiceChannel returns the current voice channel id.
func (p *Player) VoiceChannel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voiceID
}

// TextChannel returns the bound text channel id.
func (p *Player) TextChannel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textID
}

// handlePlayerUpdate ingests a periodic playerUpdate notification.
func (p *Player) handlePlayerUpdate(message []byte) {
	var update playerUpdateMessage
	if err := json.Unmarshal(message, &update); err != nil {
		return
	}

	p.mu.Lock()
	p.connected = update.State.Connected
	p.position = update.State.Position
	p.ping = update.State.Ping
	p.mu.Unlock()

	p.manager.emit(Event{Type: EventPlayerUpdate, Player: p, Raw: message})
}

// handleNodeEvent dispatches a player event notification from the node.
// Events are handled synchronously in the node's read loop, so per-guild
// ordering follows the order the node emitted them.
func (p *Player) handleNodeEvent(message []byte) {
	var event playerEventMessage
	if err := json.Unmarshal(message, &event); err != nil {
		return
	}

	switch event.Type {
	case "TrackStartEvent":
		p.mu.Lock()
		p.playing = true
		p.paused = false
		current := p.queue.Current
		p.mu.Unlock()
		p.manager.emit(Event{Type: EventTrackStart, Player: p, Track: current, Raw: message})

	case "TrackEndEvent":
		p.handleTrackEnd(event, message)

	case "TrackStuckEvent":
		p.mu.Lock()
		current := p.queue.Current
		p.mu.Unlock()
		p.manager.emit(Event{Type: EventTrackStuck, Player: p, Track: current, Raw: message})
		p.Stop()

	case "TrackExceptionEvent":
		p.mu.Lock()
		current := p.queue.Current
		p.mu.Unlock()
		p.manager.emit(Event{Type: EventTrackError, Player: p, Track: current, Raw: message})
		p.Stop()

	case "WebSocketClosedEvent":
		if event.Code == voiceCloseSessionInvalid || event.Code == voiceCloseServerCrashed {
			p.Reconnect()
		}
		p.manager.emit(Event{Type: EventSocketClosed, Player: p, Code: event.Code, Raw: message})
	}
}

// handleTrackEnd applies the loop policy and decides what plays next.
func (p *Player) handleTrackEnd(event playerEventMessage, message []byte) {
	p.mu.Lock()
	finished := p.queue.Current

	switch event.Reason {
	case endReasonReplaced:
		// An explicit play superseded the track; the new command already
		// set up the queue, so no mutation and no auto-advance.
		p.mu.Unlock()
		p.manager.emit(Event{Type: EventTrackEnd, Player: p, Track: finished, Reason: event.Reason, Raw: message})
		return

	case endReasonLoadFailed, endReasonCleanup:
		// Treat as skip-on-error: drop the broken track and advance.
		p.queue.Previous = finished
		p.queue.Current = nil
		p.playing = false
		p.mu.Unlock()
		p.manager.emit(Event{Type: EventTrackEnd, Player: p, Track: finished, Reason: event.Reason, Raw: message})
		p.Play(PlayOptions{})
		return
	}

	if finished != nil {
		switch p.queue.Loop() {
		case LoopTrack:
			p.queue.Unshift(finished)
		case LoopQueue:
			p.queue.Add(finished)
		}
	}
	p.queue.Previous = finished
	p.queue.Current = nil

	if p.queue.IsEmpty() {
		p.playing = false
		p.mu.Unlock()
		p.manager.emit(Event{Type: EventQueueEnd, Player: p, Track: finished, Raw: message})
		return
	}
	p.mu.Unlock()

	p.manager.emit(Event{Type: EventTrackEnd, Player: p, Track: finished, Reason: event.Reason, Raw: message})
	p.Play(PlayOptions{})
}
