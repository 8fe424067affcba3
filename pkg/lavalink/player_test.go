package lavalink

import (
	"errors"
	"testing"
)

func trackEndMessage(reason string) []byte {
	return []byte(`{"op":"event","type":"TrackEndEvent","guildId":"g1","reason":"` + reason + `"}`)
}

func TestPlayerPlayAdvancesQueue(t *testing.T) {
	_, player, dialer, _, log := newTestPlayer(t)

	a, b := testTrack("a"), testTrack("b")
	player.Add(a)
	player.Add(b)

	if err := player.Play(PlayOptions{}); err != nil {
		t.Fatal(err)
	}

	if got := player.Current(); got != a {
		t.Fatalf("Current = %v, want the first track", got)
	}
	if !player.Playing() {
		t.Error("player should report playing")
	}
	if got := player.QueueSize(); got != 1 {
		t.Errorf("pending size = %d, want 1", got)
	}

	player.handleNodeEvent([]byte(`{"op":"event","type":"TrackStartEvent","guildId":"g1"}`))
	if got := len(log.ofType(EventTrackStart)); got != 1 {
		t.Errorf("trackStart events = %d, want 1", got)
	}

	// A finished track hands playback to the next one.
	player.handleNodeEvent(trackEndMessage("FINISHED"))
	if got := player.Current(); got != b {
		t.Errorf("Current after end = %v, want the second track", got)
	}
	if got := player.Previous(); got != a {
		t.Errorf("Previous = %v, want the finished track", got)
	}
	if got := len(log.ofType(EventTrackEnd)); got != 1 {
		t.Errorf("trackEnd events = %d, want 1", got)
	}

	// The last track ending empties the session.
	player.handleNodeEvent(trackEndMessage("FINISHED"))
	if player.Current() != nil {
		t.Error("Current should be nil after the queue drained")
	}
	if player.Playing() {
		t.Error("player should be idle after the queue drained")
	}
	if got := len(log.ofType(EventQueueEnd)); got != 1 {
		t.Errorf("queueEnd events = %d, want 1", got)
	}

	plays := 0
	for _, op := range dialer.lastConn().ops() {
		if op == "play" {
			plays++
		}
	}
	if plays != 2 {
		t.Errorf("play commands = %d, want 2", plays)
	}
}

func TestPlayerPlayOnEmptyQueueIsNoop(t *testing.T) {
	_, player, dialer, _, _ := newTestPlayer(t)

	if err := player.Play(PlayOptions{}); err != nil {
		t.Fatal(err)
	}
	for _, op := range dialer.lastConn().ops() {
		if op == "play" {
			t.Fatal("play was issued with an empty queue")
		}
	}
}

func TestPlayerLoopTrack(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)

	a, b := testTrack("a"), testTrack("b")
	player.Add(a)
	player.Add(b)
	if err := player.SetLoop("track"); err != nil {
		t.Fatal(err)
	}

	player.Play(PlayOptions{})
	player.handleNodeEvent(trackEndMessage("FINISHED"))

	if got := player.Current(); got != a {
		t.Errorf("Current = %v, want the same track under loop track", got)
	}
	if got := player.QueueSize(); got != 1 {
		t.Errorf("pending size = %d, want 1", got)
	}
}

func TestPlayerLoopQueue(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)

	a, b := testTrack("a"), testTrack("b")
	player.Add(a)
	player.Add(b)
	if err := player.SetLoop("queue"); err != nil {
		t.Fatal(err)
	}

	player.Play(PlayOptions{})
	player.handleNodeEvent(trackEndMessage("FINISHED"))

	if got := player.Current(); got != b {
		t.Errorf("Current = %v, want the next track", got)
	}
	tracks := player.QueueTracks()
	if len(tracks) != 1 || tracks[0] != a {
		t.Errorf("pending = %v, want the finished track requeued at the back", tracks)
	}
}

func TestPlayerLoopQueueFullRotation(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)

	a, b, c := testTrack("a"), testTrack("b"), testTrack("c")
	player.Add(a)
	player.Add(b)
	player.Add(c)
	if err := player.SetLoop("queue"); err != nil {
		t.Fatal(err)
	}

	player.Play(PlayOptions{})

	// One full cycle brings the rotation back to the first track.
	for i := 0; i < 3; i++ {
		player.handleNodeEvent(trackEndMessage("FINISHED"))
	}

	if got := player.Current(); got != a {
		t.Errorf("Current = %v, want the first track after a full cycle", got)
	}
	tracks := player.QueueTracks()
	if len(tracks) != 2 || tracks[0] != b || tracks[1] != c {
		t.Errorf("pending = %v, want [b c] restored in order", tracks)
	}
}

func TestPlayerReplacedEndDoesNotAdvance(t *testing.T) {
	_, player, dialer, _, log := newTestPlayer(t)

	a, b := testTrack("a"), testTrack("b")
	player.Add(a)
	player.Add(b)
	player.Play(PlayOptions{})

	player.handleNodeEvent(trackEndMessage("REPLACED"))

	if got := player.Current(); got != a {
		t.Errorf("Current = %v, want untouched under REPLACED", got)
	}
	if got := player.QueueSize(); got != 1 {
		t.Errorf("pending size = %d, want 1", got)
	}
	if got := len(log.ofType(EventTrackEnd)); got != 1 {
		t.Errorf("trackEnd events = %d, want 1", got)
	}

	plays := 0
	for _, op := range dialer.lastConn().ops() {
		if op == "play" {
			plays++
		}
	}
	if plays != 1 {
		t.Errorf("play commands = %d, want 1: REPLACED must not auto-advance", plays)
	}
}

func TestPlayerLoadFailedSkipsToNext(t *testing.T) {
	_, player, _, _, log := newTestPlayer(t)

	a, b := testTrack("a"), testTrack("b")
	player.Add(a)
	player.Add(b)
	player.SetLoop("track")
	player.Play(PlayOptions{})

	player.handleNodeEvent(trackEndMessage("LOAD_FAILED"))

	// Skip-on-error ignores the loop policy and drops the broken track.
	if got := player.Current(); got != b {
		t.Errorf("Current = %v, want the next track after LOAD_FAILED", got)
	}
	if got := player.Previous(); got != a {
		t.Errorf("Previous = %v, want the failed track", got)
	}
	if got := len(log.ofType(EventTrackEnd)); got != 1 {
		t.Errorf("trackEnd events = %d, want 1", got)
	}
}

func TestPlayerPause(t *testing.T) {
	_, player, dialer, _, _ := newTestPlayer(t)

	player.Add(testTrack("a"))
	player.Play(PlayOptions{})

	if err := player.Pause(true); err != nil {
		t.Fatal(err)
	}
	if !player.Paused() || player.Playing() {
		t.Error("pause flags not applied")
	}

	// Pausing twice is harmless.
	if err := player.Pause(true); err != nil {
		t.Fatal(err)
	}

	if err := player.Pause(false); err != nil {
		t.Fatal(err)
	}
	if player.Paused() || !player.Playing() {
		t.Error("resume flags not applied")
	}

	pauses := 0
	for _, op := range dialer.lastConn().ops() {
		if op == "pause" {
			pauses++
		}
	}
	if pauses != 3 {
		t.Errorf("pause commands = %d, want 3", pauses)
	}
}

func TestPlayerResumeWithoutTrackStaysIdle(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)

	if err := player.Pause(false); err != nil {
		t.Fatal(err)
	}
	if player.Playing() {
		t.Error("resume with no current track must not report playing")
	}
}

func TestPlayerSeekRejectsNegative(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)

	if err := player.SeekTo(-1); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("SeekTo(-1) = %v, want ErrInvalidPosition", err)
	}
	if err := player.SeekTo(5000); err != nil {
		t.Errorf("SeekTo(5000) = %v, want nil", err)
	}
	if got := player.Position(); got != 5000 {
		t.Errorf("Position = %d, want 5000", got)
	}
}

func TestPlayerVolumeClamp(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)

	if err := player.SetVolume(10); err != nil {
		t.Fatal(err)
	}
	if got := player.Filters().Volume; got != 5 {
		t.Errorf("Volume = %v, want clamped to 5", got)
	}

	if err := player.SetVolume(-3); err != nil {
		t.Fatal(err)
	}
	if got := player.Filters().Volume; got != 0 {
		t.Errorf("Volume = %v, want clamped to 0", got)
	}
}

func TestPlayerLazyResolve(t *testing.T) {
	_, player, dialer, _, _ := newTestPlayer(t)

	player.Add(&Track{Info: TrackInfo{Title: "Song", Author: "Artist"}})
	if err := player.Play(PlayOptions{}); err != nil {
		t.Fatal(err)
	}

	if got := player.Current(); got == nil || got.Encoded != "resolved-token" {
		t.Errorf("Current = %+v, want the resolved token filled in", got)
	}

	found := false
	for _, p := range dialer.lastConn().payloads() {
		if p["op"] == "play" && p["track"] == "resolved-token" {
			found = true
		}
	}
	if !found {
		t.Error("play was not issued with the resolved token")
	}
}

func TestPlayerResolveFailureStaysIdle(t *testing.T) {
	m, player, dialer, _, log := newTestPlayer(t)
	m.resolver = &staticResolver{err: ErrResolveFailed}

	player.Add(&Track{Info: TrackInfo{Title: "Broken"}})
	if err := player.Play(PlayOptions{}); err != nil {
		t.Fatal(err)
	}

	if player.Playing() {
		t.Error("player should stay idle when the resolve fails")
	}
	if got := len(log.ofType(EventTrackError)); got != 1 {
		t.Errorf("trackError events = %d, want 1", got)
	}
	for _, op := range dialer.lastConn().ops() {
		if op == "play" {
			t.Fatal("play must not be issued after a failed resolve")
		}
	}
}

// destroyingResolver tears the player down while the resolve is in flight.
type destroyingResolver struct {
	player *Player
}

func (r *destroyingResolver) Resolve(query string) ([]*Track, error) {
	r.player.Destroy()
	return []*Track{{Encoded: "late-token"}}, nil
}

func TestPlayerDestroyDuringResolve(t *testing.T) {
	m, player, dialer, _, _ := newTestPlayer(t)
	m.resolver = &destroyingResolver{player: player}

	player.Add(&Track{Info: TrackInfo{Title: "Song"}})

	if err := player.Play(PlayOptions{}); !errors.Is(err, ErrPlayerDestroyed) {
		t.Errorf("Play = %v, want ErrPlayerDestroyed", err)
	}
	for _, op := range dialer.lastConn().ops() {
		if op == "play" {
			t.Fatal("play must not be issued on a destroyed session")
		}
	}
}

func TestPlayerDestroy(t *testing.T) {
	m, player, dialer, voice, log := newTestPlayer(t)

	player.Destroy()
	player.Destroy() // second call is a no-op

	if m.Player("g1") != nil {
		t.Error("player still registered after destroy")
	}
	if got := len(log.ofType(EventPlayerDestroy)); got != 1 {
		t.Errorf("playerDestroy events = %d, want 1", got)
	}

	destroys := 0
	for _, op := range dialer.lastConn().ops() {
		if op == "destroy" {
			destroys++
		}
	}
	if destroys != 1 {
		t.Errorf("destroy commands = %d, want 1", destroys)
	}

	// The leave intent clears the channel.
	calls := voice.all()
	if len(calls) == 0 || calls[len(calls)-1].channelID != "" {
		t.Errorf("voice calls = %v, want a trailing leave intent", calls)
	}

	if err := player.Play(PlayOptions{}); !errors.Is(err, ErrPlayerDestroyed) {
		t.Errorf("Play after destroy = %v, want ErrPlayerDestroyed", err)
	}
}

func TestPlayerVoiceCloseRejoinsOnRecoverableCodes(t *testing.T) {
	_, player, _, voice, log := newTestPlayer(t)

	base := len(voice.all())

	player.handleNodeEvent([]byte(`{"op":"event","type":"WebSocketClosedEvent","guildId":"g1","code":4009}`))
	if got := len(voice.all()); got != base+1 {
		t.Errorf("voice calls after 4009 = %d, want %d", got, base+1)
	}

	player.handleNodeEvent([]byte(`{"op":"event","type":"WebSocketClosedEvent","guildId":"g1","code":4015}`))
	if got := len(voice.all()); got != base+2 {
		t.Errorf("voice calls after 4015 = %d, want %d", got, base+2)
	}

	// 4014 is a terminal disconnect, no rejoin.
	player.handleNodeEvent([]byte(`{"op":"event","type":"WebSocketClosedEvent","guildId":"g1","code":4014}`))
	if got := len(voice.all()); got != base+2 {
		t.Errorf("voice calls after 4014 = %d, want %d", got, base+2)
	}

	if got := len(log.ofType(EventSocketClosed)); got != 3 {
		t.Errorf("socketClosed events = %d, want 3", got)
	}
}

func TestPlayerUpdateMessage(t *testing.T) {
	_, player, _, _, log := newTestPlayer(t)

	player.handlePlayerUpdate([]byte(`{"op":"playerUpdate","guildId":"g1",` +
		`"state":{"time":1,"position":42000,"connected":true,"ping":7}}`))

	if got := player.Position(); got != 42000 {
		t.Errorf("Position = %d, want 42000", got)
	}
	if got := player.Ping(); got != 7 {
		t.Errorf("Ping = %d, want 7", got)
	}
	if !player.Connected() {
		t.Error("connected flag not applied")
	}
	if got := len(log.ofType(EventPlayerUpdate)); got != 1 {
		t.Errorf("playerUpdate events = %d, want 1", got)
	}
}

func TestPlayerTrackStuckStops(t *testing.T) {
	_, player, dialer, _, log := newTestPlayer(t)

	player.Add(testTrack("a"))
	player.Play(PlayOptions{})

	player.handleNodeEvent([]byte(`{"op":"event","type":"TrackStuckEvent","guildId":"g1","thresholdMs":5000}`))

	if got := len(log.ofType(EventTrackStuck)); got != 1 {
		t.Errorf("trackStuck events = %d, want 1", got)
	}
	ops := dialer.lastConn().ops()
	if len(ops) == 0 || ops[len(ops)-1] != "stop" {
		t.Errorf("ops = %v, want trailing stop after a stuck track", ops)
	}
}
