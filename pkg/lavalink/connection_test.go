package lavalink

import (
	"testing"
)

func newTestPlayer(t *testing.T) (*Manager, *Player, *fakeDialer, *voiceRecorder, *eventLog) {
	t.Helper()
	m, _, dialer, voice, log := newTestRig(t)
	player, err := m.CreatePlayer(CreatePlayerOptions{
		GuildID: "g1",
		VoiceID: "v1",
		TextID:  "t1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return m, player, dialer, voice, log
}

func voiceUpdates(conn *fakeConn) []map[string]interface{} {
	var out []map[string]interface{}
	for _, p := range conn.payloads() {
		if p["op"] == "voiceUpdate" {
			out = append(out, p)
		}
	}
	return out
}

func TestConnectionForwardsServerThenState(t *testing.T) {
	_, player, dialer, _, _ := newTestPlayer(t)
	conn := player.Connection()

	conn.SetServerUpdate(&VoiceServer{Token: "tok", GuildID: "g1", Endpoint: "voice.example.com"})
	if got := len(voiceUpdates(dialer.lastConn())); got != 0 {
		t.Fatalf("voiceUpdate sent with only the server half, got %d", got)
	}

	conn.SetStateUpdate(&VoiceState{GuildID: "g1", ChannelID: "v1", UserID: "100", SessionID: "sess-1"})

	updates := voiceUpdates(dialer.lastConn())
	if len(updates) != 1 {
		t.Fatalf("voiceUpdate count = %d, want 1", len(updates))
	}
	if updates[0]["sessionId"] != "sess-1" {
		t.Errorf("sessionId = %v, want sess-1", updates[0]["sessionId"])
	}
	event, ok := updates[0]["event"].(map[string]interface{})
	if !ok || event["endpoint"] != "voice.example.com" {
		t.Errorf("event = %v, want the stored voice server", updates[0]["event"])
	}
}

func TestConnectionForwardsStateThenServer(t *testing.T) {
	_, player, dialer, _, _ := newTestPlayer(t)
	conn := player.Connection()

	conn.SetStateUpdate(&VoiceState{GuildID: "g1", ChannelID: "v1", UserID: "100", SessionID: "sess-2"})
	if got := len(voiceUpdates(dialer.lastConn())); got != 0 {
		t.Fatalf("voiceUpdate sent with only the state half, got %d", got)
	}

	conn.SetServerUpdate(&VoiceServer{Token: "tok", GuildID: "g1", Endpoint: "voice.example.com"})

	updates := voiceUpdates(dialer.lastConn())
	if len(updates) != 1 {
		t.Fatalf("voiceUpdate count = %d, want 1", len(updates))
	}
	if updates[0]["sessionId"] != "sess-2" {
		t.Errorf("sessionId = %v, want sess-2", updates[0]["sessionId"])
	}
}

func TestConnectionServerRefreshAfterPairing(t *testing.T) {
	_, player, dialer, _, _ := newTestPlayer(t)
	conn := player.Connection()

	conn.SetStateUpdate(&VoiceState{GuildID: "g1", ChannelID: "v1", UserID: "100", SessionID: "sess-3"})
	conn.SetServerUpdate(&VoiceServer{Token: "tok", GuildID: "g1", Endpoint: "voice.example.com"})

	// A region change hands out a fresh server half for the same session.
	conn.SetServerUpdate(&VoiceServer{Token: "tok-2", GuildID: "g1", Endpoint: "moved.example.com"})

	updates := voiceUpdates(dialer.lastConn())
	if len(updates) != 2 {
		t.Fatalf("voiceUpdate count = %d, want 2", len(updates))
	}
	if updates[1]["sessionId"] != "sess-3" {
		t.Errorf("sessionId = %v, want sess-3", updates[1]["sessionId"])
	}
	event, ok := updates[1]["event"].(map[string]interface{})
	if !ok || event["endpoint"] != "moved.example.com" {
		t.Errorf("event = %v, want the refreshed voice server", updates[1]["event"])
	}
}

func TestConnectionMissingEndpoint(t *testing.T) {
	_, player, dialer, _, log := newTestPlayer(t)
	conn := player.Connection()

	conn.SetServerUpdate(&VoiceServer{Token: "tok", GuildID: "g1"})

	errs := log.ofType(EventNodeError)
	if len(errs) != 1 {
		t.Fatalf("node error events = %d, want 1", len(errs))
	}
	if errs[0].Err != ErrMissingEndpoint {
		t.Errorf("err = %v, want ErrMissingEndpoint", errs[0].Err)
	}
	if got := len(voiceUpdates(dialer.lastConn())); got != 0 {
		t.Errorf("voiceUpdate count = %d, want 0 for a dropped payload", got)
	}
}

func TestConnectionTracksChannelMove(t *testing.T) {
	_, player, _, _, _ := newTestPlayer(t)
	conn := player.Connection()

	conn.SetStateUpdate(&VoiceState{
		GuildID:   "g1",
		ChannelID: "v2",
		UserID:    "100",
		SessionID: "sess-3",
		SelfDeaf:  true,
	})

	if got := player.VoiceChannel(); got != "v2" {
		t.Errorf("VoiceChannel = %q, want v2 after the move", got)
	}
	if !conn.Deafened() {
		t.Error("self-deaf flag was not stored")
	}
	if conn.SessionID() != "sess-3" {
		t.Errorf("SessionID = %q, want sess-3", conn.SessionID())
	}
}

func TestConnectionRouteThroughManager(t *testing.T) {
	m, player, dialer, _, _ := newTestPlayer(t)

	// Updates for other users never reach the binder.
	m.HandleVoiceStateUpdate(&VoiceState{GuildID: "g1", ChannelID: "v1", UserID: "999", SessionID: "other"})
	if player.Connection().SessionID() != "" {
		t.Fatal("a foreign voice state must be ignored")
	}

	m.PacketUpdate("VOICE_STATE_UPDATE",
		[]byte(`{"guild_id":"g1","channel_id":"v1","user_id":"100","session_id":"sess-4"}`))
	m.PacketUpdate("VOICE_SERVER_UPDATE",
		[]byte(`{"token":"tok","guild_id":"g1","endpoint":"voice.example.com"}`))

	if got := len(voiceUpdates(dialer.lastConn())); got != 1 {
		t.Errorf("voiceUpdate count = %d, want 1 after both packets", got)
	}
}
