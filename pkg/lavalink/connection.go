package lavalink

import "sync"

// Connection pairs the voice-gateway session id with the voice-server
// descriptor for one player. The two halves arrive asynchronously and in
// either order; the voiceUpdate command is withheld until both are present.
type Connection struct {
	player *Player

	mu          sync.Mutex
	sessionID   string
	voiceServer *VoiceServer
	muted       bool
	deafened    bool

	// pendingServer is set when a voice server arrives before the session id
	// and cleared once the pair has been forwarded.
	pendingServer bool
}

func newConnection(player *Player) *Connection {
	return &Connection{player: player}
}

// SetServerUpdate records a voice-server update and forwards the voiceUpdate
// command when a session id is already known. A payload without an endpoint
// is reported as a node error and dropped.
func (c *Connection) SetServerUpdate(data *VoiceServer) {
	if data == nil || data.Endpoint == "" {
		c.player.manager.emit(Event{
			Type:   EventNodeError,
			Node:   c.player.node,
			Player: c.player,
			Err:    ErrMissingEndpoint,
		})
		return
	}

	c.mu.Lock()
	c.voiceServer = data
	if c.sessionID == "" {
		// The session id always arrives via the companion voice-state
		// event, so this is a transient state, not a failure.
		c.pendingServer = true
		c.mu.Unlock()
		return
	}
	payload := c.forwardLocked()
	c.mu.Unlock()

	c.player.node.Send(payload)
}

// SetStateUpdate records the session id and the self deaf/mute flags from a
// voice-state update. When the reported channel differs from the player's,
// the player's voice channel is moved. A server update that arrived first is
// forwarded now that the session id is known.
func (c *Connection) SetStateUpdate(data *VoiceState) {
	if data.ChannelID != "" && c.player.VoiceChannel() != data.ChannelID {
		c.player.setVoiceChannel(data.ChannelID)
	}

	c.mu.Lock()
	c.deafened = data.SelfDeaf
	c.muted = data.SelfMute
	c.sessionID = data.SessionID

	if c.sessionID == "" || !c.pendingServer {
		c.mu.Unlock()
		return
	}
	payload := c.forwardLocked()
	c.mu.Unlock()

	c.player.node.Send(payload)
}

func (c *Connection) forwardLocked() voiceUpdatePayload {
	c.pendingServer = false
	return voiceUpdatePayload{
		Op:        "voiceUpdate",
		GuildID:   c.player.guildID,
		SessionID: c.sessionID,
		Event:     c.voiceServer,
	}
}

// SessionID returns the recorded gateway session id, empty when the bot is
// not in voice.
func (c *Connection) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Deafened reports the stored self-deaf flag.
func (c *Connection) Deafened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deafened
}

// Muted reports the stored self-mute flag.
func (c *Connection) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}
