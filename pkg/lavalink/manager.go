// Package lavalink is a control-plane client for Lavalink-compatible audio
// nodes. It maintains auto-reconnecting control sockets, routes voice
// credentials from the platform gateway to the chosen node, and tracks
// per-guild playback state from the node's event notifications.
package lavalink

import (
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	json "github.com/goccy/go-json"

	"github.com/SonataStudios/SonataLink/pkg/logger"
)

// Resolver turns a text query into playable track candidates. The default
// implementation searches through the best connected node; tests and
// alternative metadata integrations can substitute their own.
type Resolver interface {
	Resolve(query string) ([]*Track, error)
}

// SendVoiceFunc delivers a voice-channel join/move/leave intent through the
// platform's sharding transport. An empty channelID leaves the channel.
type SendVoiceFunc func(guildID, channelID string, mute, deaf bool)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// UserID is the bot's user id, sent on socket open. Filled from the
	// session when Init is used.
	UserID string
	// ShardCount is sent as the Num-Shards header, defaults to 1.
	ShardCount int
	// ClientName is the client identity header, defaults to "SonataLink".
	ClientName string
	// Nodes are the node descriptors to open links for.
	Nodes []NodeConfig
	// SendVoice delivers gateway voice intents. Filled from the session
	// when Init is used.
	SendVoice SendVoiceFunc
	// Resolver overrides the default node-search resolver.
	Resolver Resolver
	// SearchSource is the prefix for plain-text searches, defaults to
	// "ytsearch".
	SearchSource string
}

// CreatePlayerOptions identifies the guild, voice and text channels of a new
// playback session.
type CreatePlayerOptions struct {
	GuildID  string
	VoiceID  string
	TextID   string
	SelfDeaf bool
	SelfMute bool
}

// Manager is the session registry: it owns the node links, maps guild ids to
// players and routes gateway packets to the right player's binder.
type Manager struct {
	events *dispatcher

	mu      sync.RWMutex
	nodes   map[string]*Node
	players map[string]*Player

	userID       string
	shardCount   int
	clientName   string
	searchSource string
	sendVoiceFn  SendVoiceFunc
	resolver     Resolver
}

// NewManager creates a manager for the given options. Node links are created
// but not connected; call Start or Init.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		events:       newDispatcher(),
		nodes:        make(map[string]*Node),
		players:      make(map[string]*Player),
		userID:       opts.UserID,
		shardCount:   opts.ShardCount,
		clientName:   opts.ClientName,
		searchSource: opts.SearchSource,
		sendVoiceFn:  opts.SendVoice,
		resolver:     opts.Resolver,
	}
	if m.shardCount <= 0 {
		m.shardCount = 1
	}
	if m.clientName == "" {
		m.clientName = "SonataLink"
	}
	if m.searchSource == "" {
		m.searchSource = "ytsearch"
	}
	if m.resolver == nil {
		m.resolver = &nodeResolver{manager: m}
	}
	for _, config := range opts.Nodes {
		node := newNode(m, config)
		m.nodes[node.Identifier()] = node
	}
	return m
}

// On registers a handler for an event kind.
func (m *Manager) On(event EventType, handler Handler) {
	m.events.on(event, handler)
}

func (m *Manager) emit(e Event) {
	m.events.emit(e)
}

// Start opens all node links.
func (m *Manager) Start() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, node := range m.nodes {
		go node.Connect()
	}
}

// Init wires the manager to a Discord session: the bot's user id, the voice
// intent transport and the voice credential handlers, then opens the node
// links.
func (m *Manager) Init(session *discordgo.Session) {
	logger.Debug("Initializing Lavalink manager", "Lavalink")

	m.mu.Lock()
	m.userID = session.State.User.ID
	m.sendVoiceFn = func(guildID, channelID string, mute, deaf bool) {
		if err := session.ChannelVoiceJoinManual(guildID, channelID, mute, deaf); err != nil {
			logger.Warn(fmt.Sprintf("Voice intent for guild %s failed: %v", guildID, err), "Lavalink")
		}
	}
	m.mu.Unlock()

	session.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		m.HandleVoiceStateUpdate(&VoiceState{
			GuildID:   v.GuildID,
			ChannelID: v.ChannelID,
			UserID:    v.UserID,
			SessionID: v.SessionID,
			SelfDeaf:  v.SelfDeaf,
			SelfMute:  v.SelfMute,
		})
	})
	session.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceServerUpdate) {
		m.HandleVoiceServerUpdate(&VoiceServer{
			Token:    v.Token,
			GuildID:  v.GuildID,
			Endpoint: v.Endpoint,
		})
	})

	m.Start()
}

// Shutdown destroys all players and closes every node link.
func (m *Manager) Shutdown() {
	for _, player := range m.Players() {
		player.Destroy()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, node := range m.nodes {
		node.Disconnect()
	}
}

// AddNode registers a node descriptor. The link opens on the next Start or
// on-demand lookup.
func (m *Manager) AddNode(config NodeConfig) *Node {
	node := newNode(m, config)
	m.mu.Lock()
	m.nodes[node.Identifier()] = node
	m.mu.Unlock()
	return node
}

// RemoveNode disconnects and deregisters a node link.
func (m *Manager) RemoveNode(identifier string) {
	m.mu.Lock()
	node := m.nodes[identifier]
	delete(m.nodes, identifier)
	m.mu.Unlock()

	if node != nil {
		node.Disconnect()
	}
}

// Nodes returns a snapshot of all node links.
func (m *Manager) Nodes() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		out = append(out, node)
	}
	return out
}

// LeastUsedNodes returns the connected links sorted ascending by normalized
// CPU utilization. Ties keep their relative order.
func (m *Manager) LeastUsedNodes() []*Node {
	nodes := m.Nodes()
	connected := nodes[:0]
	for _, node := range nodes {
		if node.Connected() {
			connected = append(connected, node)
		}
	}
	sort.SliceStable(connected, func(i, j int) bool {
		return connected[i].CPULoad() < connected[j].CPULoad()
	})
	return connected
}

// BestNode returns the least loaded connected link.
func (m *Manager) BestNode() (*Node, error) {
	nodes := m.LeastUsedNodes()
	if len(nodes) == 0 {
		return nil, ErrNoNodesAvailable
	}
	return nodes[0], nil
}

// Node returns a link by identifier, triggering a connect attempt when the
// link exists but is down. An empty identifier selects the best node.
func (m *Manager) Node(identifier string) (*Node, error) {
	if identifier == "" {
		return m.BestNode()
	}

	m.mu.RLock()
	node := m.nodes[identifier]
	m.mu.RUnlock()

	if node == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, identifier)
	}
	if !node.Connected() {
		node.Connect()
	}
	return node, nil
}

// CreatePlayer returns the registered player for the guild, or creates one on
// the least loaded node and issues the join-voice-channel intent.
func (m *Manager) CreatePlayer(opts CreatePlayerOptions) (*Player, error) {
	if opts.GuildID == "" {
		return nil, fmt.Errorf("lavalink: create player: missing guildId")
	}
	if opts.VoiceID == "" {
		return nil, fmt.Errorf("lavalink: create player: missing voiceId")
	}
	if opts.TextID == "" {
		return nil, fmt.Errorf("lavalink: create player: missing textId")
	}

	m.mu.Lock()
	if existing := m.players[opts.GuildID]; existing != nil {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	node, err := m.BestNode()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	// Re-check under the lock, a concurrent create may have won.
	if existing := m.players[opts.GuildID]; existing != nil {
		m.mu.Unlock()
		return existing, nil
	}
	player := newPlayer(m, node, opts)
	m.players[opts.GuildID] = player
	m.mu.Unlock()

	m.emit(Event{Type: EventPlayerCreate, Player: player})
	player.Connect()
	return player, nil
}

// Player returns the registered player for a guild, nil when none exists.
func (m *Manager) Player(guildID string) *Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.players[guildID]
}

// Players returns a snapshot of all registered players.
func (m *Manager) Players() []*Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Player, 0, len(m.players))
	for _, player := range m.players {
		out = append(out, player)
	}
	return out
}

// RemovePlayer destroys and deregisters the guild's player, no-op when none
// exists.
func (m *Manager) RemovePlayer(guildID string) {
	if player := m.Player(guildID); player != nil {
		player.Destroy()
	}
}

// removePlayer deregisters without destroying, called from Player.Destroy.
func (m *Manager) removePlayer(guildID string) {
	m.mu.Lock()
	delete(m.players, guildID)
	m.mu.Unlock()
}

// restartPlayers resynchronizes every player hosted by a node after its link
// reconnected.
func (m *Manager) restartPlayers(node *Node) {
	for _, player := range m.Players() {
		if player.node == node {
			player.Restart()
		}
	}
}

// sendVoice forwards a voice intent through the configured transport.
func (m *Manager) sendVoice(guildID, channelID string, mute, deaf bool) {
	m.mu.RLock()
	send := m.sendVoiceFn
	m.mu.RUnlock()
	if send != nil {
		send(guildID, channelID, mute, deaf)
	}
}

// HandleVoiceStateUpdate routes a gateway voice-state update to the matching
// player's binder. Updates for other users are ignored.
func (m *Manager) HandleVoiceStateUpdate(state *VoiceState) {
	m.mu.RLock()
	userID := m.userID
	m.mu.RUnlock()
	if state.UserID != userID {
		return
	}
	if player := m.Player(state.GuildID); player != nil {
		player.conn.SetStateUpdate(state)
	}
}

// HandleVoiceServerUpdate routes a gateway voice-server update to the
// matching player's binder.
func (m *Manager) HandleVoiceServerUpdate(server *VoiceServer) {
	if player := m.Player(server.GuildID); player != nil {
		player.conn.SetServerUpdate(server)
	}
}

// PacketUpdate routes a raw gateway packet. Only VOICE_STATE_UPDATE and
// VOICE_SERVER_UPDATE are dispatched; everything else is ignored here.
func (m *Manager) PacketUpdate(packetType string, data []byte) {
	switch packetType {
	case "VOICE_STATE_UPDATE":
		state := new(VoiceState)
		if err := json.Unmarshal(data, state); err != nil {
			return
		}
		m.HandleVoiceStateUpdate(state)
	case "VOICE_SERVER_UPDATE":
		server := new(VoiceServer)
		if err := json.Unmarshal(data, server); err != nil {
			return
		}
		m.HandleVoiceServerUpdate(server)
	}
}

// Search resolves a query into track candidates through the best node. URLs
// are passed through unchanged; plain text is prefixed with the search
// source (ytsearch unless configured otherwise).
func (m *Manager) Search(query, source string) (*LoadResult, error) {
	node, err := m.BestNode()
	if err != nil {
		return nil, err
	}

	identifier := query
	if !isURL(query) {
		if source == "" {
			source = m.searchSource
		}
		identifier = source + ":" + query
	}
	return node.LoadTracks(identifier)
}

// DecodeTrack decodes an opaque track token through the best node.
func (m *Manager) DecodeTrack(encoded string) (*TrackInfo, error) {
	node, err := m.BestNode()
	if err != nil {
		return nil, err
	}
	return node.DecodeTrack(encoded)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// nodeResolver is the default lazy-resolve strategy: a ytsearch query through
// the best node, with a ytmsearch fallback.
type nodeResolver struct {
	manager *Manager
}

func (r *nodeResolver) Resolve(query string) ([]*Track, error) {
	node, err := r.manager.BestNode()
	if err != nil {
		return nil, err
	}

	for _, source := range []string{"ytsearch", "ytmsearch"} {
		result, err := node.LoadTracks(source + ":" + query)
		if err != nil {
			return nil, err
		}
		if result != nil && len(result.Tracks) > 0 {
			return result.Tracks, nil
		}
	}
	return nil, ErrResolveFailed
}
