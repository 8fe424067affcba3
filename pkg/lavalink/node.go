package lavalink

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/SonataStudios/SonataLink/pkg/logger"
)

// Reconnect policy defaults.
const (
	DefaultReconnectTries   = 5
	DefaultReconnectTimeout = 5 * time.Second
)

// NodeConfig holds the immutable descriptor of one Lavalink node.
type NodeConfig struct {
	Name     string
	Host     string
	Port     int
	Password string
	Secure   bool

	// ReconnectTries is the attempt ceiling after an unexpected close.
	ReconnectTries int
	// ReconnectTimeout is the fixed wait before each reconnect attempt.
	ReconnectTimeout time.Duration

	// ResumeKey enables session resuming on the node when set.
	ResumeKey string
	// ResumeTimeout is how long the node buffers after a drop, in seconds.
	ResumeTimeout int
}

// wsConn is the subset of a websocket connection the node uses. It exists so
// tests can substitute a fake transport.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type dialFunc func(url string, header http.Header) (wsConn, error)

func defaultDial(url string, header http.Header) (wsConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, header)
	return conn, err
}

// Node owns the authenticated, auto-reconnecting control channel to one
// Lavalink node. All runtime state is mutated by the node itself in response
// to socket lifecycle events; the selector only reads it.
type Node struct {
	manager *Manager
	config  NodeConfig

	mu             sync.RWMutex
	conn           wsConn
	connected      bool
	attempts       int
	reconnectTimer *time.Timer
	stats          *NodeStats
	lastWriteErr   error

	// wmu serializes writes, the websocket allows one writer at a time.
	wmu sync.Mutex

	dial dialFunc
	rest *http.Client
}

func newNode(manager *Manager, config NodeConfig) *Node {
	if config.ReconnectTries <= 0 {
		config.ReconnectTries = DefaultReconnectTries
	}
	if config.ReconnectTimeout <= 0 {
		config.ReconnectTimeout = DefaultReconnectTimeout
	}
	return &Node{
		manager: manager,
		config:  config,
		dial:    defaultDial,
		rest:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Identifier returns the configured name, falling back to the host.
func (n *Node) Identifier() string {
	if n.config.Name != "" {
		return n.config.Name
	}
	return n.config.Host
}

// Config returns a copy of the node descriptor.
func (n *Node) Config() NodeConfig {
	return n.config
}

func (n *Node) socketURL() string {
	scheme := "ws"
	if n.config.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/", scheme, n.config.Host, n.config.Port)
}

// Connect opens the control channel. It is idempotent: a live channel makes
// it a no-op. A successful open cancels any pending reconnect timer and
// resets the attempt counter.
func (n *Node) Connect() {
	n.mu.Lock()
	if n.connected && n.conn != nil {
		n.mu.Unlock()
		return
	}
	dial := n.dial
	n.mu.Unlock()

	headers := http.Header{}
	headers.Set("Authorization", n.config.Password)
	headers.Set("Num-Shards", strconv.Itoa(n.manager.shardCount))
	headers.Set("User-Id", n.manager.userID)
	headers.Set("Client-Name", n.manager.clientName)

	conn, err := dial(n.socketURL(), headers)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to connect to node %s: %v", n.Identifier(), err), "Lavalink")
		n.scheduleReconnect()
		return
	}

	n.mu.Lock()
	if n.reconnectTimer != nil {
		n.reconnectTimer.Stop()
		n.reconnectTimer = nil
	}
	wasReconnect := n.attempts > 0
	n.attempts = 0
	n.conn = conn
	n.connected = true
	n.mu.Unlock()

	logger.Success(fmt.Sprintf("Connected to node %s", n.Identifier()), "Lavalink")

	if n.config.ResumeKey != "" {
		n.Send(configureResumingPayload{
			Op:      "configureResuming",
			Key:     n.config.ResumeKey,
			Timeout: n.config.ResumeTimeout,
		})
	}

	n.manager.emit(Event{Type: EventNodeConnect, Node: n})

	// The remote players were likely destroyed by the drop, resync them.
	if wasReconnect {
		n.manager.restartPlayers(n)
	}

	go n.readLoop(conn)
}

// Disconnect closes the control channel. No-op when not connected.
func (n *Node) Disconnect() {
	n.mu.Lock()
	if !n.connected {
		n.mu.Unlock()
		return
	}
	if n.reconnectTimer != nil {
		n.reconnectTimer.Stop()
		n.reconnectTimer = nil
	}
	conn := n.conn
	n.conn = nil
	n.connected = false
	n.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Send serializes and writes a control payload. Writes are best-effort: a
// failure is recorded and logged, never propagated, and the caller does not
// block on delivery. Every payload is also republished as a rawData event.
func (n *Node) Send(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.setWriteErr(err)
		return
	}

	n.mu.RLock()
	conn := n.conn
	connected := n.connected
	n.mu.RUnlock()

	if !connected || conn == nil {
		n.setWriteErr(fmt.Errorf("node %s not connected", n.Identifier()))
		return
	}

	n.wmu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	n.wmu.Unlock()
	if err != nil {
		n.setWriteErr(err)
		logger.Warn(fmt.Sprintf("Write to node %s failed: %v", n.Identifier(), err), "Lavalink")
	}

	n.manager.emit(Event{Type: EventRawData, Node: n, Raw: data})
}

func (n *Node) setWriteErr(err error) {
	n.mu.Lock()
	n.lastWriteErr = err
	n.mu.Unlock()
}

// LastWriteError returns the most recent write failure, if any.
func (n *Node) LastWriteError() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lastWriteErr
}

func (n *Node) readLoop(conn wsConn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			code := -1
			if closeErr, ok := err.(*websocket.CloseError); ok {
				code = closeErr.Code
			}
			n.handleClose(code, err)
			return
		}
		n.handleMessage(message)
	}
}

// handleClose tears down the channel and schedules a reconnect unless the
// close was a normal closure.
func (n *Node) handleClose(code int, err error) {
	n.mu.Lock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	wasConnected := n.connected
	n.connected = false
	n.mu.Unlock()

	if !wasConnected {
		return
	}

	logger.Warn(fmt.Sprintf("Node %s closed (code %d): %v", n.Identifier(), code, err), "Lavalink")
	n.manager.emit(Event{Type: EventNodeDisconnect, Node: n, Code: code, Err: err})

	if code == websocket.CloseNormalClosure {
		return
	}
	n.scheduleReconnect()
}

func (n *Node) scheduleReconnect() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.reconnectTimer != nil {
		return
	}
	n.reconnectTimer = time.AfterFunc(n.config.ReconnectTimeout, n.reconnect)
}

// reconnect runs after the backoff wait. Once the attempt counter reaches the
// ceiling the node is reported dead and no further attempts are made.
func (n *Node) reconnect() {
	n.mu.Lock()
	n.reconnectTimer = nil
	if n.attempts >= n.config.ReconnectTries {
		n.mu.Unlock()
		logger.Error(fmt.Sprintf("Node %s is unreachable after %d attempts", n.Identifier(), n.config.ReconnectTries), "Lavalink")
		n.manager.emit(Event{Type: EventNodeError, Node: n, Err: ErrNodeDead})
		return
	}
	n.attempts++
	n.conn = nil
	n.mu.Unlock()

	n.manager.emit(Event{Type: EventNodeReconnect, Node: n})
	n.Connect()
}

func (n *Node) handleMessage(message []byte) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		return
	}

	switch envelope.Op {
	case "stats":
		stats := new(NodeStats)
		if err := json.Unmarshal(message, stats); err != nil {
			return
		}
		// Replaced wholesale so selector reads see a consistent snapshot.
		n.mu.Lock()
		n.stats = stats
		n.mu.Unlock()
	case "playerUpdate":
		if player := n.manager.Player(envelope.GuildID); player != nil {
			player.handlePlayerUpdate(message)
		}
	case "event":
		if player := n.manager.Player(envelope.GuildID); player != nil {
			player.handleNodeEvent(message)
		}
	}
}

// Connected reports whether the control channel is live.
func (n *Node) Connected() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.connected
}

// Stats returns the last received statistics snapshot, nil before the first
// stats message.
func (n *Node) Stats() *NodeStats {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stats
}

// Penalties is the load score used for comparison between nodes, lower is
// better. A disconnected node scores zero.
func (n *Node) Penalties() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.connected || n.stats == nil {
		return 0
	}

	penalties := n.stats.Players
	penalties += int(math.Round(math.Pow(1.05, 100*n.stats.CPU.SystemLoad)*10 - 10))
	if n.stats.FrameStats != nil {
		penalties += n.stats.FrameStats.Deficit
		penalties += n.stats.FrameStats.Nulled * 2
	}
	return penalties
}

// CPULoad is the normalized CPU utilization the node selector sorts by,
// zero when no CPU statistics have been received.
func (n *Node) CPULoad() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.stats == nil || n.stats.CPU.Cores == 0 {
		return 0
	}
	return (n.stats.CPU.SystemLoad / float64(n.stats.CPU.Cores)) * 100
}
