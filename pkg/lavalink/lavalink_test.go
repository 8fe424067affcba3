package lavalink

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// fakeConn is an in-memory stand-in for the node's websocket.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte

	incoming  chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 16),
		done:     make(chan struct{}),
		closeErr: errors.New("connection closed"),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-f.incoming:
		return websocket.TextMessage, msg, nil
	case <-f.done:
		f.mu.Lock()
		err := f.closeErr
		f.mu.Unlock()
		return 0, nil, err
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

// closeWith fails the read loop with a websocket close error of the given
// code, as if the remote had closed the socket.
func (f *fakeConn) closeWith(code int) {
	f.mu.Lock()
	f.closeErr = &websocket.CloseError{Code: code}
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.done) })
}

// payloads decodes everything written to the socket into generic maps.
func (f *fakeConn) payloads() []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]map[string]interface{}, 0, len(f.written))
	for _, data := range f.written {
		m := map[string]interface{}{}
		if err := json.Unmarshal(data, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// ops lists the op field of every written payload, in order.
func (f *fakeConn) ops() []string {
	var ops []string
	for _, p := range f.payloads() {
		if op, ok := p["op"].(string); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// fakeDialer hands out fakeConns and counts dial attempts.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	fail  bool
	dials int
}

func (d *fakeDialer) dial(url string, header http.Header) (wsConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.fail {
		return nil, errors.New("connection refused")
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) setFail(fail bool) {
	d.mu.Lock()
	d.fail = fail
	d.mu.Unlock()
}

func (d *fakeDialer) lastConn() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// voiceCall records one join-voice-channel intent.
type voiceCall struct {
	guildID   string
	channelID string
	mute      bool
	deaf      bool
}

// voiceRecorder captures gateway voice intents.
type voiceRecorder struct {
	mu    sync.Mutex
	calls []voiceCall
}

func (r *voiceRecorder) send(guildID, channelID string, mute, deaf bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, voiceCall{guildID, channelID, mute, deaf})
}

func (r *voiceRecorder) all() []voiceCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]voiceCall(nil), r.calls...)
}

// staticResolver resolves every query to a fixed token.
type staticResolver struct {
	encoded string
	err     error
}

func (r *staticResolver) Resolve(query string) ([]*Track, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []*Track{{Encoded: r.encoded, Info: TrackInfo{Title: query}}}, nil
}

// eventLog captures emitted events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofType(t EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// newTestRig builds a manager with a single node on a fake transport, already
// connected and ready to host players.
func newTestRig(t *testing.T) (*Manager, *Node, *fakeDialer, *voiceRecorder, *eventLog) {
	t.Helper()

	voice := &voiceRecorder{}
	m := NewManager(ManagerOptions{
		UserID:    "100",
		SendVoice: voice.send,
		Resolver:  &staticResolver{encoded: "resolved-token"},
	})

	log := &eventLog{}
	for _, typ := range []EventType{
		EventNodeConnect, EventNodeDisconnect, EventNodeReconnect, EventNodeError,
		EventPlayerCreate, EventPlayerUpdate, EventPlayerDestroy,
		EventTrackStart, EventTrackEnd, EventTrackStuck, EventTrackError,
		EventQueueEnd, EventSocketClosed,
	} {
		m.On(typ, log.record)
	}

	node := m.AddNode(NodeConfig{
		Name:             "test",
		Host:             "localhost",
		Port:             2333,
		Password:         "secret",
		ReconnectTries:   2,
		ReconnectTimeout: 10 * time.Millisecond,
	})

	dialer := &fakeDialer{}
	node.dial = dialer.dial
	node.Connect()

	if !node.Connected() {
		t.Fatal("node did not connect through the fake dialer")
	}
	return m, node, dialer, voice, log
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func testTrack(id string) *Track {
	return &Track{
		Encoded: "token-" + id,
		Info: TrackInfo{
			Identifier: id,
			Title:      "Track " + id,
			Author:     "Author " + id,
			Length:     180000,
			URI:        "https://example.com/" + id,
		},
	}
}
