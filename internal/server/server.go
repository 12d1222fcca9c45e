package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/lotas/tabmon/internal/applog"
	"github.com/lotas/tabmon/internal/source"
	"github.com/lotas/tabmon/internal/types"
)

// Actions understood by the companion extension.
const (
	ActionListWindows = "list-windows"
	ActionListTabs    = "list-tabs"
	ActionActivate    = "activate"
	ActionClose       = "close"
)

// IncomingMsg is a message from the extension to tabmon.
type IncomingMsg struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Error   string          `json:"error,omitempty"`
	Windows json.RawMessage `json:"windows,omitempty"`
	Tabs    json.RawMessage `json:"tabs,omitempty"`
	Agent   string          `json:"agent,omitempty"` // sent with "hello"
}

// OutgoingMsg is a command from tabmon to the extension.
type OutgoingMsg struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	TabIDs   []int  `json:"tabIds,omitempty"`
	TabID    int    `json:"tabId,omitempty"`
	Populate bool   `json:"populate,omitempty"`
}

var errDisconnected = errors.New("extension disconnected")

// Server manages the WebSocket connection to the extension and turns it
// into a request/response host.
type Server struct {
	port    int
	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	notify  chan struct{} // closed on the next connect
	pending map[string]chan IncomingMsg
}

// New creates a new Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port:    port,
		notify:  make(chan struct{}),
		pending: make(map[string]chan IncomingMsg),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Name identifies the host in logs and the status bar.
func (s *Server) Name() string {
	return "bridge"
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// WaitConnected blocks until an extension connects or ctx ends.
func (s *Server) WaitConnected(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	ch := s.notify
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send sends a command to the connected extension.
func (s *Server) Send(msg OutgoingMsg) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("send %s: no extension connected: %w", msg.Action, source.ErrAPIUnavailable)
	}

	applog.Info("ws.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Call sends msg and waits for the reply carrying the same ID. A reply with
// ok=false becomes a *source.APIError.
func (s *Server) Call(ctx context.Context, msg OutgoingMsg) (IncomingMsg, error) {
	msg.ID = uuid.New().String()
	reply := make(chan IncomingMsg, 1)

	s.mu.Lock()
	s.pending[msg.ID] = reply
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, msg.ID)
		s.mu.Unlock()
	}()

	if err := s.Send(msg); err != nil {
		return IncomingMsg{}, err
	}

	select {
	case in := <-reply:
		if in.OK == nil || !*in.OK {
			return in, &source.APIError{Op: msg.Action, Message: in.Error}
		}
		return in, nil
	case <-ctx.Done():
		return IncomingMsg{}, ctx.Err()
	}
}

// ListWindows asks the extension for every window.
func (s *Server) ListWindows(ctx context.Context, includeTabs bool) ([]types.RawWindow, error) {
	in, err := s.Call(ctx, OutgoingMsg{Action: ActionListWindows, Populate: includeTabs})
	if err != nil {
		return nil, err
	}
	return ParseWindows(in.Windows)
}

// ListTabs asks the extension for every tab.
func (s *Server) ListTabs(ctx context.Context) ([]types.RawTab, error) {
	in, err := s.Call(ctx, OutgoingMsg{Action: ActionListTabs})
	if err != nil {
		return nil, err
	}
	return ParseTabs(in.Tabs)
}

// Activate focuses a tab.
func (s *Server) Activate(ctx context.Context, id int) error {
	_, err := s.Call(ctx, OutgoingMsg{Action: ActionActivate, TabID: id})
	return err
}

// Close closes a tab.
func (s *Server) Close(ctx context.Context, id int) error {
	return s.CloseMany(ctx, []int{id})
}

// CloseMany closes several tabs in one command.
func (s *Server) CloseMany(ctx context.Context, ids []int) error {
	_, err := s.Call(ctx, OutgoingMsg{Action: ActionClose, TabIDs: ids})
	return err
}

// deliver routes a reply to its waiting caller. Replies nobody waits for
// (the caller already timed out) are dropped.
func (s *Server) deliver(msg IncomingMsg) {
	s.mu.Lock()
	ch, ok := s.pending[msg.ID]
	if ok {
		delete(s.pending, msg.ID)
	}
	s.mu.Unlock()
	if !ok {
		applog.Info("ws.reply.dropped", "id", msg.ID)
		return
	}
	ch <- msg
}

// failPending answers every outstanding call with err.
func (s *Server) failPending(err error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]chan IncomingMsg)
	s.mu.Unlock()

	ok := false
	for id, ch := range pending {
		ch <- IncomingMsg{Type: "reply", ID: id, OK: &ok, Error: err.Error()}
	}
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // 16 MB, populated window lists can be large

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		close(s.notify)
		s.notify = make(chan struct{})
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			current := s.conn == conn
			if current {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			if current {
				s.failPending(errDisconnected)
			}
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			applog.Info("ws.recv", "type", msg.Type, "id", msg.ID)
			switch {
			case msg.Type == "hello":
				applog.Info("ws.hello", "agent", msg.Agent)
			case msg.ID != "":
				s.deliver(msg)
			}
		}
	})
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("server.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
