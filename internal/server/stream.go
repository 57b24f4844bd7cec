package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/grovetools/searchcore/errors"
)

const (
	watchBuffer = 64
	writeWait   = 10 * time.Second
	pingPeriod  = 30 * time.Second
)

// handleStream provides Server-Sent Events for store updates. The first event
// carries the current snapshot.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	st := s.app.Store()
	ch := st.Watch(watchBuffer)
	defer st.Unwatch(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected")

	initial := s.view(s.app.Snapshot())
	if data, err := json.Marshal(updateView{UpdateType: "initial", State: &initial}); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(s.convertUpdate(update))
			if err != nil {
				s.logger.WithError(err).Error("Failed to marshal update")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// wsMessage is sent by WebSocket clients.
type wsMessage struct {
	Type   string      `json:"type"` // refine, query, clear, state
	Widget string      `json:"widget,omitempty"`
	Value  interface{} `json:"value,omitempty"`
	Query  string      `json:"query,omitempty"`
}

// wsReply is written back for failed client messages.
type wsReply struct {
	UpdateType string              `json:"update_type"`
	Error      *errors.SearchError `json:"error"`
}

// handleWebSocket pushes the same updates as handleStream and accepts
// wsMessage commands. Only the writer loop writes to the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	st := s.app.Store()
	ch := st.Watch(watchBuffer)
	defer st.Unwatch(ch)
	s.logger.Debug("WebSocket client connected")

	failures := make(chan *errors.SearchError, 8)
	done := make(chan struct{})
	go s.readLoop(conn, failures, done)

	initial := s.view(s.app.Snapshot())
	if err := s.writeWS(conn, updateView{UpdateType: "initial", State: &initial}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		var err error
		select {
		case <-done:
			s.logger.Debug("WebSocket client disconnected")
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			err = s.writeWS(conn, s.convertUpdate(update))
		case se := <-failures:
			err = s.writeWS(conn, wsReply{UpdateType: "error", Error: se})
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			s.logger.WithError(err).Debug("WebSocket write failed")
			return
		}
	}
}

func (s *Server) writeWS(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

func (s *Server) readLoop(conn *websocket.Conn, failures chan<- *errors.SearchError, done chan<- struct{}) {
	defer close(done)
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if _, ok := err.(*websocket.CloseError); !ok {
				s.logger.WithError(err).Debug("WebSocket read failed")
			}
			return
		}
		if err := s.apply(msg); err != nil {
			se, ok := err.(*errors.SearchError)
			if !ok {
				se = errors.Wrap(err, errors.ErrCodeInternal, "command failed")
			}
			select {
			case failures <- se:
			default:
			}
		}
	}
}

func (s *Server) apply(msg wsMessage) error {
	switch msg.Type {
	case "refine":
		return s.app.Refine(msg.Widget, msg.Value)
	case "query":
		return s.app.Query(msg.Query)
	case "clear":
		s.app.ClearRefinements(false)
		return nil
	case "state":
		data, err := json.Marshal(msg.Value)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid state")
		}
		var next map[string]interface{}
		if err := json.Unmarshal(data, &next); err != nil || next == nil {
			return errors.New(errors.ErrCodeInvalidInput, "state must be a JSON object")
		}
		s.app.SetState(next)
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown message type '%s'", msg.Type))
}
