package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

const wsIdlePingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is sent in both directions. Clients send {"type":"move","move":"1202"};
// the server answers with "state" and "error" messages.
type wsMessage struct {
	Type  string     `json:"type"`
	Move  string     `json:"move,omitempty"`
	State *boardView `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func stateMessage(gs app.GameState) []byte {
	v := newBoardView(gs, "")
	return mustMarshal(wsMessage{Type: "state", State: &v})
}

// ws streams the game as JSON and accepts moves from the seated player.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := r.URL.Query().Get("player")
	if pid == "" {
		pid = ensurePlayerCookie(w, r)
	}
	ctx := r.Context()
	_, gs, err := h.svc.Join(ctx, id, pid)
	if err != nil {
		h.notFoundOrError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade", "game", id, zap.Error(err))
		return
	}
	defer conn.Close()

	updates, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()

	// replies go through the writer goroutine; gorilla allows one writer
	replies := make(chan []byte, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := writeWSWithHeartbeat(conn, updates, replies); err != nil {
			h.log.Debugw("websocket write", "game", id, zap.Error(err))
		}
		_ = conn.Close()
	}()
	replies <- stateMessage(*gs)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "move" {
			h.reply(replies, done, wsMessage{Type: "error", Error: "expected {\"type\":\"move\",\"move\":\"brbccrcc\"}"})
			continue
		}
		m, err := domain.ParseMove(msg.Move)
		if err == nil {
			_, err = h.svc.Play(ctx, id, pid, m)
		}
		if err != nil {
			h.reply(replies, done, wsMessage{Type: "error", Move: msg.Move, Error: playErrorMessage(err)})
		}
	}
	close(replies)
	<-done
}

func (h *handlers) reply(replies chan<- []byte, done <-chan struct{}, msg wsMessage) {
	select {
	case replies <- mustMarshal(msg):
	case <-done:
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, updates <-chan app.GameState, replies <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	write := func(b []byte) error {
		lastWrite = time.Now()
		return conn.WriteMessage(websocket.TextMessage, b)
	}
	for {
		select {
		case gs, ok := <-updates:
			if !ok {
				return nil
			}
			if err := write(stateMessage(gs)); err != nil {
				return err
			}
		case b, ok := <-replies:
			if !ok {
				return nil
			}
			if err := write(b); err != nil {
				return err
			}
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := write(pingPayload); err != nil {
				return err
			}
		}
	}
}
