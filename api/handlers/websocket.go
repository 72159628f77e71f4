package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/models"
)

// LifecyclePushInterval is how often an open socket receives a fresh
// lifecycle view. It matches the countdown's minute resolution.
var LifecyclePushInterval = 60 * time.Second

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 90 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the socket is read-only public data
	CheckOrigin: func(r *http.Request) bool { return true },
}

type lifecycleMessage struct {
	Type      string               `json:"type"`
	CaseID    string               `json:"caseId"`
	Lifecycle models.LifecycleView `json:"lifecycle"`
}

// LifecycleSocketHandler pushes the case's lifecycle view on connect and then
// every LifecyclePushInterval until the client goes away.
func (c Case) LifecycleSocketHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	found, ok := c.loadCase(w, r)
	if !ok {
		return
	}
	// fail before the upgrade while a plain HTTP error is still possible
	if _, err := buildLifecycleView(c.engine(), *found, role, c.now()); err != nil {
		config.ErrorStatus("failed to classify case", lifecycleErrorStatus(err), w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "caseId", found.CaseID, "error", err)
		return
	}
	defer conn.Close()

	push := func() error {
		view, err := buildLifecycleView(c.engine(), *found, role, c.now())
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(lifecycleMessage{Type: "lifecycle", CaseID: found.CaseID, Lifecycle: view})
	}

	done := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					zap.S().Debugw("lifecycle socket read error", "caseId", found.CaseID, "error", err)
				}
				return
			}
		}
	}()

	if err := push(); err != nil {
		zap.S().Debugw("lifecycle socket write failed", "caseId", found.CaseID, "error", err)
		return
	}

	ticker := time.NewTicker(LifecyclePushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := push(); err != nil {
				zap.S().Debugw("lifecycle socket write failed", "caseId", found.CaseID, "error", err)
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
