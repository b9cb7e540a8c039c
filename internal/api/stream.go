package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tabuvrp/internal/model"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

const (
	pingEvery = 20 * time.Second
	pongWait  = 60 * time.Second
)

// streamRun upgrades to a WebSocket and forwards run events until the run
// completes or fails. Finished runs get their final event and are closed.
func (s *Server) streamRun(w http.ResponseWriter, r *http.Request, run model.Run) {
	// Subscribe before re-reading status so a completion in between is not lost.
	ch := s.Broker.Subscribe(run.ID)
	defer s.Broker.Unsubscribe(run.ID, ch)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	if latest, err := s.Store.GetRun(r.Context(), run.TenantID, run.ID); err == nil {
		run = latest
	}
	if evt, ok := terminalEvent(run); ok {
		_ = conn.WriteJSON(evt)
		closeNormal(conn)
		return
	}
	_ = conn.WriteJSON(model.RunEvent{Type: "run.status", Data: map[string]any{"runId": run.ID, "status": run.Status}})

	// Reader: handles pongs and notices the client going away.
	gone := make(chan struct{})
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
			if evt.Type == model.EventCompleted || evt.Type == model.EventFailed {
				closeNormal(conn)
				return
			}
		}
	}
}

func terminalEvent(run model.Run) (model.RunEvent, bool) {
	switch run.Status {
	case model.RunCompleted:
		return model.RunEvent{Type: model.EventCompleted, Data: map[string]any{"runId": run.ID, "status": run.Status, "cost": run.Cost, "iterations": run.Iterations, "stopReason": run.StopReason}}, true
	case model.RunFailed:
		return model.RunEvent{Type: model.EventFailed, Data: map[string]any{"runId": run.ID, "status": run.Status, "error": run.Error}}, true
	}
	return model.RunEvent{}, false
}

func closeNormal(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"), time.Now().Add(time.Second))
}
