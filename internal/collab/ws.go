package collab

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsPeer is a member connected over WebSocket. gorilla допускает только одного писателя за раз.
type wsPeer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *wsPeer) Send(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := p.conn.SetWriteDeadline(deadline); err != nil {
		p.conn.Close()
		return err
	}
	if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		// после ошибки записи соединение непригодно; закрытие завершит цикл чтения в Serve
		p.conn.Close()
		return err
	}
	return nil
}

func (p *wsPeer) Close() error {
	return p.conn.Close()
}

// Upgrade switches the request to a WebSocket and relays messages for listID
// until the peer goes away. Callers must have authorized the request already.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, listID int64, logger *zap.Logger) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	Serve(r.Context(), hub, conn, listID, logger)
}

// Serve runs the read loop of one connection. Text messages are relayed
// verbatim to the other peers of the list; anything else is ignored.
func Serve(ctx context.Context, hub *Hub, conn *websocket.Conn, listID int64, logger *zap.Logger) {
	peer := &wsPeer{conn: conn}
	// Таймауты http.Server не должны обрывать долгоживущее соединение
	conn.SetReadDeadline(time.Time{})
	hub.Join(listID, peer)
	logger.Info("peer joined", zap.Int64("list_id", listID), zap.Int("peers", hub.Peers(listID)))

	defer func() {
		hub.Leave(listID, peer)
		conn.Close()
		logger.Info("peer left", zap.Int64("list_id", listID), zap.Int("peers", hub.Peers(listID)))
	}()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, context.Canceled) &&
				websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read failed", zap.Int64("list_id", listID), zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		hub.Broadcast(ctx, listID, peer, msg)
	}
}
