// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/seega/engine"
	"github.com/jason-s-yu/seega/service/internal/game"
	"github.com/jason-s-yu/seega/service/internal/mom"
	"github.com/jason-s-yu/seega/service/internal/protocol"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 8 << 10
)

// ServeWS bridges one browser client to the broker. The client is seated
// under the name query parameter; its frames go to the server queue and it
// receives both topics plus its private queue.
func (a *API) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	connID := uuid.New()
	if !a.claim(name, connID) {
		writeError(w, http.StatusConflict, "name is already connected")
		return
	}
	defer a.release(name, connID)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: a.origins})
	if err != nil {
		a.log.WithError(err).Warn("websocket accept")
		return
	}
	conn.SetReadLimit(readLimit)
	entry := a.log.WithFields(log.Fields{"conn": connID, "player": name})
	entry.Info("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sources, err := a.subscribe(ctx, name)
	if err != nil {
		entry.WithError(err).Error("subscribe")
		conn.Close(websocket.StatusInternalError, "broker unavailable")
		a.leave(name, entry)
		return
	}

	hello, _ := protocol.Encode(game.Connect{PlayerName: name})
	if err := a.broker.Send(ctx, mom.ServerQueue, hello); err != nil {
		entry.WithError(err).Error("forward connect")
		conn.Close(websocket.StatusInternalError, "broker unavailable")
		a.leave(name, entry)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.readPump(gctx, conn, name, entry) })
	g.Go(func() error { return writePump(gctx, conn, sources) })
	err = g.Wait()

	a.leave(name, entry)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		entry.Info("websocket closed")
	default:
		if err != nil && !errors.Is(err, context.Canceled) {
			entry.WithError(err).Warn("websocket ended")
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// subscribe opens every stream the client reads from.
func (a *API) subscribe(ctx context.Context, name string) ([]<-chan []byte, error) {
	states, err := a.broker.Subscribe(ctx, mom.GameStateTopic)
	if err != nil {
		return nil, err
	}
	chat, err := a.broker.Subscribe(ctx, mom.ChatTopic)
	if err != nil {
		return nil, err
	}
	queue := mom.UserQueue(name)
	if err := a.broker.DeclareQueue(ctx, queue); err != nil {
		return nil, err
	}
	direct, err := a.broker.Consume(ctx, queue)
	if err != nil {
		return nil, err
	}
	return []<-chan []byte{states, chat, direct}, nil
}

// claim reserves name for one live connection.
func (a *API) claim(name string, conn uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.live[name]; taken {
		return false
	}
	a.live[name] = conn
	return true
}

func (a *API) release(name string, conn uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live[name] == conn {
		delete(a.live, name)
	}
}

// readPump forwards client frames to the server queue. Identity fields are
// filled from the connection so a client cannot speak for someone else.
func (a *API) readPump(ctx context.Context, conn *websocket.Conn, name string, entry *log.Entry) error {
	for {
		_, body, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var env protocol.Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			a.reply(ctx, name, "malformed", err.Error())
			continue
		}
		switch env.Type {
		case protocol.TypeConnect:
			env.PlayerName = name
		case protocol.TypeChat:
			env.Sender = name
		case protocol.TypeGameAction, protocol.TypeSurrender:
			slot := a.match.SlotOf(name)
			if !slot.Valid() {
				a.reply(ctx, name, game.Reason(game.ErrSeatVacant), name+" holds no seat")
				continue
			}
			env.PlayerID = slot.String()
		case protocol.TypeDisconnect:
			// Only the gateway vacates seats, when the socket closes.
			entry.Debug("ignoring client disconnect_player")
			continue
		}
		out, err := json.Marshal(env)
		if err != nil {
			return err
		}
		if err := a.broker.Send(ctx, mom.ServerQueue, out); err != nil {
			return err
		}
	}
}

func (a *API) reply(ctx context.Context, name, reason, detail string) {
	body, err := protocol.EncodeRejected(reason, detail)
	if err != nil {
		return
	}
	_ = a.broker.Send(ctx, mom.UserQueue(name), body)
}

// writePump relays broker messages to the client and pings it when idle.
func writePump(ctx context.Context, conn *websocket.Conn, sources []<-chan []byte) error {
	merged := make(chan []byte)
	for _, src := range sources {
		go func(src <-chan []byte) {
			for body := range src {
				select {
				case merged <- body:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body := <-merged:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, body)
			cancel()
			if err != nil {
				return err
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

// leave tells the server that name's seat is free. A client that never got
// a seat has its private queue removed here instead.
func (a *API) leave(name string, entry *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	slot := a.match.SlotOf(name)
	if slot == engine.SlotNone {
		if err := a.broker.DeleteQueue(ctx, mom.UserQueue(name)); err != nil {
			entry.WithError(err).Warn("delete user queue")
		}
		return
	}
	body, err := protocol.Encode(game.Disconnect{Slot: slot})
	if err != nil {
		entry.WithError(err).Error("encode disconnect")
		return
	}
	if err := a.broker.Send(ctx, mom.ServerQueue, body); err != nil {
		entry.WithError(err).Warn("forward disconnect")
	}
}
