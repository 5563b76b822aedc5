package game

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientConn is one socket. Its id is the connection identity used by rooms.
type ClientConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func newClientConn(id string, ws *websocket.Conn, buffer int) *ClientConn {
	return &ClientConn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *ClientConn) ID() string { return c.id }

// Send ставит e в очередь писателя. Медленный клиент теряет сообщения,
// комната из-за него не блокируется.
func (c *ClientConn) Send(e Event) bool {
	b, err := EncodeEvent(e)
	if err != nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// handleWS: апгрейд до websocket, дальше читаем кадры и отдаём их
// координатору, пока одна из сторон не отвалится.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade")
		return
	}

	cc := newClientConn(uuid.NewString(), ws, s.cfg.SendBuffer)
	log := s.log.With().Str("conn", cc.ID()).Logger()
	log.Debug().Str("remote", r.RemoteAddr).Msg("connected")

	go s.writeLoop(cc)

	ws.SetReadLimit(s.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.ReadWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.ReadWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info().Err(fmt.Errorf("%w: %v", ErrConnectionLost, err)).Msg("read")
			}
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(s.cfg.ReadWait))

		msg, err := DecodeClientMessage(data)
		if err != nil {
			cc.Send(GuessError{Error: err.Error()})
			continue
		}
		s.coord.Handle(cc, msg)
	}

	s.coord.Disconnect(cc)
	cc.Close()
	log.Debug().Msg("disconnected")
}

func (s *Server) writeLoop(cc *ClientConn) {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cc.done:
			return
		case msg := <-cc.send:
			if err := s.write(cc, websocket.TextMessage, msg); err != nil {
				cc.Close()
				return
			}
		case <-ticker.C:
			if err := s.write(cc, websocket.PingMessage, nil); err != nil {
				cc.Close()
				return
			}
		}
	}
}

func (s *Server) write(cc *ClientConn, kind int, data []byte) error {
	_ = cc.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
	err := cc.ws.WriteMessage(kind, data)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.log.Debug().Err(err).Str("conn", cc.ID()).Msg("write")
	}
	return err
}
