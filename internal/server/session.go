package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/wireloop/internal/engine"
	"github.com/verte-zerg/wireloop/internal/follow"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/perf"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4 << 10
	inboxSize      = 64
	saveTimeout    = 5 * time.Second
)

// session is one connected player. All engine access happens on the
// goroutine running run.
type session struct {
	id       string
	conn     *websocket.Conn
	catalog  *levels.Catalog
	store    AttemptStore
	logger   *log.Logger
	now      func() time.Time
	tick     time.Duration
	engine   *engine.Engine
	monitor  *perf.Monitor
	recorder engine.Recorder

	lastState follow.State
	idle      bool
}

func newSession(id string, conn *websocket.Conn, s *Server) *session {
	monitor := perf.NewMonitor()
	return &session{
		id:      id,
		conn:    conn,
		catalog: s.catalog,
		store:   s.store,
		logger:  s.logger,
		now:     s.now,
		tick:    s.tick,
		monitor: monitor,
		engine: engine.New(s.catalog, engine.Options{
			Logger:      s.logger,
			Performance: monitor,
			Messages:    follow.NewMessages(nil),
		}),
	}
}

// run serves the connection until the client goes away or ctx ends.
func (s *session) run(ctx context.Context) error {
	inbox := make(chan clientMessage, inboxSize)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go s.readLoop(inbox, readErr, done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeWith(websocket.CloseGoingAway, "server shutting down")
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case msg := <-inbox:
			if err := s.handle(msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.frame(ctx); err != nil {
				return err
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

func (s *session) readLoop(inbox chan<- clientMessage, readErr chan<- error, done <-chan struct{}) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debugf("server: session %s sent malformed message: %v", s.id, err)
			msg = clientMessage{Type: ""}
		}
		select {
		case inbox <- msg:
		case <-done:
			return
		}
	}
}

func (s *session) handle(msg clientMessage) error {
	now := s.now()
	switch msg.Type {
	case msgHello:
		s.engine.SetDevice(engine.StaticDevice{Touch: msg.Touch})
		if msg.FPS > 0 {
			s.engine.SetPerformance(perf.Fixed(msg.FPS))
		}
		s.logger.Debugf("server: session %s hello touch=%t fps=%.0f", s.id, msg.Touch, msg.FPS)
	case msgFPS:
		if msg.Value <= 0 {
			return s.sendError("fps must be positive")
		}
		s.engine.SetPerformance(perf.Fixed(msg.Value))
	case msgStart:
		lvl := s.engine.StartLevel(msg.Level)
		s.reset()
		return s.send(levelMessage{
			Type:        msgLevel,
			Level:       lvl.ID,
			Name:        lvl.Name,
			Difficulty:  string(lvl.Difficulty),
			StartRadius: lvl.Rules.StartRadius,
			Path:        toPoints(s.engine.Path()),
		})
	case msgReset:
		s.engine.ResetLevel()
		s.reset()
	case msgMenu:
		s.engine.GoToMenu()
		s.reset()
	case msgDown:
		s.engine.PointerDown(now, pointerEvent(msg))
	case msgMove:
		s.engine.PointerMove(now, pointerEvent(msg))
	case msgUp:
		s.engine.PointerUp(now, pointerEvent(msg))
	default:
		return s.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
	return nil
}

func (s *session) reset() {
	s.recorder.Reset()
	s.monitor.Reset()
	s.idle = false
}

// frame advances the engine and pushes the result. Frames stop once an
// attempt has ended until the client acts again.
func (s *session) frame(ctx context.Context) error {
	if s.engine.InMenu() {
		return nil
	}
	now := s.now()
	s.monitor.Tick(now)
	f := s.engine.Update(now)
	if a, ok := s.recorder.Record(s.engine.Level(), s.engine.Device(), f); ok {
		s.save(ctx, a)
	}
	if f.State.Terminal() && len(f.Events) == 0 && s.lastState == f.State {
		if s.idle {
			return nil
		}
		s.idle = true
	} else {
		s.idle = false
	}
	s.lastState = f.State
	return s.send(newFrameMessage(f))
}

func (s *session) save(ctx context.Context, a model.Attempt) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	id, err := s.store.InsertAttempt(ctx, a)
	if err != nil {
		s.logger.Errorf("server: session %s failed to save attempt: %v", s.id, err)
		return
	}
	s.logger.Infof("server: session %s saved attempt %s (%s, level %d)", s.id, id, a.Outcome, a.Level)
}

func (s *session) send(v any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (s *session) sendError(text string) error {
	return s.send(errorMessage{Type: msgError, Error: text})
}

func (s *session) closeWith(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.logger.Debugf("server: session %s close: %v", s.id, err)
	}
}

func pointerEvent(msg clientMessage) engine.PointerEvent {
	return engine.PointerEvent{X: msg.X, Y: msg.Y, PointerID: msg.PointerID, Primary: msg.Primary}
}
