// Package server exposes the game over websockets: each connection gets its
// own engine driven by a server-side ticker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
)

const (
	// DefaultTickRate is the frame rate of each session in Hz.
	DefaultTickRate = 60
	maxTickRate     = 240
	shutdownTimeout = 5 * time.Second
)

// AttemptStore persists finished attempts.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, a model.Attempt) (string, error)
}

// Options configures a Server.
type Options struct {
	Catalog *levels.Catalog
	Store   AttemptStore
	Logger  *log.Logger
	// TickRate is clamped to 1..240; zero picks DefaultTickRate.
	TickRate int
	// AllowedOrigins lists accepted Origin headers. Empty accepts any.
	AllowedOrigins []string
	Now            func() time.Time
}

// Server hosts websocket sessions.
type Server struct {
	catalog  *levels.Catalog
	store    AttemptStore
	logger   *log.Logger
	tick     time.Duration
	origins  map[string]bool
	now      func() time.Time
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	// mu orders session registration against Close.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New returns a Server ready to serve Handler.
func New(opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = levels.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rate := opts.TickRate
	switch {
	case rate <= 0:
		rate = DefaultTickRate
	case rate > maxTickRate:
		rate = maxTickRate
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		catalog: opts.Catalog,
		store:   opts.Store,
		logger:  opts.Logger,
		tick:    time.Second / time.Duration(rate),
		now:     opts.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
	if len(opts.AllowedOrigins) > 0 {
		s.origins = make(map[string]bool, len(opts.AllowedOrigins))
		for _, o := range opts.AllowedOrigins {
			s.origins[strings.TrimRight(o, "/")] = true
		}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler routes /ws and /levels.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/levels", s.handleLevels)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then closes every
// session and waits for them to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Infof("server: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close ends all sessions and waits for them.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// join registers a session unless the server is closing.
func (s *Server) join() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.origins == nil {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return s.origins[strings.TrimRight(origin, "/")]
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.join() {
		http.Error(w, "server closing", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("server: upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer func() {
		_ = conn.Close() // best-effort
	}()

	id := uuid.NewString()
	sess := newSession(id, conn, s)
	s.logger.Infof("server: session %s connected from %s", id, r.RemoteAddr)
	if err := sess.send(welcomeMessage{Type: msgWelcome, ID: id, Levels: s.levelInfos(false)}); err != nil {
		s.logger.Warnf("server: session %s: %v", id, err)
		return
	}
	if err := sess.run(s.ctx); err != nil {
		s.logger.Warnf("server: session %s ended: %v", id, err)
		return
	}
	s.logger.Infof("server: session %s disconnected", id)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.levelInfos(true)); err != nil {
		s.logger.Warnf("server: encode levels: %v", err)
	}
}

func (s *Server) levelInfos(withPoints bool) []levelInfo {
	all := s.catalog.All()
	out := make([]levelInfo, 0, len(all))
	for _, l := range all {
		out = append(out, toLevelInfo(l, withPoints))
	}
	return out
}
