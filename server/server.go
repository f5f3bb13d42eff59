package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/airchains-network/wallet-viewer/balance"
	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// AccountView is the JSON form of an account
type AccountView struct {
	Index     int        `json:"index"`
	Seed      uint64     `json:"seed"`
	Address   string     `json:"address"`
	Balance   uint64     `json:"balance"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Snapshot is the state served over HTTP and pushed to websocket subscribers
type Snapshot struct {
	Accounts    []AccountView `json:"accounts"`
	Failed      int           `json:"failed"`
	RefreshedAt *time.Time    `json:"refreshed_at,omitempty"`
}

// RefreshResult is returned by POST /refresh
type RefreshResult struct {
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Cancelled bool     `json:"cancelled"`
	Error     string   `json:"error,omitempty"`
	Snapshot  Snapshot `json:"snapshot"`
}

// Server exposes the account set over HTTP and websocket
type Server struct {
	reader balance.Reader
	opts   balance.Options
	log    *logrus.Logger
	hub    *Hub

	upgrader websocket.Upgrader

	// refreshMu serializes refreshes; mu guards accounts and refreshedAt
	refreshMu   sync.Mutex
	mu          sync.RWMutex
	accounts    wallet.Set
	refreshedAt time.Time
}

// New creates a server for accounts
func New(reader balance.Reader, accounts wallet.Set, opts balance.Options, log *logrus.Logger) *Server {
	s := &Server{
		reader:   reader,
		opts:     opts,
		log:      log,
		accounts: accounts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}
	s.hub = NewHub(s.snapshotJSON, log)
	return s
}

// Snapshot returns the current state
func (s *Server) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Accounts: make([]AccountView, len(s.accounts)), Failed: s.accounts.Failed()}
	for i, acc := range s.accounts {
		view := AccountView{
			Index:   acc.Index,
			Seed:    acc.Seed,
			Address: acc.HexAddress(),
			Balance: acc.Balance,
		}
		if acc.Err != nil {
			view.Error = acc.Err.Error()
		}
		if acc.Fetched() {
			at := acc.UpdatedAt
			view.UpdatedAt = &at
		}
		snap.Accounts[i] = view
	}
	if !s.refreshedAt.IsZero() {
		at := s.refreshedAt
		snap.RefreshedAt = &at
	}
	return snap
}

func (s *Server) snapshotJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Refresh updates every balance and pushes the new snapshot to subscribers.
// Concurrent calls run one after another. A cancelled refresh is discarded.
func (s *Server) Refresh(ctx context.Context) balance.Report {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	working := s.accounts.Clone()
	s.mu.RUnlock()

	report := balance.Refresh(ctx, s.reader, working, s.opts, s.log)
	if report.Cancelled {
		return report
	}

	s.mu.Lock()
	s.accounts = working
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	msg, err := s.snapshotJSON()
	if err != nil {
		s.log.Errorf("Failed to marshal snapshot: %v", err)
		return report
	}
	s.hub.Broadcast(msg)
	return report
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("[GIN] %s - %s %s %d\n",
				param.TimeStamp.Format("2006-01-02 15:04:05"),
				param.Method,
				param.Path,
				param.StatusCode,
			)
		},
		Output: s.log.WriterLevel(logrus.DebugLevel),
	}))
	r.Use(gin.Recovery())

	r.GET("/accounts", s.handleAccounts)
	r.POST("/refresh", s.handleRefresh)
	r.GET("/ws", s.handleWebSocket)
	return r
}

func (s *Server) handleAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot())
}

func (s *Server) handleRefresh(c *gin.Context) {
	report := s.Refresh(c.Request.Context())
	result := RefreshResult{
		Updated:   report.Updated,
		Failed:    report.Failed(),
		Cancelled: report.Cancelled,
		Snapshot:  s.Snapshot(),
	}
	if err := report.Err(); err != nil {
		result.Error = err.Error()
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Errorf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	s.hub.serve(conn)
}

// Run serves on listen until ctx is done. A positive interval also refreshes
// balances periodically.
func (s *Server) Run(ctx context.Context, listen string, interval time.Duration) error {
	go s.hub.Run(ctx)
	if interval > 0 {
		go s.poll(ctx, interval)
	}

	srv := &http.Server{Addr: listen, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("Server shutdown error: %v", err)
		}
	}()

	s.log.Infof("Starting wallet server on %s", listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
