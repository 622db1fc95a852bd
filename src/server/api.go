package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"secmaster/src/logger"
	"secmaster/src/models"
	"secmaster/src/utils"

	"github.com/gin-gonic/gin"
)

// Reader is the read side of the securities master used by the API.
type Reader interface {
	GetSymbol(ctx context.Context, id string) (*models.MSymbol, error)
	SymbolClassification(ctx context.Context, id string) (models.MClassification, bool, error)
	LoadBars(ctx context.Context, symbol string) ([]models.MBar, error)
}

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

// APIServer serves the catalog and bars over REST and streams updater
// progress to websocket clients.
type APIServer struct {
	Config models.MServerConfig
	Store  Reader
	Logger *logger.Logger
	engine *gin.Engine

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan models.MProgress
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}

	stateMutex sync.RWMutex
	recent     *utils.RingBuffer[models.MProgress]
	lastRun    *models.MRunSummary
}

// ReplayEvents is the number of recent progress events sent to a new client.
const ReplayEvents = 20

// -----------------------------------------------------------------------------

func NewAPIServer(cfg models.MServerConfig, logLevel string, store Reader, log *logger.Logger) *APIServer {
	if !strings.EqualFold(logLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:     cfg,
		Store:      store,
		Logger:     log,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.MProgress, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		recent:     utils.NewRingBuffer[models.MProgress](ReplayEvents),
	}

	// Symbol ids may contain '/', sent escaped as %2F.
	s.engine.UseRawPath = true
	s.engine.UnescapePathValues = true

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/symbols/:id", s.getSymbol)
	api.GET("/symbols/:id/classification", s.getClassification)
	api.GET("/symbols/:id/bars", s.getBars)
	api.GET("/symbols/:id/performance", s.getPerformance)
	api.GET("/runs/latest", s.getLatestRun)

	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler returns the HTTP handler of the server.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.RunHub(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Logger.Info("Stopping server")
		return srv.Shutdown(shutdownCtx)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
