package mcp12306

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drfccv/mcp-server-12306/config"
	"github.com/drfccv/mcp-server-12306/railway"
	"github.com/drfccv/mcp-server-12306/station"
	"github.com/drfccv/mcp-server-12306/transfer"
)

// Version is reported in initialize responses and on the info endpoint.
const Version = "1.2.0"

// Server holds the shared state behind every MCP tool: the station index,
// the 12306 client, the transfer engine and the session table.
type Server struct {
	stations *station.Provider
	rail     *railway.Client
	tickets  railway.TicketSource
	engine   *transfer.Engine
	sessions *sessionStore
}

// NewServer wires the tool backends together from the loaded configuration.
func NewServer(stations *station.Provider) *Server {
	rail := railway.NewClient(config.Config.Railway)
	tickets := railway.NewCachedTicketSource(rail, config.Config.Cache)
	return &Server{
		stations: stations,
		rail:     rail,
		tickets:  tickets,
		engine: transfer.NewEngine(
			stations,
			tickets,
			config.Config.Transfer.HubStations,
			config.Config.Transfer.ConnectionBufferMinutes,
			config.Config.Transfer.MaxConcurrency,
		),
		sessions: newSessionStore(),
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "mcp-server-12306",
		"version":  Version,
		"protocol": protocolVersion,
		"endpoints": map[string]string{
			"mcp":     "/mcp",
			"health":  "/health",
			"tools":   "/schema/tools",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := s.stations.Current(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":   status,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleToolSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toolsListResult{Tools: mcpTools})
}

// Router builds the HTTP routing table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/schema/tools", s.handleToolSchema).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/mcp", s.HandleMCP).Methods(
		http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions)
	return r
}

// StartServer runs the HTTP transport until the context is cancelled.
func (s *Server) StartServer(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", config.Config.Server.Host, config.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		// SSE streams stay open indefinitely, so no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP server listening on %s (tools: %v)", addr, toolNames())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

// HandleGracefulShutdown cancels the returned context on SIGINT or SIGTERM.
func HandleGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("shutdown signal received")
		cancel()
	}()
	return ctx, cancel
}
