// Package mcp provides an MCP (Model Context Protocol) server that drives
// contagion simulations over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/models"
	"github.com/nvandessel/contagion/internal/ratelimit"
	"github.com/nvandessel/contagion/internal/simulation"
)

// Server wraps the MCP SDK server and holds the live simulation run.
type Server struct {
	server *sdk.Server
	cfg    Config

	mu      sync.Mutex
	session *simulation.Session

	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "contagion")
	Version string // Server version

	// Defaults are the parameters for contagion_generate fields the
	// caller leaves unset.
	Defaults models.Params

	// Seed, when set, is used for runs that do not pass their own.
	Seed *uint64

	MaxDays int // contagion_run bound when the caller gives none
	Workers int // intra-day parallelism

	// AuditDir, when non-empty, receives audit.jsonl.
	AuditDir string

	Logger      *slog.Logger
	Transitions *logging.TransitionLogger
}

// NewServer creates a new MCP server with contagion tools.
func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default parameters: %w", err)
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = constants.DefaultMaxDays
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		cfg:          *cfg,
		toolLimiters: ratelimit.NewToolLimiters(),
		logger:       logger,
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	s.logger.Info("mcp server started", "name", s.cfg.Name, "version", s.cfg.Version)
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Close releases the audit log.
func (s *Server) Close() error {
	return s.auditLogger.Close()
}

// current returns the live session or an error asking for
// contagion_generate first.
func (s *Server) current() (*simulation.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, fmt.Errorf("no simulation in progress; call contagion_generate first")
	}
	return s.session, nil
}

func (s *Server) replace(sess *simulation.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}
