package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/wfvining/motion-ca/internal/config"
	"github.com/wfvining/motion-ca/internal/logging"
	"github.com/wfvining/motion-ca/internal/ratelimit"
	"github.com/wfvining/motion-ca/internal/store"
)

// ErrNoStore is returned by tools that need the result store when the
// server was started without one.
var ErrNoStore = errors.New("result store not configured")

// Server wraps the MCP SDK server and exposes the simulation as tools.
type Server struct {
	server       *sdk.Server
	defaults     *config.Config
	store        *store.Store
	events       *logging.EventLogger
	logger       *slog.Logger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "motionca")
	Version string // Server version

	// Defaults supplies every simulation parameter a tool call leaves unset.
	Defaults *config.Config

	// Store persists results when a call asks for it. Optional.
	Store *store.Store

	// Events receives one event per tool call. Optional.
	Events *logging.EventLogger

	// Logger receives operational output. Nil discards.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with the motion-ca tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Defaults == nil {
		return nil, fmt.Errorf("server defaults are required")
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server defaults: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		defaults:     cfg.Defaults,
		store:        cfg.Store,
		events:       cfg.Events,
		logger:       logger,
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close releases the store, if any.
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
