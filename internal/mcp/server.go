// Package mcp provides an MCP (Model Context Protocol) server for cogsim.
// It exposes a live model over stdio: clients step it tick by tick, inspect
// the blackboard, and reset it.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/cogsim/internal/model"
	"github.com/nvandessel/cogsim/internal/simulation"
)

// Server wraps the MCP SDK server around a live model driver.
type Server struct {
	server *sdk.Server
	logger *slog.Logger

	mu     sync.Mutex
	driver model.Driver
	closer func() // non-nil for the concurrent driver
	tick   int
}

// Config holds server configuration.
type Config struct {
	Name     string // Server name (e.g., "cogsim")
	Version  string // Server version
	Scenario *simulation.Scenario
	Logger   *slog.Logger
}

// NewServer creates a new MCP server hosting the scenario's model. The
// scenario supplies the module roster and driver choice; its ticks are
// ignored, since clients drive the model themselves.
func NewServer(cfg *Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	driver, closer, err := buildDriver(cfg.Scenario, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build driver: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server: mcpServer,
		logger: logger,
		driver: driver,
		closer: closer,
	}
	s.registerTools()

	return s, nil
}

// buildDriver constructs the driver the scenario asks for.
func buildDriver(s *simulation.Scenario, logger *slog.Logger) (model.Driver, func(), error) {
	factories, err := s.Factories()
	if err != nil {
		return nil, nil, err
	}

	opts := []model.Option{model.WithLogger(logger)}
	if s.Workers > 0 {
		opts = append(opts, model.WithWorkers(s.Workers))
	}

	if s.Sequential {
		d, err := model.NewSequential(factories, opts...)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	}

	d, err := model.NewConcurrent(factories, opts...)
	if err != nil {
		return nil, nil, err
	}
	return d, d.Close, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	// Run server (blocks)
	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.Close()

	return err
}

// Close releases the driver's worker pool, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer != nil {
		s.closer()
		s.closer = nil
	}
	return nil
}
