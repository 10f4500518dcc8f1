// Package server orchestrates all components: tool registry, generation
// client, orchestrator, COMMS dispatcher and the HTTP surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	comms "github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/morezero/salaatflow-assistant/internal/config"
	"github.com/morezero/salaatflow-assistant/pkg/commsutil"
	"github.com/morezero/salaatflow-assistant/pkg/dispatcher"
	"github.com/morezero/salaatflow-assistant/pkg/events"
	"github.com/morezero/salaatflow-assistant/pkg/observability"
)

const logPrefix = "server:server"

const shutdownTimeout = 15 * time.Second

// Server is the assistant's HTTP surface.
type Server struct {
	cfg        *config.Config
	chat       dispatcher.ChatHandler
	gen        dispatcher.HealthChecker
	tools      dispatcher.ToolCatalog
	httpServer *http.Server
}

// New returns a Server answering chat with chat, health with gen and the
// tool catalog with tools.
func New(cfg *config.Config, chat dispatcher.ChatHandler, gen dispatcher.HealthChecker, tools dispatcher.ToolCatalog) *Server {
	return &Server{cfg: cfg, chat: chat, gen: gen, tools: tools}
}

// Run loads configuration, starts the server, blocks until a shutdown
// signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	logging, err := observability.Setup(cfg.Logging())
	if err != nil {
		return fmt.Errorf("%s - failed to set up logging: %w", logPrefix, err)
	}
	slog.SetDefault(logging.Logger)
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Serve(ctx, cfg)
}

// Serve runs the assistant with cfg until ctx is done.
func Serve(ctx context.Context, cfg *config.Config) error {
	slog.Info(fmt.Sprintf("%s - Starting %s", logPrefix, cfg.COMMSName))

	// Step 1: optional COMMS connection for events and the request/reply surface
	var nc *comms.Conn
	var publisher events.EventPublisher = &events.NoOpPublisher{}
	if cfg.COMMSURL != "" {
		conn, err := commsutil.Connect(cfg.Comms())
		if err != nil {
			return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
		}
		nc = conn
		defer nc.Drain()
		publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{EventSubject: cfg.EventSubject})
	} else {
		slog.Info(fmt.Sprintf("%s - COMMS_URL not set; chat events and the COMMS surface are disabled", logPrefix))
	}

	// Step 2: registry, generation client, orchestrator
	comp, err := BuildComponents(ctx, cfg, publisher)
	if err != nil {
		return err
	}
	s := New(cfg, comp.Orchestrator, comp.Generator, comp.Registry)

	// Step 3: COMMS dispatcher
	if nc != nil {
		disp := dispatcher.NewDispatcher(comp.Orchestrator, comp.Generator, comp.Registry)
		subject := cfg.AssistantSubject
		if subject == "" {
			subject = commsutil.BuildServiceSubject("salaatflow", "assistant", 1)
		}
		sub, err := disp.Subscribe(ctx, nc, subject, cfg.RequestTimeout)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	// Step 4: HTTP surface
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s - HTTP server error: %w", logPrefix, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info(fmt.Sprintf("%s - Shutting down", logPrefix))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	slog.Info(fmt.Sprintf("%s - Assistant is ready", logPrefix))
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}
