package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/adapter/ai"
	"github.com/seu-repo/songorder/internal/adapter/cache"
	"github.com/seu-repo/songorder/internal/adapter/queue"
	"github.com/seu-repo/songorder/internal/adapter/storage/memory"
	"github.com/seu-repo/songorder/internal/service/conversation"
	"github.com/seu-repo/songorder/internal/service/slotfill"
	"github.com/seu-repo/songorder/pkg/config"
)

var (
	serverURL  = flag.String("server", "", "Chat WebSocket URL (e.g. ws://localhost:8080/ws/chat); empty runs in-process")
	token      = flag.String("token", "", "Bearer token for a guarded server")
	configPath = flag.String("config", "", "Config file for in-process mode")
	offline    = flag.Bool("offline", false, "Use the keyword oracle instead of a language model")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var backend Backend
	if *serverURL != "" {
		backend = newRemoteBackend(*serverURL, *token, logger)
	} else {
		local, cleanup, err := newLocal(ctx, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		backend = local
	}
	defer backend.Close()

	sim := NewSimulator(backend, os.Stdout, logger)
	if err := sim.Run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Simulator stopped: %v\n", err)
		os.Exit(1)
	}
}

// newLocal wires the conversation service with in-memory adapters.
func newLocal(ctx context.Context, logger *zap.Logger) (*localBackend, func(), error) {
	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		return nil, nil, err
	}
	if *offline {
		cfg.Oracle.Provider = "offline"
	}

	oracle, err := ai.NewOracle(ctx, cfg.Oracle, cfg.CircuitBreaker, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (use -offline to run without a model)", err)
	}
	engine := slotfill.NewEngine(oracle, slotfill.Options{
		OracleTimeout:     cfg.Oracle.Timeout,
		KnownArtists:      cfg.Dialog.KnownArtists,
		StoryQualityCheck: cfg.Dialog.StoryQualityCheck,
	}, logger)

	sessions := cache.NewLocalCache(time.Minute, logger)
	service := conversation.NewService(
		engine,
		cache.NewConversationStore(sessions, cfg.Dialog.SessionTTL),
		memory.NewOrderRepository(),
		queue.NoopPublisher{},
		logger,
	)
	return newLocalBackend(service), func() { sessions.Close() }, nil
}
