package memento

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/memento"
	"github.com/soundprediction/memento/pkg/alert"
	"github.com/soundprediction/memento/pkg/config"
	mementoLogger "github.com/soundprediction/memento/pkg/logger"
	"github.com/soundprediction/memento/pkg/server"
	"github.com/soundprediction/memento/pkg/store"
	"github.com/soundprediction/memento/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Memento HTTP server",
	Long: `Start the Memento HTTP server to provide REST API access to the knowledge graph.

The server provides endpoints for:
- Creating and deleting entities and relations
- Adding and deleting observations
- Reading, searching, and opening graph nodes
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Database flags
	serverCmd.Flags().String("db-uri", "bolt://localhost:7687", "Neo4j URI")
	serverCmd.Flags().String("db-username", "neo4j", "Neo4j username")
	serverCmd.Flags().String("db-password", "", "Neo4j password")
	serverCmd.Flags().String("db-database", "neo4j", "Neo4j database name")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}
	overrideDatabaseFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	handler := mementoLogger.NewHandler(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize error telemetry: %v\n", err)
		} else {
			defer parquetHandler.Close()
			handler = parquetHandler
		}
	}
	logger := slog.New(handler)

	ctx := context.Background()

	graphStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	graph := memento.New(ctx, graphStore, memento.WithLogger(logger))
	defer func() {
		if err := graph.Close(context.Background()); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	// Create and setup server
	srv := server.New(cfg, graph, graphStore, logger)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("Server stopped gracefully")
		return nil
	}
}

// openStore connects to Neo4j and wraps the connection with the circuit
// breaker when one is configured. Shared by the mcp and server commands.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	neo4jStore, err := store.NewNeo4jStore(
		cfg.Database.URI,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	if !cfg.CircuitBreaker.Enabled {
		return neo4jStore, nil
	}

	var alerter alert.Alerter = &alert.NoOpAlerter{}
	if cfg.Alert.Enabled {
		alerter = alert.NewEmailAlerter(cfg.Alert)
	}
	return store.NewBreakerStore(neo4jStore, cfg.CircuitBreaker, alerter, logger, "neo4j"), nil
}
