package memento

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/memento"
	"github.com/soundprediction/memento/pkg/config"
	mementoLogger "github.com/soundprediction/memento/pkg/logger"
	"github.com/soundprediction/memento/pkg/server/handlers"
	"github.com/soundprediction/memento/pkg/telemetry"
	"github.com/soundprediction/memento/pkg/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol (MCP) server",
	Long: `Start the Model Context Protocol (MCP) server to provide MCP tool access to the knowledge graph.

The MCP server provides tools for:
- Creating and deleting entities and relations
- Adding and deleting observations
- Reading, searching, and opening graph nodes

The server communicates over stdio and is designed to work with MCP
clients like Claude Desktop or other compatible applications.`,
	RunE: runMCPServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	// Configure viper to automatically check for environment variables
	viper.AutomaticEnv()

	// Set up specific environment variable bindings to maintain compatibility
	// with existing environment variable names
	viper.BindEnv("database.uri", "NEO4J_URI")
	viper.BindEnv("database.username", "NEO4J_USERNAME", "NEO4J_USER")
	viper.BindEnv("database.password", "NEO4J_PASSWORD")
	viper.BindEnv("database.database", "NEO4J_DATABASE")

	// Database flags
	mcpCmd.Flags().String("db-uri", "bolt://localhost:7687", "Neo4j URI")
	mcpCmd.Flags().String("db-username", "neo4j", "Neo4j username")
	mcpCmd.Flags().String("db-password", "", "Neo4j password")
	mcpCmd.Flags().String("db-database", "neo4j", "Neo4j database name")

	// Telemetry flags
	mcpCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideDatabaseFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the protocol stream, so every diagnostic goes to
	// stderr.
	var handler slog.Handler = mementoLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: mementoLogger.ParseLevel(cfg.Log.Level),
	})

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

	mcpServer := server.NewMCPServer(
		"memento",
		handlers.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	tools.NewRegistry(graph, logger).RegisterAll(mcpServer)

	logger.Info("Starting MCP server on stdio", "database", cfg.Database.URI)
	if err := server.ServeStdio(mcpServer); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

// overrideDatabaseFlags applies database flags over the loaded config.
// Shared by the mcp and server commands.
func overrideDatabaseFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
