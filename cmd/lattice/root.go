package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/platform"
	"github.com/aretw0/lattice/pkg/client"
	"github.com/aretw0/lattice/pkg/core"
)

var (
	verbose    bool
	configPath string
	addr       string
	timeout    time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "A persistent graph object store served over TCP",
	Long: `Lattice keeps a graph of entities and interned string values in memory,
records every mutation in an append-only log, and serves reads and writes
over a compact binary protocol.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest "+platform.ConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "localhost:4000", "Server address for client commands")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Deadline for client commands")
}

func loadConfig() platform.Config {
	path := platform.ResolveConfigPath(configPath)
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		fatal("Failed to load config", err)
	}
	slog.Debug("config loaded", "path", path)
	return cfg
}

// withClient dials the server, runs fn and closes the connection.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c, err := client.Dial(ctx, addr)
	if err != nil {
		fatal("Failed to connect", err)
	}
	defer c.Close()

	if err := fn(ctx, c); err != nil {
		fatal("Request failed", err)
	}
}

func parseID(s string) core.ID {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fatal("Invalid object id", err)
	}
	return core.ID(n)
}

// printResponse writes the payload, or the object id and payload with --verbose.
func printResponse(resp core.Response) {
	if verbose {
		fmt.Printf("%d\t%s\n", resp.Object, resp.Payload)
		return
	}
	fmt.Println(resp.Payload)
}
