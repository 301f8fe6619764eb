package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gustobot",
	Short: "GustoBot - 川菜菜谱智能问答助手",
	Long: `GustoBot answers Sichuan-cuisine cooking questions over a recipe
knowledge graph, a document knowledge base, and a recipe database.

Run "gustobot serve" to start the HTTP API, or "gustobot chat" for a
one-shot question from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	if path := os.Getenv("GUSTOBOT_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
