// Command vrmchat talks to the avatar's language model from a terminal, or
// serves the avatar renderer over a websocket bridge.
//
// Usage:
//
//	vrmchat [flags]             interactive chat in the terminal
//	vrmchat ask [flags] <text>  one reply, speech streamed to stdout
//	vrmchat serve [flags]       websocket bridge for the renderer
//
// The API key is read from GEMINI_API_KEY, the config file or --api-key.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	apiKey       string
	model        string
	chunkTimeout time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "vrmchat",
	Short: "Chat with the avatar's language model",
	Long: `vrmchat streams replies from Gemini and turns them into speech,
emotion and action events. Without a subcommand it opens an interactive
chat in the terminal.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		return runChat(cmd.Context(), config)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: <user config dir>/vrmchat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (default: $"+apiKeyEnv+")")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model to use")
	rootCmd.PersistentFlags().DurationVar(&chunkTimeout, "chunk-timeout", 0, "Fail a call when no data arrives for this long")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(askCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveConfig loads the config file and applies the flags the user set
// on top of it.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		config.APIKey = apiKey
	}
	if flags.Changed("model") {
		config.Model = model
	}
	if flags.Changed("chunk-timeout") {
		config.ChunkTimeout = chunkTimeout
	}
	if config.APIKey == "" {
		return Config{}, fmt.Errorf("no API key, set %s or use --api-key", apiKeyEnv)
	}
	return config, nil
}

// newLogger creates the CLI's own logger with the configured verbosity.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
