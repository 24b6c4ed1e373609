// Package main provides the sam CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SyntheticAutonomicMind/SAM-sub003/cli"
)

var (
	// Global flags
	provider string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "sam",
		Short: "Streaming conversation client with bounded context windows",
		Long: `sam drives turn-based conversations against a streaming LLM backend.

Each turn selects a bounded context window from history (pinned messages
always included), streams the response, and reassembles it into messages,
tool records, and speech segments.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "openai", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logging")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func chatCmd() *cobra.Command {
	var session, dbPath string
	var speak bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider: provider,
				Session:  session,
				DBPath:   dbPath,
				Speak:    speak,
			}
			return cli.Chat(context.Background(), opts, newLogger())
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "default", "Session id to create or resume")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for session persistence")
	cmd.Flags().BoolVar(&speak, "speak", false, "Speak responses via SAM_SPEECH_COMMAND")

	return cmd
}

func sessionsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List persisted sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			return cli.ListSessions(context.Background(), dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to inspect")

	return cmd
}
