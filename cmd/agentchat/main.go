package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PabloGalante/agent-chat/internal/adapters/agentclient"
	"github.com/PabloGalante/agent-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/agent-chat/internal/app/chat"
	"github.com/PabloGalante/agent-chat/internal/config"
	"github.com/PabloGalante/agent-chat/internal/domain"
	"github.com/PabloGalante/agent-chat/internal/observability"
	"github.com/PabloGalante/agent-chat/internal/tui"
)

var (
	cfg *config.Config

	flagURL      string
	flagTimeout  time.Duration
	flagSession  string
	flagLogLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agentchat",
		Short: "Chat with a remote AI agent from the terminal",
		Long: `agentchat sends your messages to an AI agent over HTTP and shows the
replies, including links to any generated designs.

Examples:
  agentchat chat
  agentchat ask "design a poster for the spring fair"
  agentchat serve --port 8000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd)
			return cfg.Validate()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "agent chat endpoint (overrides AGENTCHAT_AGENT_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "request timeout (overrides AGENTCHAT_AGENT_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "session id (overrides AGENTCHAT_SESSION_ID)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.AgentURL = flagURL
	}
	if flags.Changed("timeout") {
		cfg.AgentTimeout = flagTimeout
	}
	if flags.Changed("session") {
		cfg.SessionID = flagSession
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}

// setupLogging sends logs to the configured file, or to fallback.
func setupLogging(fallback io.Writer) (func(), error) {
	level := observability.ParseLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		observability.Setup(fallback, level)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	observability.Setup(f, level)
	return func() { f.Close() }, nil
}

func newSession() *chat.Session {
	client := agentclient.NewClient(agentclient.Options{
		Endpoint:     cfg.AgentURL,
		Timeout:      cfg.AgentTimeout,
		DesignFields: cfg.DesignFields,
	})
	sc := domain.NewSessionContext(domain.SessionID(cfg.SessionID))
	return chat.NewSession(sc, client, memory.NewMessageStore())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session. When stdin is not a terminal the
session runs in line mode: one message per input line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			interactive := term.IsTerminal(int(os.Stdin.Fd()))

			// the TUI owns the terminal, so logs only go to a file
			fallback := io.Writer(os.Stderr)
			if interactive {
				fallback = io.Discard
			}
			closeLog, err := setupLogging(fallback)
			if err != nil {
				return err
			}
			defer closeLog()

			sess := newSession()
			observability.Logger().Info("chat session started",
				"session_id", cfg.SessionID,
				"agent_url", cfg.AgentURL,
				"interactive", interactive)

			if !interactive {
				return tui.RunLines(ctx, sess, os.Stdin, os.Stdout)
			}

			p := tea.NewProgram(tui.NewModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			closeLog, err := setupLogging(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			sess := newSession()
			ex, err := sess.Submit(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			reply := ex.Wait()
			if reply.Role == domain.RoleSystem {
				return domain.ErrAgentCommunication
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Content)
			if reply.HasVisual() {
				fmt.Fprintf(out, "visual: %s\n", reply.VisualOutputURL)
			}
			return nil
		},
	}
}
