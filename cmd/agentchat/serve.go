package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/agent-chat/internal/adapters/http"
	"github.com/PabloGalante/agent-chat/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/agent-chat/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/agent-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/agent-chat/internal/app/conversation"
	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/config"
	"github.com/PabloGalante/agent-chat/internal/domain"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local development agent backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Port = port
			}
			if err := cfg.ValidateBackend(); err != nil {
				return err
			}
			return runServer()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default: 8000)")
	return cmd
}

func newLLMClient(ctx context.Context) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.LLMProvider {
	case config.LLMVertex:
		log.Info("using Vertex LLM client", "project", cfg.GCPProjectID, "location", cfg.GCPLocation)
		return llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
	case config.LLMAnthropic:
		log.Info("using Claude LLM client")
		return llm.NewClaudeClient(cfg.AnthropicAPIKey, cfg.ModelName)
	default:
		log.Info("using MOCK LLM client")
		return llm.NewMockLLM(), nil
	}
}

func runServer() error {
	ctx, cancel := signalContext()
	defer cancel()

	closeLog, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	log := observability.Logger()

	llmClient, err := newLLMClient(ctx)
	if err != nil {
		return fmt.Errorf("initializing LLM client: %w", err)
	}

	var (
		sessionStore domain.SessionStore
		messageStore domain.MessageStore
	)

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return fmt.Errorf("initializing Firestore store: %w", err)
		}
		defer fsStore.Close()

		// 1 store, implements 2 interfaces
		sessionStore = fsStore
		messageStore = fsStore

	default:
		log.Info("using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		messageStore = memstore.NewMessageStore()
	}

	svc := conversation.NewService(llmClient, sessionStore, messageStore, tools.NewDesignTool(cfg.DesignBaseURL))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("agent backend listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
