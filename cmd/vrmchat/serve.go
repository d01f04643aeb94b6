package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	orchestration "github.com/jimli1231/eletron-vrm/core"
	"github.com/jimli1231/eletron-vrm/core/bridge"
	"github.com/jimli1231/eletron-vrm/core/events"
)

const defaultListen = "127.0.0.1:8765"

var listen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the renderer bridge",
	Long: `Serve starts a websocket endpoint at /ws. The renderer sends chat:send,
chat:clear, chat:cancel and chat:history messages and receives every
llm:* event of the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("listen") || config.Listen == "" {
			config.Listen = listen
		}
		return runServe(cmd.Context(), config)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listen, "listen", defaultListen, "Address to listen on")
}

func runServe(ctx context.Context, config Config) error {
	log := newLogger()

	server := bridge.NewServer(bridge.WithContext(ctx))
	opts := append(config.sessionOptions(),
		orchestration.WithEventHandler(server.Publish),
		orchestration.WithEventHandler(func(event events.Event) {
			log.Debug("event", "kind", event.Kind(), "call_id", event.CallID())
		}),
	)
	session := orchestration.NewSession(config.APIKey, opts...)
	server.Bind(session)

	mux := http.NewServeMux()
	mux.Handle("/ws", server)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok state=%s clients=%d\n", session.State(), server.Clients())
	})

	httpServer := &http.Server{Addr: config.Listen, Handler: otelhttp.NewHandler(mux, "vrmchat")}
	go func() {
		<-ctx.Done()
		session.Cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("renderer bridge listening", "addr", config.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge server failed: %w", err)
	}
	return nil
}
