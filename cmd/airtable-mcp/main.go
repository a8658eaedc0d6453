package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roivaz/airtable-mcp/internal/airtable"
	"github.com/roivaz/airtable-mcp/internal/config"
	"github.com/roivaz/airtable-mcp/internal/logging"
	"github.com/roivaz/airtable-mcp/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:           "airtable-mcp",
		Short:         "Airtable MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.PersistentFlags().String("airtable-api-key", "", "Airtable personal access token (overrides AIRTABLE_API_KEY)")
	root.PersistentFlags().String("airtable-base-url", "", "Airtable API base URL")
	root.PersistentFlags().String("airtable-timeout", "", "Airtable request timeout (e.g. 30s)")
	root.PersistentFlags().String("user-agent", "", "User-Agent header sent to Airtable")
	root.PersistentFlags().String("transport", "", "MCP transport: stdio or http")
	root.PersistentFlags().String("host", "", "HTTP host")
	root.PersistentFlags().Int("port", 8000, "HTTP port")
	root.PersistentFlags().String("endpoint-path", "", "HTTP endpoint path")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	config.Init(root)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "airtable-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logging.NewWithLevel(config.LogLevel())
	if err != nil {
		return err
	}
	transport := config.Transport()
	if err := config.ValidateTransport(transport); err != nil {
		return err
	}
	timeout, err := config.AirtableTimeout()
	if err != nil {
		return err
	}

	client, err := airtable.New(config.AirtableAPIKey(),
		airtable.WithBaseURL(config.AirtableBaseURL()),
		airtable.WithTimeout(timeout),
		airtable.WithUserAgent(config.UserAgent()),
		airtable.WithLogger(log),
	)
	if err != nil {
		return err
	}

	srv := mcp.New(mcp.DefaultConfig(client, log, config.EndpointPath()))
	defer srv.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if transport == config.TransportStdio {
		log.Info("MCP server serving on stdio")
		if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	return serveHTTP(ctx, srv, log)
}

func serveHTTP(ctx context.Context, srv *mcp.Server, log logging.Logger) error {
	addr := config.Host() + ":" + strconv.Itoa(config.Port())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("MCP server listening", "addr", addr, "path", config.EndpointPath())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
