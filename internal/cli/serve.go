package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/stagehand/pkg/adapters/http"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/ports"
)

// ShutdownTimeout bounds how long outstanding requests may run after a stop signal.
const ShutdownTimeout = 5 * time.Second

// NewServeHandler builds the HTTP bridge for st. Containers created over HTTP
// draw through virtual surfaces recorded in the stack's journal.
func NewServeHandler(st *Stack, logger *slog.Logger) http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithStream(st.Stream),
		httpAdapter.WithGatherer(st.Registry),
		httpAdapter.WithSurfaceFactory(func(uniqueID string) ports.Surfaces {
			return virtual.NewSurfaces(uniqueID, st.Journal)
		}),
	}
	for id, e := range st.Engines {
		opts = append(opts, httpAdapter.WithEngineInspector(id, e))
	}
	return httpAdapter.NewHandler(st.Coordinator, opts...)
}

// Serve runs the HTTP bridge on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, out io.Writer, addr string, st *Stack, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServeHandler(st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		printSystemMessage(out, "Starting Stagehand Server on %s", srv.Addr)
		printSystemMessage(out, "Engines: %v", st.Coordinator.Engines())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(out, "Start shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(out, "Stagehand Server stopped gracefully")
		return nil
	}
}
