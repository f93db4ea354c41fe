package fixtures

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func logMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request",
					zap.String("from", r.RemoteAddr),
					zap.String("protocol", r.Proto),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// NewRouter returns the feed router with request logging.
func NewRouter(file string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(logMiddleware(logger))
	NewServer(file, logger).RegisterRoutes(r)
	return r
}

func newServeCommand() *cobra.Command {
	var file string
	var addr string

	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serves a catalog file at the feed path",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("kevetl.fixtures")

			srv := &http.Server{
				Addr:    addr,
				Handler: NewRouter(file, l),
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			l.Info("starting server",
				zap.String("addr", addr),
				zap.String("path", FeedPath),
			)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "kev.json", "Catalog file to serve")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
