package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"inkpost/internal/config"
	"inkpost/internal/db"
	"inkpost/internal/handlers"
	"inkpost/internal/middleware"
	"inkpost/internal/router"
	"inkpost/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const sessionName = "inkpost_session"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gdb, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.Migrate(gdb); err != nil {
			return err
		}

		return serve(ctx, cfg, newEngine(cfg, gdb))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newEngine wires services, handlers and middleware onto a gin engine.
func newEngine(cfg *config.Config, gdb *gorm.DB) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	users := services.NewUserService(gdb, services.NewMailService(cfg.SMTP))
	posts := services.NewPostService(gdb)
	comments := services.NewCommentService(gdb)
	stats := services.NewStatsService(gdb)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	router.RegisterRoutes(r, router.Handlers{
		Auth:     handlers.NewAuthHandler(users, cfg.JWTSecret, cfg.TokenTTL),
		Posts:    handlers.NewPostHandler(posts, stats),
		Comments: handlers.NewCommentHandler(comments),
		Admin:    handlers.NewAdminHandler(users, comments),
		Resolver: middleware.ChainResolver{
			middleware.TokenResolver{Users: users, Secret: []byte(cfg.JWTSecret)},
			middleware.SessionResolver{Users: users},
		},
	})
	return r
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("inkpost server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
