package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/handlers"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg config.Config) error {
	log, err := BuildLogger(cfg)
	if err != nil {
		return err
	}
	app, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      NewEngine(app),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("bootstrap: server listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown error")
		}
		return nil
	})
	g.Go(func() error {
		app.DB.WatchHealth(gctx, cfg.Database.HealthCheckPeriod, dbHealthReporter(log))
		return nil
	})
	if cfg.Retention.InProcess {
		g.Go(func() error {
			return app.Scheduler.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server error")
		return err
	}
	return nil
}

// NewEngine builds the gin engine with the middleware chain and routes.
func NewEngine(app *Container) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestContext(),
		middleware.Logger(app.Log),
		gin.Recovery(),
		middleware.Session(app.Sessions, app.Users, app.Config.Session.CookieName, app.Log),
		middleware.AuditTrail(app.Activity),
	)

	handler := handlers.NewHandler(handlers.Services{
		Auth:          app.Auth,
		Users:         app.UserUC,
		Companies:     app.Companies,
		Tickets:       app.Tickets,
		Notifications: app.Notifier,
		Audit:         app.Audit,
	}, app.DB, app.Config.Session.CookieName, app.Log)
	handlers.NewRouter(handler).RegisterRoutes(router)
	return router
}
