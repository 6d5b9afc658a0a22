package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	landing "github.com/goliatone/go-landing"
	"github.com/goliatone/go-landing/config"
	"github.com/goliatone/go-landing/gateway/gotrue"
	"github.com/goliatone/go-landing/middleware/csrf"
	repo "github.com/goliatone/go-landing/repository"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config  *config.Config
	bunDB   *bun.DB
	repo    *repo.Manager
	gateway landing.AuthGateway
	srv     router.Server[*fiber.App]
	logger  *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("landing"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}
	defer app.bunDB.Close()

	app.gateway = gotrue.New(cfg.GetGateway())

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithLandingRoutes(ctx, app); err != nil {
		panic(err)
	}

	go func() {
		if err := app.srv.Serve(cfg.HTTP.Addr); err != nil {
			app.GetLogger("app").Error("server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	app.GetLogger("app").Info("shutting down", "signal", sig.String())

	if err := app.srv.Shutdown(ctx); err != nil {
		app.GetLogger("app").Error("shutdown failed", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.Database.DSN)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	app.bunDB = bun.NewDB(db, sqlitedialect.New())
	app.repo = repo.NewRepositoryManager(app.bunDB)

	if err := app.repo.Validate(); err != nil {
		return err
	}

	if err := app.repo.Migrate(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to migrate landing tables")
	}

	app.GetLogger("persistence").Info("database ready", "dsn", app.config.Database.DSN)

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	engine := django.NewFileSystem(http.FS(landing.GetViewsFS()), ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.config.Debug,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	srv.Router().Use(csrf.New(csrf.Config{
		SecureKey:  app.config.GetCSRFKey(),
		Expiration: app.config.CSRF.Expiration,
	}))

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	app.srv = srv

	return nil
}

func WithLandingRoutes(ctx context.Context, app *App) error {
	cooldown := landing.NewResendCooldown(
		app.repo.Resends(),
		app.gateway,
		landing.WithCooldownLogger(app.GetLogger("landing:resend")),
	)

	_, err := landing.RegisterLandingRoutes(app.srv.Router(),
		landing.WithGateway(app.gateway),
		landing.WithResendCooldown(cooldown),
		landing.WithControllerLogger(app.GetLogger("landing:ctrl")),
		landing.WithSessionCookies(landing.NewSessionCookies(
			app.config.Session.CookieName,
			app.config.Session.Secure,
		)),
		landing.WithRoutes(app.config.GetRoutes()),
		landing.WithFeatureGate(app.config.GetFeatures()),
		landing.WithDebug(app.config.Debug),
	)
	if err != nil {
		return err
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
