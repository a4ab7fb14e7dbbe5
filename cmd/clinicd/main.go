package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	clinic "github.com/medikeep/clinic"
	"github.com/medikeep/clinic/cmd/clinicd/config"
)

type App struct {
	config *gconfig.Container[*config.BaseConfig]
	bunDB  *bun.DB
	repo   clinic.RepositoryManager
	auther *clinic.Auther
	store  clinic.FileStore
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("clinicd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	if cfg.Raw().GetDebug() {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
		fmt.Println("============")
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		log.Fatal(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		log.Fatal(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		log.Fatal(err)
	}

	go func() {
		addr := app.Config().GetServer().GetAddress()
		app.GetLogger("http").Info("listening", "address", addr)
		if err := app.srv.Listen(addr); err != nil {
			log.Fatal(err)
		}
	}()

	WaitExitSignal()

	if err := app.srv.Shutdown(); err != nil {
		app.GetLogger("http").Error("shutdown error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*clinic.User)(nil))
	persistence.RegisterModel((*clinic.Prescription)(nil))
	persistence.RegisterModel((*clinic.Document)(nil))

	cfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(cfg, db, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(clinic.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = clinic.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithAuth(ctx context.Context, app *App) error {
	provider := clinic.NewUserProvider(app.repo.Users()).
		WithLogger(app.GetLogger("auth"))

	auth := app.Config().GetAuth()
	app.auther = clinic.NewAuthenticator(provider, auth).
		WithLogger(app.GetLogger("auth"))

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	store, err := clinic.NewDiskFileStore(app.Config().GetUploads().GetDir())
	if err != nil {
		return err
	}
	app.store = store

	app.srv = fiber.New(fiber.Config{
		AppName: "clinicd",
	})

	clinic.RegisterRoutes(clinic.RouterConfig{
		App:    app.srv,
		Repo:   app.repo,
		Auther: app.auther,
		Store:  app.store,
		Config: app.Config().GetAuth(),
		Logger: app.GetLogger("http"),
		Debug:  app.Config().GetDebug(),
	})

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 2)
	signal.Notify(
		ch,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	return <-ch
}
