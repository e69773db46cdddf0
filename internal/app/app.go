package app

import (
	"net/http"

	"gorm.io/gorm"

	"helphands-go/internal/auth"
	"helphands-go/internal/config"
	"helphands-go/internal/db"
	announcementsdomain "helphands-go/internal/domain/announcements"
	eventsdomain "helphands-go/internal/domain/events"
	userdomain "helphands-go/internal/domain/user"
	"helphands-go/internal/repository/inmemory"
	announcementsrepo "helphands-go/internal/repository/postgres/announcements"
	eventsrepo "helphands-go/internal/repository/postgres/events"
	userrepo "helphands-go/internal/repository/postgres/user"
	"helphands-go/internal/transport/httpserver"
	"helphands-go/internal/transport/httpserver/handler"
	authmw "helphands-go/internal/transport/httpserver/middleware"
	"helphands-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	users      *userdomain.Service
}

func New(log logger.Logger, cfg config.Config) (*App, error) {
	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(log, cfg.DB)
	if err != nil {
		return nil, err
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing services")
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := userdomain.NewService(
		userrepo.NewPostgres(dbConn),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		inmemory.NewUserCache(cfg.Auth.CallerCacheTTL),
	)
	events := eventsdomain.NewService(eventsrepo.NewPostgres(dbConn))
	announcements := announcementsdomain.NewService(announcementsrepo.NewPostgres(dbConn), events)

	log.Info("app: initializing router")
	handlers := handler.New(users, events, announcements, tokens, sqlDB, log)
	router := httpserver.NewRouter(cfg, handlers, authmw.NewAuth(tokens, users, log))

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: srv,
		db:         dbConn,
		users:      users,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Users() *userdomain.Service {
	return a.users
}

func (a *App) Migrate() error {
	return db.Migrate(a.log, a.db)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
