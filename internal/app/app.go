package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfgman "CareNotifier/internal/config"
	"CareNotifier/internal/delivery/handlers"
	"CareNotifier/internal/delivery/middleware"
	"CareNotifier/internal/domain"
	"CareNotifier/internal/migrator"
	"CareNotifier/internal/repository/cache"
	"CareNotifier/internal/repository/rabbit"
	"CareNotifier/internal/sender/fcm"
	"CareNotifier/internal/service"
	"CareNotifier/internal/worker"
	"CareNotifier/migrations"
	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"go.mongodb.org/mongo-driver/mongo"

	redisrepo "CareNotifier/internal/repository/redis"
)

// Application основная структура приложения.
type Application struct {
	config *cfgman.Config
	server *ginext.Engine

	db        *dbpg.DB
	mongo     *mongo.Client
	firebase  *firebase.App
	firestore *firestore.Client
	redis     *redisrepo.Client
	amqpConn  *amqp091.Connection

	store      domain.NotificationStore
	dispatcher *service.Dispatcher
	inbox      *service.InboxService
	queue      domain.NotificationQueue
	consumer   *worker.Consumer
}

// New создает новое приложение.
func New() (*Application, error) {
	// Загружаем конфигурацию
	cfg, err := cfgman.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем логгер
	if err := initLogger(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return &Application{config: cfg}, nil
}

// Run запускает приложение в зависимости от команды.
func (a *Application) Run() error {
	if len(os.Args) < 2 {
		a.printUsage()
		return fmt.Errorf("no command specified")
	}

	switch command := os.Args[1]; command {
	case "runserver":
		return a.runServer()
	case "migrate":
		return a.runMigrate()
	case "health":
		return a.runHealthCheck()
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// printUsage печатает инструкции по использованию.
func (a *Application) printUsage() {
	fmt.Println("CareNotifier - доставка уведомлений пациентам")
	fmt.Println()
	fmt.Println("Доступные команды:")
	fmt.Println("  runserver    - запуск HTTP сервера и воркеров очереди")
	fmt.Println("  migrate up   - накат миграций PostgreSQL")
	fmt.Println("  migrate down - откат миграций PostgreSQL")
	fmt.Println("  health       - проверка состояния сервисов")
	fmt.Println()
	fmt.Println("Хранилище выбирается переменной CARE_NOTIFIER_STORAGE_DRIVER: postgres, firestore, mongo")
}

// initLogger инициализирует логгер.
func initLogger(level string) error {
	zlog.Init()

	zerologLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	return zlog.SetLevel(zerologLevel.String())
}

// runServer запускает HTTP сервер и воркеры.
func (a *Application) runServer() error {
	zlog.Logger.Info().Str("storage", a.config.Storage.Driver).Msg("Starting CareNotifier server...")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.initConnections(ctx); err != nil {
		return fmt.Errorf("failed to init connections: %w", err)
	}
	defer a.cleanup()

	if err := a.initServices(ctx); err != nil {
		return fmt.Errorf("failed to init services: %w", err)
	}
	a.setupHTTPServer()

	if err := a.startWorkers(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	zlog.Logger.Info().Str("address", a.config.HTTP.GetConnectionString()).Msg("HTTP server starting")
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Run(a.config.HTTP.GetConnectionString())
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		zlog.Logger.Info().Msg("Received shutdown signal")
		return nil
	}
}

// runMigrate выполняет миграции PostgreSQL.
func (a *Application) runMigrate() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("migrate command requires direction (up/down)")
	}
	if a.config.Storage.Driver != cfgman.StoragePostgres {
		zlog.Logger.Warn().Str("storage", a.config.Storage.Driver).Msg("migrations apply to postgres only")
	}

	direction := os.Args[2]
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown migrate direction: %s (use up/down)", direction)
	}

	zlog.Logger.Info().Str("direction", direction).Msg("Running migrations...")
	db, err := initDatabase(a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer func() {
		_ = db.Master.Close()
	}()

	m, err := newMigrator(db, a.config.Migrations.Path)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		_ = m.Close()
	}()

	if direction == "up" {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, err := m.Version()
	if err != nil {
		return err
	}
	zlog.Logger.Info().Uint("version", version).Msg("Migrations applied successfully")
	return nil
}

// newMigrator берет миграции из каталога, если он задан, иначе встроенные.
func newMigrator(db *dbpg.DB, path string) (*migrator.Migrator, error) {
	if path == "" {
		return migrator.NewEmbeddedMigrator(db.Master, migrations.FS)
	}
	return migrator.NewMigrator(db.Master, path)
}

// initServices собирает хранилище, диспетчер и сервис ленты.
func (a *Application) initServices(ctx context.Context) error {
	store, err := a.initStore(ctx)
	if err != nil {
		return err
	}
	if a.redis != nil {
		store = cache.NewStore(store, a.redis, service.DefaultListLimit, a.config.Redis.CacheTTL)
	}
	a.store = store

	var push domain.PushSender
	if a.config.Push.Enabled {
		client, err := a.firebase.Messaging(ctx)
		if err != nil {
			return fmt.Errorf("failed to init messaging client: %w", err)
		}
		push = fcm.NewSender(client, fcm.Options{
			AndroidChannelID: a.config.Push.AndroidChannelID,
			Sound:            a.config.Push.Sound,
		})
	} else {
		zlog.Logger.Warn().Msg("push delivery disabled, notifications are only recorded")
	}

	a.dispatcher = service.NewDispatcher(push, a.store, service.WithPushTimeout(a.config.Push.Timeout))
	a.inbox = service.NewInboxService(a.store)
	return nil
}

// setupHTTPServer настраивает HTTP сервер.
func (a *Application) setupHTTPServer() {
	a.server = ginext.New(gin.ReleaseMode)
	a.server.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
	}))
	a.server.Use(middleware.RequestIDMiddleware())
	a.server.Use(middleware.LoggingMiddleware(zlog.Logger))

	h := handlers.NewHandlersSet(a.dispatcher, a.inbox, a.queue)
	a.server.RouterGroup.GET("/health", h.HealthHandler)

	group := a.server.RouterGroup.Group("notify")
	group.POST("", h.DispatchNotificationHandler)
	group.POST("/async", h.EnqueueNotificationHandler)
	group.GET("/:userId", h.ListNotificationsHandler)
	group.PATCH("/:userId/:id/read", h.MarkReadHandler)
}

// startWorkers запускает потребителя очереди уведомлений.
func (a *Application) startWorkers(ctx context.Context) error {
	if a.amqpConn == nil {
		zlog.Logger.Warn().Msg("rabbitmq disabled, queue consumer not started")
		return nil
	}

	ch, err := a.amqpConn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}

	a.consumer = worker.NewConsumer(a.dispatcher, ch, a.config.RabbitMQ.ConnectionName)
	go func() {
		err := a.consumer.Start(ctx, a.config.RabbitMQ.QueueName, a.config.RabbitMQ.Workers, a.config.RabbitMQ.Prefetch)
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("queue consumer stopped with error")
		}
	}()

	zlog.Logger.Info().Msg("Workers started successfully")
	return nil
}

// cleanup освобождает ресурсы.
func (a *Application) cleanup() {
	zlog.Logger.Info().Msg("Cleaning up resources...")

	if a.amqpConn != nil {
		_ = a.amqpConn.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.firestore != nil {
		_ = a.firestore.Close()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Mongo.Timeout)
		_ = a.mongo.Disconnect(ctx)
		cancel()
	}
	if a.db != nil {
		_ = a.db.Master.Close()
	}

	zlog.Logger.Info().Msg("Cleanup completed")
}

// publisherFor открывает канал публикации и оборачивает его издателем.
func publisherFor(conn *amqp091.Connection, cfg cfgman.RabbitMQConfig) (*rabbit.Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publisher channel: %w", err)
	}
	return rabbit.NewPublisher(ch, cfg.ExchangeName, cfg.RoutingKey), nil
}
