package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	cfgman "CareNotifier/internal/config"
	"CareNotifier/internal/domain"
	"CareNotifier/internal/repository/pg"
	"CareNotifier/internal/worker"
	firebase "firebase.google.com/go/v4"
	_ "github.com/lib/pq"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"google.golang.org/api/option"

	fsrepo "CareNotifier/internal/repository/firestore"
	mongorepo "CareNotifier/internal/repository/mongo"
	redisrepo "CareNotifier/internal/repository/redis"
)

const connectTimeout = 5 * time.Second

// initConnections инициализирует все подключения.
func (a *Application) initConnections(ctx context.Context) error {
	var err error

	if a.config.Firebase.Configured() {
		a.firebase, err = initFirebase(ctx, a.config.Firebase)
		if err != nil {
			return fmt.Errorf("failed to init firebase: %w", err)
		}
	}

	if a.config.Redis.Enabled {
		a.redis, err = initRedis(ctx, a.config.Redis)
		if err != nil {
			return fmt.Errorf("failed to init redis: %w", err)
		}
	}

	if a.config.RabbitMQ.Enabled {
		a.amqpConn, err = initRabbitMQ(a.config.RabbitMQ)
		if err != nil {
			return fmt.Errorf("failed to init rabbitmq: %w", err)
		}
		publisher, err := publisherFor(a.amqpConn, a.config.RabbitMQ)
		if err != nil {
			return err
		}
		a.queue = publisher
	}

	return nil
}

// initStore подключает выбранное хранилище уведомлений.
func (a *Application) initStore(ctx context.Context) (domain.NotificationStore, error) {
	switch a.config.Storage.Driver {
	case cfgman.StoragePostgres:
		db, err := initDatabase(a.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		a.db = db
		return pg.NewPostgresRepo(db), nil

	case cfgman.StorageFirestore:
		client, err := a.firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to init firestore: %w", err)
		}
		a.firestore = client
		zlog.Logger.Info().Msg("Firestore client established")
		return fsrepo.NewStore(client), nil

	case cfgman.StorageMongo:
		client, err := initMongo(ctx, a.config.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to init mongo: %w", err)
		}
		a.mongo = client
		store := mongorepo.NewStore(client.Database(a.config.Mongo.Database).Collection(a.config.Mongo.Collection))
		if err := store.EnsureIndexes(ctx); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to ensure mongo indexes")
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q", a.config.Storage.Driver)
	}
}

// initDatabase инициализирует подключение к базе данных.
func initDatabase(cfg cfgman.DatabaseConfig) (*dbpg.DB, error) {
	opts := &dbpg.Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	}

	db, err := dbpg.New(cfg.DSN, nil, opts)
	if err != nil {
		return nil, err
	}

	if err := db.Master.Ping(); err != nil {
		_ = db.Master.Close()
		return nil, err
	}

	zlog.Logger.Info().Msg("Database connection established")
	return db, nil
}

// initFirebase инициализирует Firebase Admin SDK. Base64 учетные данные
// имеют приоритет над файлом.
func initFirebase(ctx context.Context, cfg cfgman.FirebaseConfig) (*firebase.App, error) {
	var opt option.ClientOption
	if cfg.CredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		zlog.Logger.Info().Msg("Using Firebase credentials from base64 environment variable")
		opt = option.WithCredentialsJSON(decoded)
	} else {
		zlog.Logger.Info().Str("file", cfg.CredentialsFile).Msg("Using Firebase credentials file")
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}

// initMongo подключается к MongoDB и проверяет соединение.
func initMongo(ctx context.Context, cfg cfgman.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	zlog.Logger.Info().Str("database", cfg.Database).Msg("Mongo connection established")
	return client, nil
}

// initRedis инициализирует подключение к Redis.
func initRedis(ctx context.Context, cfg cfgman.RedisConfig) (*redisrepo.Client, error) {
	client := redisrepo.New(cfg.Addr, cfg.Password, cfg.DB)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	zlog.Logger.Info().Msg("Redis connection established")
	return client, nil
}

// initRabbitMQ подключается к RabbitMQ и объявляет топологию очередей.
func initRabbitMQ(cfg cfgman.RabbitMQConfig) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(cfg.URL, amqp091.Config{
		Properties: amqp091.Table{"connection_name": cfg.ConnectionName},
		Dial:       amqp091.DefaultDial(connectTimeout),
	})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	defer func() {
		_ = ch.Close()
	}()

	topology := worker.Topology{
		Exchange:   cfg.ExchangeName,
		Queue:      cfg.QueueName,
		RoutingKey: cfg.RoutingKey,
		DeadLetter: cfg.DeadLetter,
	}
	if err := topology.Declare(ch); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to declare queue")
		_ = conn.Close()
		return nil, err
	}

	zlog.Logger.Info().Msg("RabbitMQ connection established")
	return conn, nil
}

// runHealthCheck проверяет состояние всех подключений.
func (a *Application) runHealthCheck() error {
	fmt.Println("Running health check...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.initConnections(ctx); err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	defer a.cleanup()

	if a.firebase != nil {
		fmt.Println("✅ Firebase credentials: OK")
	}
	if a.redis != nil {
		fmt.Println("✅ Redis connection: OK")
	}
	if a.amqpConn != nil {
		fmt.Println("✅ RabbitMQ connection: OK")
	}

	if _, err := a.initStore(ctx); err != nil {
		return fmt.Errorf("%s check failed: %w", a.config.Storage.Driver, err)
	}
	fmt.Printf("✅ Storage (%s): OK\n", a.config.Storage.Driver)

	fmt.Println("🎉 All health checks passed!")
	return nil
}
