package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"messagesapp/internal/api/v1/handler"
	"messagesapp/internal/blob"
	"messagesapp/internal/cache"
	"messagesapp/internal/category"
	"messagesapp/internal/config"
	"messagesapp/internal/middleware"
	"messagesapp/internal/pubsub"
	"messagesapp/internal/repository"
	"messagesapp/internal/service"
	"messagesapp/internal/tracking"
	"messagesapp/migrations"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initializing")

	// 1. Open DB connection (connection pooling)
	dsn := cfg.DBConnectionString
	// In a development environment, ensure SSL is disabled for local
	// testing. In production the connection string must carry its own SSL
	// settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}

	// Migrations run over database/sql, the app itself over pgx pools.
	migrationDB, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Error().Msgf("Failed to open DB connection: %v", err)
		return nil, nil, err
	}
	if err := migrations.Run(migrationDB); err != nil {
		migrationDB.Close()
		logger.Error().Msgf("Failed to apply migrations: %v", err)
		return nil, nil, err
	}
	migrationDB.Close()

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Error().Msgf("Failed to create DB pool: %v", err)
		return nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		logger.Error().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// The caches degrade to the source of record when Redis is down, so
		// a failed ping is not fatal.
		logger.Warn().Msgf("Redis unreachable at startup: %v", err)
	}

	// 3. Initialize S3 client for message content
	s3Config, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		logger.Error().Msgf("Failed to load S3 config: %v", err)
		return nil, nil, err
	}
	s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	})

	// 4. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 5. Initialize enrichment failure tracking
	tracker := tracking.NewNop()
	if cfg.GCPProjectID != "" {
		publisher, err := pubsub.NewPublisher(context.Background(), cfg.GCPProjectID)
		if err != nil {
			logger.Error().Msgf("Failed to create Pub/Sub publisher: %v", err)
			return nil, nil, err
		}
		tracker = tracking.New(publisher, cfg.TrackingTopic, logger)
	}

	// 6. Initialize repositories, caches & services
	messageRepo := repository.NewMessageRepo(pool)
	statusRepo := repository.NewMessageStatusRepo(pool)
	serviceRepo := repository.NewServiceRepo(pool)
	rcConfigRepo := repository.NewRCConfigurationRepo(pool)
	viewRepo := repository.NewMessageViewRepo(pool)

	contentStore := blob.NewContentStore(s3Client, cfg.MessageContainer)

	serviceToConfigMap := map[string]string{}
	if err := json.Unmarshal([]byte(cfg.ServiceToRCConfigurationMap), &serviceToConfigMap); err != nil {
		return nil, nil, fmt.Errorf("invalid SERVICE_TO_RC_CONFIGURATION_MAP: %w", err)
	}
	serviceCache := cache.NewServiceCache(
		cache.NewRedisStore(redisClient, "service"),
		serviceRepo,
		time.Duration(cfg.ServiceCacheTTLSec)*time.Second,
		logger,
	)
	rcConfigCache := cache.NewRCConfigurationCache(
		cache.NewRedisStore(redisClient, "rc-configuration"),
		rcConfigRepo,
		time.Duration(cfg.RCConfigCacheTTLSec)*time.Second,
		serviceToConfigMap,
		logger,
	)

	fetcher := category.NewConfigFetcher(cfg.PNServiceID, tracker, logger)

	fallbackSource := service.NewFallbackSource(messageRepo, statusRepo, contentStore, serviceCache, rcConfigCache, fetcher, tracker, logger)
	viewSource := service.NewViewSource(viewRepo, rcConfigCache, fetcher, logger)

	var canaryPattern *regexp.Regexp
	if cfg.FFCanaryUsersRegex != "" {
		canaryPattern, err = regexp.Compile(cfg.FFCanaryUsersRegex)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid FF_CANARY_USERS_REGEX: %w", err)
		}
	}
	var betaTesters []string
	if cfg.FFBetaTesters != "" {
		betaTesters = strings.Split(cfg.FFBetaTesters, ",")
	}
	selector := service.NewSourceSelector(
		cfg.UseFallback,
		service.FeatureFlagType(cfg.FFType),
		fallbackSource,
		viewSource,
		betaTesters,
		canaryPattern,
	)

	messageSvc := service.NewMessageService(messageRepo, statusRepo, contentStore, serviceCache, fetcher, logger)
	statusSvc := service.NewMessageStatusService(messageRepo, statusRepo, logger)
	rcConfigSvc := service.NewRCConfigurationService(rcConfigCache, logger)

	messageHandler := handler.NewMessageHandler(selector, messageSvc, statusSvc, validate, logger)
	rcConfigHandler := handler.NewRCConfigurationHandler(rcConfigSvc, logger)

	// 7. Initialize middleware & routes
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	apiV1Mux := http.NewServeMux()
	messageHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	rcConfigHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Mux))

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), pool, nil
}
