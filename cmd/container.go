package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/careerlens/careerlens/internal/ai/embeddings"
	"github.com/careerlens/careerlens/internal/ai/synthesis"
	"github.com/careerlens/careerlens/internal/ai/vision"
	"github.com/careerlens/careerlens/internal/convert"
	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/fsx"
	"github.com/careerlens/careerlens/pkg/fsx/fsxs3"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/account/accountapi"
	"github.com/careerlens/careerlens/talent/account/accountinfra"
	"github.com/careerlens/careerlens/talent/account/accountsrv"
	"github.com/careerlens/careerlens/talent/ingestion/ingestionapi"
	"github.com/careerlens/careerlens/talent/ingestion/ingestioninfra"
	"github.com/careerlens/careerlens/talent/ingestion/ingestionsrv"
	"github.com/careerlens/careerlens/talent/ingestion/worker"
	"github.com/careerlens/careerlens/talent/profile/profileapi"
	"github.com/careerlens/careerlens/talent/profile/profileinfra"
	"github.com/careerlens/careerlens/talent/profile/profilesrv"
)

const importQueueName = "careerlens:imports"

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	S3Client   *s3.Client
	FileSystem fsx.FileSystem

	// Auth
	TokenService   auth.TokenService
	AuthMiddleware fiber.Handler

	// Domain Services
	AccountService   *accountsrv.Service
	IngestionService *ingestionsrv.Service
	ProfileService   *profilesrv.Service

	// API Handlers
	AuthHandlers    *accountapi.AuthHandlers
	ImportHandlers  *ingestionapi.ImportHandlers
	ProfileHandlers *profileapi.ProfileHandlers

	// Background
	ImportWorker *worker.ImportWorker
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASS"),
		DB:       0,
	})
	if err := c.Redis.Ping(context.Background()).Err(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. AWS S3 Configuration
	awsRegion := os.Getenv("AWS_REGION")
	awsBucket := os.Getenv("AWS_BUCKET")
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(awsRegion))
	if err != nil {
		logx.Fatalf("unable to load SDK config, %v", err)
	}
	c.S3Client = s3.NewFromConfig(cfg)
	c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "")

	// 4. Session Tokens
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		jwtSecret = "super-secret-key-please-change-me-in-production"
	}
	c.TokenService = auth.NewJWTService(jwtSecret, envDuration("JWT_TTL", 24*time.Hour), "careerlens")
	c.AuthMiddleware = auth.Middleware(c.TokenService)
}

func (c *Container) initServices() {
	// --- Repositories ---
	accountRepo := accountinfra.NewPostgresAccountRepository(c.DB)
	importRepo := ingestioninfra.NewPostgresImportRepository(c.DB)
	profileRepo := profileinfra.NewPostgresProfileRepository(c.DB)
	importQueue := ingestioninfra.NewRedisQueue(c.Redis, importQueueName)

	// --- External Clients ---
	openAIKey := os.Getenv("OPENAI_API_KEY")
	converter := convert.NewClient(
		os.Getenv("CONVERT_API_URL"),
		os.Getenv("CONVERT_API_KEY"),
		convert.DefaultRetryPolicy(),
	)
	extractor := ingestionsrv.NewVisionExtractor(vision.NewExtractor(openAIKey))
	synthesizer := ingestionsrv.NewOpenAISynthesizer(synthesis.NewSynthesizer(openAIKey))
	embedder := embeddings.NewGenerator(openAIKey)

	// --- Pipeline ---
	renderPDFLocally := envBool("RENDER_PDF_LOCALLY", true)
	normalizer := ingestionsrv.NewNormalizer(converter, renderPDFLocally)
	pipeline := ingestionsrv.NewPipeline(
		ingestionsrv.Credentials{
			ConversionAPIKey: os.Getenv("CONVERT_API_KEY"),
			ModelAPIKey:      openAIKey,
		},
		normalizer,
		extractor,
		synthesizer,
	)

	// --- Domain Services ---
	c.AccountService = accountsrv.NewService(accountRepo, auth.NewBcryptPasswordService(), c.TokenService)
	c.ProfileService = profilesrv.NewService(profileRepo, embedder)
	// The profile service doubles as the sink that receives finished imports
	c.IngestionService = ingestionsrv.NewService(importRepo, importQueue, pipeline, c.FileSystem, c.ProfileService)

	// --- API Handlers ---
	c.AuthHandlers = accountapi.NewAuthHandlers(c.AccountService)
	c.ImportHandlers = ingestionapi.NewImportHandlers(c.IngestionService, c.FileSystem)
	c.ProfileHandlers = profileapi.NewProfileHandlers(c.ProfileService)

	// --- Background Worker ---
	workers := envInt("IMPORT_WORKERS", 4)
	c.ImportWorker = worker.NewImportWorker(c.IngestionService, importQueue, workers)
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logx.Warnf("Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		logx.Warnf("Invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logx.Warnf("Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
