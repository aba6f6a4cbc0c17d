package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scan-api/internal/analyses"
	"resume-scan-api/internal/convert"
	"resume-scan-api/internal/llm"
	"resume-scan-api/internal/llm/openai"
	"resume-scan-api/internal/sessions"
	"resume-scan-api/internal/shared/config"
	"resume-scan-api/internal/shared/metrics"
	"resume-scan-api/internal/shared/server/middleware"
	"resume-scan-api/internal/shared/server/respond"
	"resume-scan-api/internal/shared/storage/db"
	"resume-scan-api/internal/shared/storage/object"
	localstore "resume-scan-api/internal/shared/storage/object/local"
	s3store "resume-scan-api/internal/shared/storage/object/s3"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var sessionRepo sessions.Repo
	if sqlDB != nil {
		sessionRepo = &sessions.PGRepo{DB: sqlDB}
	} else {
		sessionRepo = sessions.NewMemoryRepo()
	}

	var archive object.ObjectStore
	switch cfg.ObjectStoreType {
	case "local":
		archive = localstore.New(cfg.LocalStoreDir)
	case "s3":
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("failed to init s3 store, archival disabled: %v", err)
		} else {
			archive = store
		}
	}

	var converter analyses.Converter
	convertClient, err := convert.NewClient(cfg.ConvertAPIURL, cfg.ConvertAPIKey, nil)
	if err != nil {
		log.Printf("conversion client not configured: %v", err)
	} else {
		converter = convertClient
	}

	var llmClient llm.Client = llm.PlaceholderClient{}
	openaiClient, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.VisionModel, cfg.AnalysisModel)
	if err != nil {
		log.Printf("openai client not configured: %v", err)
	} else {
		llmClient = openaiClient
	}

	analysisSvc := &analyses.Service{
		Convert:          converter,
		LLM:              llmClient,
		Sessions:         sessionRepo,
		Archive:          archive,
		Channel:          cfg.Channel,
		LocalTextExtract: cfg.LocalTextExtract,
	}
	analysisHandler := &analyses.Handler{Service: analysisSvc}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	analysisHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
