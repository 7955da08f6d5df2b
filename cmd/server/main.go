package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inkstand/internal/auth"
	"inkstand/internal/cache"
	"inkstand/internal/config"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/handler"
	"inkstand/internal/lock"
	"inkstand/internal/middleware"
	"inkstand/internal/repository/postgres"
	postgresCMS "inkstand/internal/repository/postgres/cms"
	"inkstand/internal/routes"
	serviceAuth "inkstand/internal/service/auth"
	serviceCMS "inkstand/internal/service/cms"
	"inkstand/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"base_domain", cfg.BaseDomain,
	)

	jwtVerifier, err := auth.NewVerifier(cfg.JWKSURL, cfg.JWTSecret, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	nodeRepo := postgresCMS.NewNodeRepository(repoConfig)
	tagRepo := postgresCMS.NewTagRepository(repoConfig)
	siteRepo := postgresCMS.NewSiteRepository(repoConfig)
	sessionRepo := postgresCMS.NewUploadSessionRepository(repoConfig)
	diaryRepo := postgresCMS.NewDiaryRepository(repoConfig)
	carouselRepo := postgresCMS.NewCarouselRepository(repoConfig)
	projectRepo := postgresCMS.NewProjectRepository(repoConfig)
	visitRepo := postgresCMS.NewVisitRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Redis is optional: without it the tenant cache and upload locks are per process
	var siteCache cmsSvc.SiteCache
	var uploadLocker cmsSvc.SessionLocker
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		siteCache = cache.NewSiteCache(rdb, cfg.TablePrefix, cfg.TenantCacheTTL)
		uploadLocker = lock.NewRedisLocker(rdb, cfg.TablePrefix+"upload:", 2*time.Minute)
	} else {
		logger.Warn("REDIS_URL not set: using in-process tenant cache and upload locks")
		siteCache = cache.NewMemorySiteCache(cfg.TenantCacheTTL)
		uploadLocker = lock.NewKeyedMutex()
	}

	fileStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	authorizer := serviceAuth.NewOwnerBasedAuthorizer(siteRepo)

	tagService := serviceCMS.NewTagService(tagRepo, txManager, authorizer, logger)
	itemService := serviceCMS.NewItemService(nodeRepo, tagService, txManager, authorizer, logger)
	articleService := serviceCMS.NewArticleService(nodeRepo, tagRepo, tagService, txManager, authorizer, logger)
	siteService := serviceCMS.NewSiteService(siteRepo, siteCache, authorizer, logger)
	uploadService := serviceCMS.NewUploadService(sessionRepo, fileStore, uploadLocker, cfg.MaxChunkBytes, logger)
	diaryService := serviceCMS.NewDiaryService(diaryRepo, tagRepo, tagService, txManager, authorizer, logger)
	showcaseService := serviceCMS.NewShowcaseService(carouselRepo, projectRepo, authorizer, logger)
	visitService := serviceCMS.NewVisitService(visitRepo, authorizer, logger)

	healthHandler := handler.NewHealthHandler(pool, logger)
	folderHandler := handler.NewFolderHandler(itemService, logger)
	articleHandler := handler.NewArticleHandler(articleService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	siteHandler := handler.NewSiteHandler(siteService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.MaxChunkBytes, cfg.PublicBaseURL, logger)
	diaryHandler := handler.NewDiaryHandler(diaryService, logger)
	showcaseHandler := handler.NewShowcaseHandler(showcaseService, logger)
	visitHandler := handler.NewVisitHandler(visitService, logger)

	logger.Info("services initialized")

	registry, err := routes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load route permissions: %v", err)
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	router := routes.NewRouter(mux, registry, middleware.RequireAuth(cfg.AuthCookie))

	router.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Folder tree
	router.HandleFunc("GET /api/folder", folderHandler.GetFolders)
	router.HandleFunc("POST /api/folder", folderHandler.AddItem)
	router.HandleFunc("DELETE /api/folder", folderHandler.DeleteItem)
	router.HandleFunc("PATCH /api/folder/name", folderHandler.Rename)
	router.HandleFunc("PATCH /api/folder/desc", folderHandler.UpdateDescription)
	router.HandleFunc("PATCH /api/folder/order", folderHandler.Reorder)

	// Articles
	router.HandleFunc("GET /api/article", articleHandler.GetArticle)
	router.HandleFunc("GET /api/article/list", articleHandler.ListArticles)
	router.HandleFunc("PUT /api/article/content", articleHandler.UpdateContent)
	router.HandleFunc("PUT /api/article/tags", articleHandler.UpdateTags)

	// Tags
	router.HandleFunc("GET /api/tag", tagHandler.ListTags)
	router.HandleFunc("POST /api/tag", tagHandler.CreateTag)
	router.HandleFunc("DELETE /api/tag", tagHandler.DeleteTag)

	// Sites
	router.HandleFunc("POST /api/site/init", siteHandler.InitSite)
	router.HandleFunc("POST /api/site/check", siteHandler.CheckSubdomain)
	router.HandleFunc("GET /api/site", siteHandler.GetSite)
	router.HandleFunc("PUT /api/site", siteHandler.UpdateSite)
	router.HandleFunc("GET /api/site/list", siteHandler.ListSites)
	router.HandleFunc("POST /api/site/visit", visitHandler.RecordVisit)
	router.HandleFunc("GET /api/site/visit/stats", visitHandler.GetStats)
	router.HandleFunc("GET /api/site/visit/realtime", visitHandler.GetRealtime)

	// Diaries
	router.HandleFunc("GET /api/diary", diaryHandler.ListByDate)
	router.HandleFunc("POST /api/diary", diaryHandler.CreateDiary)
	router.HandleFunc("PUT /api/diary", diaryHandler.UpdateDiary)
	router.HandleFunc("GET /api/diary/list", diaryHandler.ListDiaries)
	router.HandleFunc("GET /api/diary/content", diaryHandler.GetDiary)
	router.HandleFunc("GET /api/diary/date", diaryHandler.ListDates)
	router.HandleFunc("GET /api/diary/timeline", diaryHandler.Timeline)

	// Home page carousel and project showcase
	router.HandleFunc("GET /api/base/carousel", showcaseHandler.ListCarousels)
	router.HandleFunc("POST /api/base/carousel", showcaseHandler.CreateCarousel)
	router.HandleFunc("PUT /api/base/carousel", showcaseHandler.UpdateCarousel)
	router.HandleFunc("DELETE /api/base/carousel", showcaseHandler.DeleteCarousel)
	router.HandleFunc("GET /api/base/project", showcaseHandler.ListProjects)
	router.HandleFunc("POST /api/base/project", showcaseHandler.CreateProject)
	router.HandleFunc("PUT /api/base/project", showcaseHandler.UpdateProject)
	router.HandleFunc("DELETE /api/base/project", showcaseHandler.DeleteProject)
	router.HandleFunc("POST /api/base/project/like", showcaseHandler.LikeProject)

	// Uploads
	router.HandleFunc("POST /api/upload", uploadHandler.UploadChunk)
	router.HandleFunc("GET /api/public/{file}", uploadHandler.ServePublic)

	if err := router.Verify(); err != nil {
		log.Fatalf("Route table mismatch: %v", err)
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Tenant → Auth → Routes
	var h http.Handler = mux
	h = middleware.Authenticate(jwtVerifier, cfg.AuthCookie, logger)(h)
	h = middleware.Tenant(siteService, cfg.BaseDomain, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be outermost to answer OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // chunk bodies can be large
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
