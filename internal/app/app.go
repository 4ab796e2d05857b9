package app

import (
	"Learnify/internal/app/server"
	"Learnify/internal/config"
	"Learnify/internal/delivery/http"
	"Learnify/internal/delivery/http/controllers"
	"Learnify/internal/events"
	"Learnify/internal/service"
	"Learnify/internal/service/auth"
	"Learnify/internal/service/catalog"
	"Learnify/internal/service/comment"
	"Learnify/internal/service/course"
	"Learnify/internal/service/post"
	"Learnify/internal/service/progress"
	"Learnify/internal/service/upload"
	"Learnify/internal/service/user"
	"Learnify/internal/service/youtube"
	"Learnify/internal/storage/elastic"
	"Learnify/internal/storage/minio_storage"
	"Learnify/internal/storage/mongo"
	"Learnify/internal/storage/redis_cache"
	"Learnify/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingFunc adapts a plain probe to controllers.Pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)
	ctx := context.Background()

	store, err := mongo.NewMongoStorage(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.ErrorErr("error closing database", err)
		}
	}()
	if err := store.EnsureIndexes(ctx); err != nil {
		log.FatalErr("error creating indexes", err)
	}

	minioStorage, err := minio_storage.NewMinioStorage(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
	if err != nil {
		log.FatalErr("error connecting to object storage", err)
	}
	media := minio_storage.NewMediaStorage(minioStorage, cfg.Minio.Upload.DownloadTTL, cfg.Minio.PublicBaseURL)

	publisher, closePublisher, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
	if err != nil {
		log.FatalErr("error connecting to nats", err)
	}
	defer closePublisher()

	health := map[string]controllers.Pinger{"mongo": store}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis_cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.FatalErr("error connecting to redis", err)
		}
		defer redisClient.Close()
		health["redis"] = pingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	} else {
		log.Info("redis addr is empty, feed cache is disabled")
	}
	feedCache := redis_cache.NewFeedCache(redisClient, cfg.Redis.FeedTTL)

	userRepo := mongo.NewUserMongo(store)
	courseRepo := mongo.NewCourseMongo(store)
	youtubeRepo := mongo.NewYouTubeCourseMongo(store)
	progressRepo := mongo.NewProgressMongo(store)
	ratingRepo := mongo.NewRatingMongo(store)
	postRepo := mongo.NewPostMongo(store)
	commentRepo := mongo.NewCommentMongo(store)

	verifier, err := auth.NewVerifier(cfg.Auth.Algorithm, cfg.Auth.SecretKey, cfg.Auth.PublicKeyPath, cfg.Auth.Issuer)
	if err != nil {
		log.FatalErr("error building token verifier", err)
	}

	var courses *course.CourseService
	var catalogService *catalog.CatalogService
	if len(cfg.ES.Hosts) > 0 {
		esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
		if err != nil {
			log.FatalErr("error connecting to elasticsearch", err)
		}
		search := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
		if err := search.CreateIndexIfNotExist(ctx); err != nil {
			log.FatalErr("error creating search index", err)
		}
		courses = course.NewCourseService(log, courseRepo, search, media, userRepo, progressRepo, ratingRepo, publisher)
		catalogService = catalog.NewCatalogService(log, courses, courseRepo, search, progressRepo, ratingRepo, publisher)
	} else {
		log.Info("elasticsearch hosts are empty, course search falls back to title match")
		courses = course.NewCourseService(log, courseRepo, nil, media, userRepo, progressRepo, ratingRepo, publisher)
		catalogService = catalog.NewCatalogService(log, courses, courseRepo, nil, progressRepo, ratingRepo, publisher)
	}

	users := user.NewUserService(log, userRepo, postRepo, media, publisher)
	u := service.Collection{
		Auth:     auth.NewAuthService(log, verifier, userRepo, cfg.Auth.AdminExternalIDs, cfg.Auth.WebhookSecret),
		Courses:  courses,
		YouTube:  youtube.NewYouTubeCourseService(log, youtubeRepo),
		Catalog:  catalogService,
		Progress: progress.NewProgressService(log, courseRepo, progressRepo),
		Uploads: upload.NewUploadService(log, media, upload.TTLPolicy{
			Base:           cfg.Minio.Upload.BaseTTL,
			BytesPerSecond: cfg.Minio.Upload.BytesPerSecond,
			Max:            cfg.Minio.Upload.MaxTTL,
		}),
		Users:    users,
		Posts:    post.NewPostService(log, postRepo, commentRepo, users, media, feedCache, publisher),
		Comments: comment.NewCommentService(log, commentRepo, postRepo, users),
	}

	r := http.InitRoutes(log, u, http.Options{
		AllowOrigins:  cfg.HTTPServer.AllowOrigins,
		SessionCookie: cfg.Auth.SessionCookie,
		Health:        health,
	})

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("http server stopped", err)
	}
	if err := srv.Shutdown(10 * time.Second); err != nil {
		log.ErrorErr("error shutting down http server", err)
	}
}
