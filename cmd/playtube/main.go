package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoRepo "github.com/aryan091/playtube/internal/adapters/db/mongo"
	s3storage "github.com/aryan091/playtube/internal/adapters/storage/s3"
	httpTransport "github.com/aryan091/playtube/internal/adapters/transport/http"
	httpmw "github.com/aryan091/playtube/internal/adapters/transport/http/middleware"
	appsvc "github.com/aryan091/playtube/internal/app/user/service"
	apptoken "github.com/aryan091/playtube/internal/app/user/token"
	"github.com/aryan091/playtube/internal/infra/config"
	"github.com/aryan091/playtube/internal/infra/hash"
	lg "github.com/aryan091/playtube/internal/infra/log"
	"golang.org/x/sync/errgroup"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelConnect()

	mongoCli, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zapLog.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer mongoCli.Disconnect(context.Background())
	if err := mongoCli.Ping(ctx, nil); err != nil {
		zapLog.Fatal("mongodb ping failed", zap.Error(err))
	}

	hasher := hash.New(cfg.BcryptCost)
	userRepo := mongoRepo.NewMongoUserRepo(mongoCli.Database(cfg.MongoDB), hasher)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		zapLog.Fatal("failed to ensure indexes", zap.Error(err))
	}

	uploader, err := s3storage.NewUploader(ctx, cfg)
	if err != nil {
		zapLog.Fatal("failed to init uploader", zap.Error(err))
	}

	issuer := apptoken.NewJWTIssuer(cfg)
	svc := appsvc.New(userRepo, uploader, issuer, hasher, cfg, validator.New())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	httpTransport.NewHandler(svc, cfg, zapLog).Mount(router)

	router.GET("/healthz", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoCli.Ping(pingCtx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zapLog.Info("shutdown signal received")
	case <-gctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
