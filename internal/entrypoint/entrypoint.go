package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bamboo/internal/auth"
	"github.com/mrlokans/bamboo/internal/config"
	"github.com/mrlokans/bamboo/internal/crypto"
	"github.com/mrlokans/bamboo/internal/database"
	"github.com/mrlokans/bamboo/internal/database/courses"
	"github.com/mrlokans/bamboo/internal/database/enrollments"
	"github.com/mrlokans/bamboo/internal/database/groups"
	"github.com/mrlokans/bamboo/internal/database/lessons"
	"github.com/mrlokans/bamboo/internal/database/pages"
	"github.com/mrlokans/bamboo/internal/database/resources"
	"github.com/mrlokans/bamboo/internal/database/results"
	"github.com/mrlokans/bamboo/internal/database/userlessons"
	"github.com/mrlokans/bamboo/internal/database/users"
	http_controllers "github.com/mrlokans/bamboo/internal/http"
	"github.com/mrlokans/bamboo/internal/scheduler"
	"github.com/mrlokans/bamboo/internal/status"
	"github.com/mrlokans/bamboo/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown: wait for interrupt signal, then drain with the
	// configured timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bamboo v%s", version)

	// Initialize database
	dsn := cfg.Database.Path
	if cfg.Database.Driver == "postgres" {
		dsn = cfg.Database.DSN
	}
	db, err := database.NewDatabase(cfg.Database.Driver, dsn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	userRepo := users.NewRepository(db.DB)
	courseRepo := courses.NewRepository(db.DB)
	lessonRepo := lessons.NewRepository(db.DB)
	enrollRepo := enrollments.NewRepository(db.DB)
	recordRepo := userlessons.NewRepository(db.DB)
	resultRepo := results.NewRepository(db.DB)
	resourceRepo := resources.NewRepository(db.DB)
	pageRepo := pages.NewRepository(db.DB)
	groupRepo := groups.NewRepository(db.DB)

	// Status machines
	courseMachine := status.NewCourseManager(enrollRepo, courseRepo, recordRepo)
	lessonMachine := status.NewLessonManager(recordRepo, courseRepo, courseMachine, resultRepo)

	// Authentication
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = generateSecret()
		log.Printf("Generated JWT secret (set AUTH_JWT_SECRET to persist sessions across restarts)")
	}
	authService := auth.NewService(userRepo, jwtSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)

	// Share-token encryption
	sharingKey := cfg.Sharing.Key
	if sharingKey == "" {
		sharingKey, err = crypto.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate sharing key: %v", err)
		}
		log.Printf("Generated sharing key (set SHARING_KEY to keep share links valid across restarts)")
	}
	rawKey, err := base64.StdEncoding.DecodeString(sharingKey)
	if err != nil {
		log.Fatalf("SHARING_KEY is not valid base64: %v", err)
	}
	shareCodec, err := crypto.NewShareCodec(rawKey)
	if err != nil {
		log.Fatalf("Failed to initialize share codec: %v", err)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Tasks.DBPath, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewRecomputeProgressQueue(courseRepo, enrollRepo),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Lesson status changes refresh the cached course progress
		// through the queue instead of waiting for the next sweep
		lessonMachine.SetRecomputeQueuer(taskClient)
	}

	// Periodic progress rollup rides on the task queue
	var rollup *scheduler.ProgressRollupScheduler
	if cfg.ProgressRollup.Enabled && taskClient != nil {
		rollup = scheduler.NewProgressRollupScheduler(enrollRepo, taskClient, cfg.ProgressRollup.Schedule)
		if err := rollup.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start progress rollup scheduler: %v", err)
		}
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		AuthService:   authService,
		ShareCodec:    shareCodec,
		Users:         userRepo,
		PageOwners:    userRepo,
		Courses:       courseRepo,
		Lessons:       lessonRepo,
		Enrollments:   enrollRepo,
		UserLessons:   recordRepo,
		Results:       resultRepo,
		Resources:     resourceRepo,
		Pages:         pageRepo,
		Groups:        groupRepo,
		CourseMachine: courseMachine,
		LessonMachine: lessonMachine,
		TaskClient:    taskClient,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if rollup != nil {
			rollup.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

func generateSecret() string {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
