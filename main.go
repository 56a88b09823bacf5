package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echochats/config"
	"echochats/database"
	"echochats/handlers"
	"echochats/images"
	"echochats/routes"
	"echochats/session"
	"echochats/store"
	"echochats/store/memory"
	"echochats/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type stores struct {
	users    store.UserStore
	comments store.CommentStore
	sessions store.SessionStore
}

func main() {
	utils.LogInfo("Starting EchoChats server")

	cfg, err := config.Load()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}
	utils.SetLevel(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx := context.Background()

	var client *mongo.Client
	var db *mongo.Database
	var st stores

	switch cfg.Storage {
	case config.StorageMongo:
		client, err = database.ConnectWithRetry(ctx, cfg.MongoURI, 3, 2*time.Second)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		db = client.Database(cfg.DBName)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to create indexes")
		}
		st = stores{
			users:    database.NewUserStore(db),
			comments: database.NewCommentStore(db),
			sessions: database.NewSessionStore(db),
		}
	case config.StorageMemory:
		utils.LogWarn("Using in-memory storage, data is lost on restart")
		st = stores{
			users:    memory.NewUserMemoryStorage(),
			comments: memory.NewCommentMemoryStorage(),
			sessions: memory.NewSessionMemoryStorage(),
		}
	}

	imageStore, err := newImageStore(cfg, db)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to set up image storage")
	}

	sessions := session.NewManager(st.sessions, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	h := handlers.New(st.users, st.comments, sessions, imageStore, cfg.HeaderText)

	router, err := routes.SetupRouter(cfg, h)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to set up router")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.LogInfo("Server listening on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Forced shutdown")
	}
	if err := database.Disconnect(client); err != nil {
		utils.LogError(err, "Failed to disconnect from MongoDB")
	}

	utils.LogSuccess("Server stopped gracefully")
}

func newImageStore(cfg *config.Config, db *mongo.Database) (images.Store, error) {
	switch cfg.ImageStore {
	case config.ImageStoreGridFS:
		return images.NewGridFSStore(db, routes.ImagesURLPrefix)
	case config.ImageStoreCloudinary:
		return images.NewCloudinaryStore(cfg.CloudinaryURL, "echochats/profile_pics")
	default:
		return images.NewLocalStore(cfg.UploadDir, routes.UploadsURLPrefix), nil
	}
}
