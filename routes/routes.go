package routes

import (
	"net/http"
	"strings"
	"time"

	"echochats/config"
	"echochats/handlers"
	"echochats/images"
	"echochats/middleware"
	"echochats/utils"
	"echochats/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	UploadsURLPrefix = "/static/uploads"
	ImagesURLPrefix  = "/images"
)

func SetupRouter(cfg *config.Config, h *handlers.Handler) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(utils.GinLogWriter()), gin.Recovery())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", h.Health)
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "EchoChats is running",
			"time":    time.Now().Unix(),
		})
	})

	if cfg.ImageStore == config.ImageStoreLocal {
		router.Static(UploadsURLPrefix, cfg.UploadDir)
	}
	if _, ok := h.Images.(images.Opener); ok {
		router.GET(ImagesURLPrefix+"/:id", h.GetImage)
	}

	router.Use(middleware.LoadSession(h.Sessions))

	authLimiter := middleware.RateLimit(
		middleware.NewIPRateLimiter(cfg.AuthRateLimit, time.Minute),
		http.MethodPost,
	)

	// Pages
	router.GET("/", h.Index)
	router.GET("/home", h.Home)
	router.GET("/signup", h.SignupPage)
	router.POST("/signup", authLimiter, h.Signup)
	router.GET("/login", h.LoginPage)
	router.POST("/login", authLimiter, h.Login)
	router.GET("/logout", h.Logout)
	router.GET("/comments", h.CommentsPage)

	router.GET("/user", middleware.RequireLogin("Please log in to view your profile"), h.Profile)

	account := router.Group("/")
	account.Use(middleware.RequireLogin("Please log in first"))
	account.POST("/change_profile_pic", h.ChangeProfilePic)
	account.POST("/delete_account", h.DeleteAccount)

	// JSON API
	api := router.Group("/api")
	api.GET("/comments", h.ListComments)
	api.POST("/like_comment", h.LikeComment)

	protected := api.Group("")
	protected.Use(middleware.RequireLoginAPI())
	protected.POST("/comments", h.CreateComment)
	protected.POST("/delete_comment", h.DeleteComment)
	protected.POST("/reply", h.ReplyToComment)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return router, nil
}
