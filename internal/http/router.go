package httpserver

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/auth"
	"workforce_crm/internal/crm"
	"workforce_crm/internal/http/handlers"
)

type RouterOptions struct {
	DB             *gorm.DB
	Service        *crm.Service
	Audit          *audit.Recorder
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	// LoginRateLimit caps login attempts per client IP per minute. Zero
	// disables the limit.
	LoginRateLimit int
}

func NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(allowed, "*"),
		MaxAge:           10 * time.Minute,
	}))

	metrics := NewMetrics()
	r.Use(metrics.Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	svc, rec := opts.Service, opts.Audit
	authMW := auth.JWT(opts.DB, opts.JWTSecret)
	admin := auth.RequireAdmin()

	login := []gin.HandlerFunc{handlers.LoginHandler(svc, rec, opts.JWTSecret, opts.TokenTTL)}
	if opts.LoginRateLimit > 0 {
		login = append([]gin.HandlerFunc{rateLimit(httprate.LimitByIP(opts.LoginRateLimit, time.Minute))}, login...)
	}
	r.POST("/api/auth/login", login...)
	r.POST("/api/auth/logout", handlers.LogoutHandler())

	api := r.Group("/api", authMW)
	{
		api.GET("/auth/me", handlers.MeHandler())
		api.PUT("/auth/profile", handlers.UpdateProfile(svc, rec))
		api.PUT("/auth/password", handlers.ChangePassword(svc, rec))

		// Users
		api.GET("/users", admin, handlers.ListUsers(svc))
		api.POST("/users", admin, handlers.CreateUser(svc, rec))
		api.GET("/users/stats", admin, handlers.UserStats(svc))

		// Catalog
		api.GET("/worker-types", handlers.ListWorkerTypes(svc))
		api.POST("/worker-types", admin, handlers.CreateWorkerType(svc, rec))
		api.DELETE("/worker-types/:id", admin, handlers.DeleteWorkerType(svc, rec))
		api.GET("/positions", handlers.ListPositions(svc))
		api.POST("/positions", admin, handlers.CreatePosition(svc, rec))
		api.DELETE("/positions/:id", admin, handlers.DeletePosition(svc, rec))
		api.GET("/statuses", handlers.ListStatuses(svc))
		api.POST("/statuses", admin, handlers.CreateStatus(svc, rec))
		api.DELETE("/statuses/:id", admin, handlers.DeleteStatus(svc, rec))
		api.GET("/tags", handlers.ListTags(svc))
		api.POST("/tags", admin, handlers.CreateTag(svc, rec))
		api.DELETE("/tags/:id", admin, handlers.DeleteTag(svc, rec))

		// Workers
		api.GET("/workers", handlers.ListWorkers(svc))
		api.GET("/workers/:id", handlers.GetWorker(svc))
		api.POST("/workers", handlers.CreateWorker(svc, rec))
		api.PUT("/workers/:id", handlers.UpdateWorker(svc, rec))
		api.DELETE("/workers/:id", admin, handlers.DeleteWorker(svc, rec))
		api.POST("/workers/:id/tags/:tag_id", handlers.AddWorkerTag(svc, rec))
		api.DELETE("/workers/:id/tags/:tag_id", handlers.RemoveWorkerTag(svc, rec))

		// Export
		api.GET("/export/workers", handlers.ExportWorkers(svc))
		api.GET("/export/workers/:user_id", admin, handlers.ExportWorkers(svc))
		api.GET("/export/all", admin, handlers.ExportAllWorkers(svc))

		// Projects
		api.GET("/projects", handlers.ListProjects(svc))
		api.GET("/projects/:id", handlers.GetProject(svc))
		api.POST("/projects", admin, handlers.CreateProject(svc, rec))
		api.PUT("/projects/:id", handlers.UpdateProject(svc, rec))
		api.DELETE("/projects/:id", admin, handlers.DeleteProject(svc, rec))
		api.POST("/projects/:id/recruiters", admin, handlers.AssignRecruiter(svc, rec))
		api.DELETE("/projects/:id/recruiters/:user_id", admin, handlers.UnassignRecruiter(svc, rec))
		api.POST("/projects/:id/workers", handlers.AddProjectWorker(svc, rec))
		api.DELETE("/projects/:id/workers/:worker_id", handlers.RemoveProjectWorker(svc, rec))
		api.PUT("/projects/:id/workers/:worker_id/status", handlers.UpdateProjectWorkerStatus(svc, rec))

		// Audit Trail
		api.GET("/audit", admin, handlers.ListAudit(rec))
	}

	return r
}

// rateLimit runs a net/http limiter in front of the rest of the gin chain.
func rateLimit(limiter func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		limiter(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
