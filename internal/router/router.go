package router

import (
	"time"

	"supplierledger/internal/config"
	"supplierledger/internal/handler"
	"supplierledger/internal/middleware"
	"supplierledger/internal/repository"
	"supplierledger/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; the lookup cache is then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(""))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	providerRepo := repository.NewProviderRepository(db)
	providerSvc := service.NewProviderService(providerRepo, rdb, cfg.CacheTTL())
	providersH := handler.NewProvidersHandler(providerSvc)

	r.GET("/health", handler.Health(db, rdb))

	readers := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleBuyer, middleware.RoleViewer)
	writers := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleBuyer)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		prov := v1.Group("/providers")
		{
			// Static segments are registered next to /:id; gin resolves them first.
			prov.GET("", readers, providersH.List)
			prov.GET("/active", readers, providersH.ListActive)
			prov.GET("/search", readers, providersH.Search)
			prov.GET("/cities", readers, providersH.Cities)
			prov.GET("/countries", readers, providersH.Countries)
			prov.GET("/:id", readers, providersH.GetByID)

			prov.POST("", writers, providersH.Create)
			prov.PUT("/:id", writers, providersH.Update)
			prov.DELETE("/:id", middleware.RequireRole(middleware.RoleAdmin), providersH.Deactivate)
			prov.PATCH("/:id/activate", middleware.RequireRole(middleware.RoleAdmin), providersH.Activate)
		}
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
