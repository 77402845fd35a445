package router

import (
	"time"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/config"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/handler"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/middleware"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/repository"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	listaRepo := repository.NewListaRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	conversionSvc := service.NewConversionService(
		listaRepo, pedidoRepo, rdb, time.Duration(cfg.CacheTTLSecs)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	conversionesH := handler.NewConversionesHandler(conversionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Lectura: cualquier rol de gestión; conversión: solo logística y gestión
		conv := v1.Group("/conversiones")
		{
			conv.GET("", middleware.RequireRole("proyectos", "coordinador", "logistico", "gestor", "admin"), conversionesH.Listar)
			conv.GET("/:lista_id", middleware.RequireRole("proyectos", "coordinador", "logistico", "gestor", "admin"), conversionesH.Detalle)
			conv.POST("", middleware.RequireRole("logistico", "gestor", "admin"), conversionesH.Convertir)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
