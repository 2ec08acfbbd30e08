package router

import (
	"time"

	"kashflow/internal/config"
	"kashflow/internal/handler"
	"kashflow/internal/middleware"
	"kashflow/internal/repository"
	"kashflow/internal/service"
	"kashflow/internal/txn"
	"kashflow/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Coordinator/Repository ← DB/Redis
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
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// ── Transaction coordinator ──────────────────────────────────────────────
	// Each storage unit of work is bounded by the configured timeout; a
	// deadline hit is classified transient and retried on a fresh attempt.
	coord := txn.New(db).WithTimeout(time.Duration(cfg.DBTimeoutSeconds) * time.Second)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	creditoSvc := service.NewCreditoService(clienteRepo, coord)
	productoSvc := service.NewProductoService(productoRepo, inventarioSvc)
	clienteSvc := service.NewClienteService(clienteRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, clienteRepo, usuarioRepo,
		inventarioSvc, creditoSvc, coord, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc, inventarioSvc)
	clientesH := handler.NewClientesHandler(clienteSvc, creditoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	interesesH := handler.NewInteresesHandler(creditoSvc, cfg.TasaInteres())

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, administrador — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("vendedor", "administrador"), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.RequireRole("vendedor", "administrador"), ventasH.ListarVentas)
		v1.GET("/ventas/:id", middleware.RequireRole("vendedor", "administrador"), ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", middleware.RequireRole("administrador"), ventasH.AnularVenta)

		v1.GET("/productos", middleware.RequireRole("vendedor", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("vendedor", "administrador"), productosH.Obtener)
		v1.GET("/productos/alertas", middleware.RequireRole("vendedor", "administrador"), productosH.AlertasStock)
		// Write operations — administrador only
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/stock", productosH.AjustarStock)
		}

		v1.GET("/clientes", middleware.RequireRole("vendedor", "administrador"), clientesH.Listar)
		v1.GET("/clientes/:id", middleware.RequireRole("vendedor", "administrador"), clientesH.Obtener)
		v1.GET("/clientes/:id/intereses", middleware.RequireRole("vendedor", "administrador"), clientesH.HistorialCortes)
		v1.POST("/clientes", middleware.RequireRole("vendedor", "administrador"), clientesH.Crear)
		v1.POST("/clientes/:id/abonos", middleware.RequireRole("vendedor", "administrador"), clientesH.RegistrarAbono)

		// Manual interest run — for re-running a failed month
		v1.POST("/intereses/corte", middleware.RequireRole("administrador"), interesesH.EjecutarCorte)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", authH.CrearUsuario)
		}
	}

	return r
}
