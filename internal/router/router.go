package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dineup/api/internal/cart"
	"github.com/dineup/api/internal/config"
	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/delivery"
	"github.com/dineup/api/internal/enum"
	"github.com/dineup/api/internal/handler"
	mw "github.com/dineup/api/internal/middleware"
	"github.com/dineup/api/internal/service"
	"github.com/dineup/api/internal/ws"
)

const deliveryQuoteTTL = 5 * time.Minute

// New creates a chi router with all application routes wired up. Public
// storefront routes are unauthenticated; admin routes require a JWT scoped
// to the store in the URL.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Shared services
	calculator := delivery.NewCalculator(delivery.NewMapboxClient(cfg.MapboxToken))
	quoteCache := delivery.NewCache(deliveryQuoteTTL)
	carts := cart.NewManager()
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, calculator)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	storefrontHandler := handler.NewStorefrontHandler(queries, calculator, quoteCache)
	cartHandler := handler.NewCartHandler(queries, carts)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	menuAdminHandler := handler.NewMenuAdminHandler(queries)
	offerHandler := handler.NewOfferHandler(queries)
	storeAdminHandler := handler.NewStoreAdminHandler(queries)
	exploreHandler := handler.NewExploreHandler(queries)

	// Auth (public)
	authHandler.RegisterRoutes(r)

	// Explore feed (public read)
	exploreHandler.RegisterPublicRoutes(r)

	// WebSocket live order feed (auth via query param)
	r.Get("/ws/stores/{sid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Public storefront
	r.Route("/stores/{sid}", func(r chi.Router) {
		storefrontHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r)
		orderHandler.RegisterPublicRoutes(r)

		// Store-scoped admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireStore)

			menuAdminHandler.RegisterRoutes(r)
			offerHandler.RegisterRoutes(r)
			storeAdminHandler.RegisterRoutes(r)
			orderHandler.RegisterAdminRoutes(r)
		})
	})

	// Superadmin explore curation
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.RoleSuperadmin))
		r.Route("/superadmin", exploreHandler.RegisterAdminRoutes)
	})

	return r
}
