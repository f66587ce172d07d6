package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linemk/ecommerce-api/internal/app/handlers"
	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ecommerce-api/internal/lib/api/response"
	"github.com/linemk/ecommerce-api/internal/lib/logger/handlers/urllog"
	"github.com/linemk/ecommerce-api/internal/lib/metrics"
	"github.com/linemk/ecommerce-api/internal/service"
)

// Services - бизнес-логика, которую обслуживает роутер
type Services struct {
	Auth        service.AuthServiceInterface
	Catalog     service.CatalogService
	Checkout    service.CheckoutService
	Transaction service.TransactionService
}

// NewRouter собирает все маршруты API.
// Один и тот же путь может требовать разные роли в зависимости от метода.
func NewRouter(log *slog.Logger, jwtSecret string, svc Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(metrics.Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, log, http.StatusOK, response.OK("ok", nil))
	})
	router.Handle("/metrics", metrics.Handler())

	router.Route("/v1", func(r chi.Router) {
		// публичные эндпоинты
		r.Post("/register", handlers.RegisterHandler(log, svc.Auth))
		r.Post("/login", handlers.LoginHandler(log, svc.Auth))
		r.Get("/products", handlers.ListProductsHandler(log, svc.Catalog))

		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.NewJWTMiddleware(log, jwtSecret))

			adminOnly := jwtmiddleware.RequireRole(log, models.RoleAdmin)
			userOnly := jwtmiddleware.RequireRole(log, models.RoleUser)
			userOrAdmin := jwtmiddleware.RequireRole(log, models.RoleUser, models.RoleAdmin)

			// каталог
			r.With(adminOnly).Get("/product/{productId}", handlers.GetProductHandler(log, svc.Catalog))
			r.With(adminOnly).Post("/addproduct", handlers.CreateProductHandler(log, svc.Catalog))
			r.With(adminOnly).Put("/product/update/{productId}", handlers.UpdateProductHandler(log, svc.Catalog))
			r.With(adminOnly).Delete("/product/{productId}", handlers.DeleteProductHandler(log, svc.Catalog))

			// оформление заказа
			r.With(userOnly).Post("/checkout", handlers.CheckoutHandler(log, svc.Checkout))

			// заказы
			r.With(adminOnly).Get("/transactions", handlers.ListTransactionsHandler(log, svc.Transaction))
			r.With(userOrAdmin).Get("/transactions/{userId}", handlers.ListUserTransactionsHandler(log, svc.Transaction))
			r.Get("/transactions/detail/{transactionId}", handlers.TransactionDetailHandler(log, svc.Transaction))
			r.With(userOrAdmin).Put("/transactions/cancel/{transactionId}", handlers.CancelTransactionHandler(log, svc.Transaction))
			r.With(adminOnly).Put("/transactions/update_status/{transactionId}", handlers.UpdateTransactionStatusHandler(log, svc.Transaction))
			r.With(adminOnly).Delete("/transactions/{transactionId}", handlers.DeleteTransactionHandler(log, svc.Transaction))
		})
	})

	return router
}
