package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecommerce-api/internal/lib/api/response"
	"github.com/linemk/ecommerce-api/internal/service"
)

// ProductRequest - тело запросов на создание и обновление товара.
// Image - строковая ссылка на уже загруженный файл.
type ProductRequest struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Image       string           `json:"image" validate:"omitempty,max=2048"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Price:       *r.Price,
		Description: r.Description,
		Image:       r.Image,
	}
}

const productNotFound = "Product not found"

// ListProductsHandler обрабатывает запрос GET /v1/products
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListProducts(r.Context())
		if err != nil {
			writeError(w, logger, err, productNotFound, "Error fetching products")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("Products fetched successfully", map[string]any{"products": products}))
	}
}

// GetProductHandler обрабатывает запрос GET /v1/product/{productId}
func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "productId")
		if err != nil {
			writeError(w, logger, err, productNotFound, "")
			return
		}

		product, err := catalog.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, logger, err, productNotFound, "Error fetching product")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("Product fetched successfully", map[string]any{"product": product}))
	}
}

// CreateProductHandler обрабатывает запрос POST /v1/addproduct
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req ProductRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, logger, err, "", "")
			return
		}

		product, err := catalog.CreateProduct(r.Context(), req.input())
		if err != nil {
			writeError(w, logger, err, productNotFound, "Error adding product")
			return
		}

		response.WriteJSON(w, logger, http.StatusCreated,
			response.OK("Product added successfully", map[string]any{"product": product}))
	}
}

// UpdateProductHandler обрабатывает запрос PUT /v1/product/update/{productId}
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "productId")
		if err != nil {
			writeError(w, logger, err, productNotFound, "")
			return
		}

		var req ProductRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, logger, err, "", "")
			return
		}

		product, err := catalog.UpdateProduct(r.Context(), id, req.input())
		if err != nil {
			writeError(w, logger, err, productNotFound, "Error updating product")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK,
			response.OK("Product updated successfully", map[string]any{"product": product}))
	}
}

// DeleteProductHandler обрабатывает запрос DELETE /v1/product/{productId}
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "productId")
		if err != nil {
			writeError(w, logger, err, productNotFound, "")
			return
		}

		if err := catalog.DeleteProduct(r.Context(), id); err != nil {
			writeError(w, logger, err, productNotFound, "Error deleting product")
			return
		}

		response.WriteJSON(w, logger, http.StatusOK, response.OK("Product deleted successfully", nil))
	}
}
