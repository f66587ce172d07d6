package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/events"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// ProductCache - кеш карточек товаров по id
type ProductCache interface {
	Get(ctx context.Context, id int64) (*models.Product, bool)
	Set(ctx context.Context, id int64, product *models.Product)
	Delete(ctx context.Context, id int64)
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64) (*models.Product, bool) { return nil, false }
func (nopCache) Set(context.Context, int64, *models.Product) {}
func (nopCache) Delete(context.Context, int64) {}

// ProductInput - поля товара при создании и обновлении
type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
}

type CatalogService interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type catalogService struct {
	log          *slog.Logger
	productRepo  storage.ProductStorage
	cache        ProductCache
	publisher    events.Publisher
	imageBaseURL string
}

// NewCatalogService создаёт сервис каталога. cache может быть nil, тогда кеширование отключено.
func NewCatalogService(
	log *slog.Logger,
	productRepo storage.ProductStorage,
	cache ProductCache,
	publisher events.Publisher,
	imageBaseURL string,
) CatalogService {
	if cache == nil {
		cache = nopCache{}
	}
	return &catalogService{
		log:          log,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

func validateProduct(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("The name field is required.")
	}
	if len(in.Name) > 255 {
		return validationError("The name must not be greater than 255 characters.")
	}
	if strings.TrimSpace(in.Description) == "" {
		return validationError("The description field is required.")
	}
	if in.Price.IsNegative() {
		return validationError("The price must be at least 0.")
	}
	return nil
}

// withImageURL возвращает копию товара с полной ссылкой на изображение
func (s *catalogService) withImageURL(p *models.Product) *models.Product {
	if s.imageBaseURL == "" || p.Image == "" || strings.Contains(p.Image, "://") {
		return p
	}
	out := *p
	out.Image = s.imageBaseURL + "/" + strings.TrimLeft(p.Image, "/")
	return &out
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"

	products, err := s.productRepo.GetProducts(ctx)
	if err != nil {
		s.log.Error("failed to get products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get products: %w", op, err)
	}

	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		out = append(out, s.withImageURL(p))
	}
	return out, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if cached, ok := s.cache.Get(ctx, id); ok {
		logger.Debug("product served from cache")
		return s.withImageURL(cached), nil
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Info("product not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	s.cache.Set(ctx, id, product)
	return s.withImageURL(product), nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("name", in.Name))

	if err := validateProduct(in); err != nil {
		logger.Warn("invalid product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.CreateProduct(ctx, &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
	})
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	publish(ctx, logger, s.publisher, events.NewEvent(events.ProductCreated, product.ID, product))
	logger.Info("product created", slog.Int64("productID", product.ID))
	return s.withImageURL(product), nil
}

// UpdateProduct перезаписывает товар. Пустой Image сохраняет прежнее изображение.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	const op = "service.CatalogService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := validateProduct(in); err != nil {
		logger.Warn("invalid product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.UpdateProduct(ctx, &models.Product{
		ID:          id,
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
	})
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Info("product not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update product: %w", op, err)
	}

	s.cache.Delete(ctx, id)
	publish(ctx, logger, s.publisher, events.NewEvent(events.ProductUpdated, id, product))
	logger.Info("product updated")
	return s.withImageURL(product), nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "service.CatalogService.DeleteProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Info("product not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete product: %w", op, err)
	}

	s.cache.Delete(ctx, id)
	publish(ctx, logger, s.publisher, events.NewEvent(events.ProductDeleted, id, nil))
	logger.Info("product deleted")
	return nil
}
