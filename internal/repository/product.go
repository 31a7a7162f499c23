package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ucp-merchant-demo/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindMany(ctx context.Context, productIDs []string) ([]*model.Product, error)
	Search(ctx context.Context, query string) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "sku_pixel", Title: "Google Pixel 9 Pro", Description: "The latest AI-powered smartphone from Google.", Price: 99900, Currency: "USD", ImageURL: "https://store.google.com/pixel.jpg", WeightGrams: 500},
		{ID: "sku_case", Title: "Pixel 9 Case - Charcoal", Description: "Durable fabric case for Pixel 9.", Price: 2900, Currency: "USD", ImageURL: "https://store.google.com/case.jpg", WeightGrams: 100},
		{ID: "sku_buds", Title: "Pixel Buds Pro 2", Description: "Noise cancelling wireless earbuds.", Price: 19900, Currency: "USD", ImageURL: "https://store.google.com/buds.jpg", WeightGrams: 200},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find product %s: %w", productID, ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", productID, err)
	}
	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, productIDs []string) ([]*model.Product, error) {
	var products []*model.Product
	if len(productIDs) == 0 {
		return products, nil
	}

	err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// Search matches query case-insensitively against product titles.
// An empty query returns the whole catalog.
func (r *productRepoImpl) Search(ctx context.Context, query string) ([]*model.Product, error) {
	var products []*model.Product
	tx := r.db.WithContext(ctx).Order("id")

	if q := strings.TrimSpace(query); q != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if err := tx.Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}
