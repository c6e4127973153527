package postgres

import (
	"context"
	"errors"
	"fmt"

	"bestinclick/business/recommend"
	"bestinclick/domain"

	"gorm.io/gorm"
)

var _ recommend.Catalog = (*ProductRepository)(nil)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

// FindByID returns (zero, false, nil) when the product does not exist.
func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, false, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, fmt.Errorf("failed to find product: %w", err)
	}

	return product, true, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// ListActiveProductIDs returns active product ids in id order; limit <= 0 means all.
func (r *ProductRepository) ListActiveProductIDs(ctx context.Context, limit int) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("is_active = ?", true).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ids []uint64
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list product ids: %w", err)
	}

	return ids, nil
}

// popularityFallback orders products that have no score row yet.
const popularityFallback = "(p.average_rating / 5.0) * 0.5 + LEAST(p.view_count / 1000.0, 1) * 0.5"

var candidateOrder = map[string]string{
	domain.OrderByPopularity: "COALESCE(pis.popularity_score, " + popularityFallback + ") DESC, p.id",
	domain.OrderByTrending:   "COALESCE(pis.trending_score, 0) DESC, p.id",
	domain.OrderByOverall:    "COALESCE(pis.overall_score, 0) DESC, p.id",
	domain.OrderByRating:     "p.average_rating DESC, p.review_count DESC, p.id",
	domain.OrderByNewest:     "p.created_at DESC, p.id",
}

// FindCandidates lists active products joined with their score row.
func (r *ProductRepository) FindCandidates(ctx context.Context, filter domain.ProductFilter) ([]domain.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Table("products AS p").
		Select(`p.*,
			pis.product_id IS NOT NULL AS has_score,
			COALESCE(pis.popularity_score, 0) AS popularity_score,
			COALESCE(pis.trending_score, 0) AS trending_score,
			COALESCE(pis.overall_score, 0) AS overall_score`).
		Joins("LEFT JOIN product_interaction_scores AS pis ON pis.product_id = p.id").
		Where("p.is_active = ?", true)

	if filter.CategoryID != 0 {
		q = q.Where("p.category_id = ?", filter.CategoryID)
	}

	switch {
	case filter.MatchAny && len(filter.CategoryIDs) > 0 && len(filter.BrandIDs) > 0:
		q = q.Where("(p.category_id IN ? OR p.brand_id IN ?)", filter.CategoryIDs, filter.BrandIDs)
	default:
		if len(filter.CategoryIDs) > 0 {
			q = q.Where("p.category_id IN ?", filter.CategoryIDs)
		}
		if len(filter.BrandIDs) > 0 {
			q = q.Where("p.brand_id IN ?", filter.BrandIDs)
		}
	}

	if filter.MinPrice != nil {
		q = q.Where("p.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("p.price <= ?", *filter.MaxPrice)
	}
	if len(filter.ExcludeIDs) > 0 {
		q = q.Where("p.id NOT IN ?", filter.ExcludeIDs)
	}
	if filter.OnlyScored {
		q = q.Where("pis.product_id IS NOT NULL")
	}
	if filter.OnlyTrending {
		q = q.Where("pis.trending_score > 0")
	}

	order, ok := candidateOrder[filter.OrderBy]
	if !ok {
		order = candidateOrder[domain.OrderByPopularity]
	}
	q = q.Order(order)

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var out []domain.ScoredProduct
	if err := q.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidate products: %w", err)
	}

	return out, nil
}
