package service

import (
	"context"
	"fmt"
	"time"

	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"
	"go-grocery/pkg/cache"
	"go-grocery/pkg/search"

	"github.com/rs/zerolog/log"
)

// ProductSearcher finds product ids for a free-text query.
type ProductSearcher interface {
	SearchIDs(ctx context.Context, query string, offset, limit int) ([]uint, int64, error)
}

// ProductIndexer receives search documents during a reindex.
type ProductIndexer interface {
	EnsureIndex(ctx context.Context) error
	IndexAll(ctx context.Context, docs []search.ProductDoc) error
}

// CatalogService is the read side of the catalog. It never mutates.
type CatalogService struct {
	repo     *repository.CatalogRepository
	media    Media
	cache    cache.Cache
	cacheTTL time.Duration
	searcher ProductSearcher
}

type CatalogOption func(*CatalogService)

// WithCache serves detail reads through c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) CatalogOption {
	return func(s *CatalogService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithSearcher routes product search through an index instead of SQL LIKE.
func WithSearcher(ps ProductSearcher) CatalogOption {
	return func(s *CatalogService) { s.searcher = ps }
}

func NewCatalogService(repo *repository.CatalogRepository, media Media, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{repo: repo, media: media, cache: cache.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CatalogService) ListCategories(ctx context.Context, offset, limit int) (Page[CategoryDTO], error) {
	categories, total, err := s.repo.ListCategories(ctx, offset, limit)
	if err != nil {
		return Page[CategoryDTO]{}, err
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, s.media.Category(c))
	}
	return Page[CategoryDTO]{Count: total, Results: out}, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*CategoryDTO, error) {
	key := fmt.Sprintf("category:%d", id)
	var dto CategoryDTO
	if s.cached(ctx, key, &dto) {
		return &dto, nil
	}

	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	dto = s.media.Category(*c)
	s.store(ctx, key, dto)
	return &dto, nil
}

// ListProducts pages through products; a non-empty query filters them.
func (s *CatalogService) ListProducts(ctx context.Context, query string, offset, limit int) (Page[ProductDTO], error) {
	if query != "" && s.searcher != nil {
		page, err := s.searchProducts(ctx, query, offset, limit)
		if err == nil {
			return page, nil
		}
		log.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("product search index failed, falling back to SQL")
	}

	products, total, err := s.repo.ListProducts(ctx, query, offset, limit)
	if err != nil {
		return Page[ProductDTO]{}, err
	}
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, s.media.Product(p))
	}
	return Page[ProductDTO]{Count: total, Results: out}, nil
}

func (s *CatalogService) searchProducts(ctx context.Context, query string, offset, limit int) (Page[ProductDTO], error) {
	ids, total, err := s.searcher.SearchIDs(ctx, query, offset, limit)
	if err != nil {
		return Page[ProductDTO]{}, err
	}
	products, err := s.repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return Page[ProductDTO]{}, err
	}

	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	// keep the index ranking, drop hits deleted since the last reindex
	out := make([]ProductDTO, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, s.media.Product(p))
		}
	}
	return Page[ProductDTO]{Count: total, Results: out}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*ProductDTO, error) {
	key := fmt.Sprintf("product:%d", id)
	var dto ProductDTO
	if s.cached(ctx, key, &dto) {
		return &dto, nil
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	dto = s.media.Product(*p)
	s.store(ctx, key, dto)
	return &dto, nil
}

// Reindex pushes every product into idx and returns how many were sent.
func (s *CatalogService) Reindex(ctx context.Context, idx ProductIndexer, batchSize int) (int, error) {
	if err := idx.EnsureIndex(ctx); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}

	indexed := 0
	err := s.repo.EachProductBatch(ctx, batchSize, func(products []model.Product) error {
		docs := make([]search.ProductDoc, 0, len(products))
		for _, p := range products {
			docs = append(docs, search.ProductDoc{
				ID:          p.ID,
				Name:        p.Name,
				Slug:        p.Slug,
				Category:    p.Category.Name,
				Subcategory: p.Subcategory.Name,
				Price:       p.Price,
			})
		}
		if err := idx.IndexAll(ctx, docs); err != nil {
			return err
		}
		indexed += len(docs)
		return nil
	})
	return indexed, err
}

// cache errors only cost a database read
func (s *CatalogService) cached(ctx context.Context, key string, dest interface{}) bool {
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	return ok
}

func (s *CatalogService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
