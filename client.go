// Package opencre stores a knowledge graph of Common Requirement Enumerations
// (CREs) and the external standards they map to, and answers document,
// gap analysis and search queries over it.
package opencre

import (
	"context"
	"errors"
	"io"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/cache"
	"github.com/AlexDev08/OpenCRE-migration/internal/compress"
	"github.com/AlexDev08/OpenCRE-migration/internal/config"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/service"
	"github.com/AlexDev08/OpenCRE-migration/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	CRE              = model.CRE
	Standard         = model.Standard
	CREQuery         = service.CREQuery
	StandardQuery    = service.StandardQuery
	Pagination       = service.Pagination
	GapAnalysisCache = cache.GapAnalysisCache
)

var (
	ErrNotFound        = service.ErrNotFound
	ErrInvalidDocument = service.ErrInvalidDocument
	ErrInvalidLinkType = service.ErrInvalidLinkType
)

type Client interface {
	io.Closer

	AddCRE(ctx context.Context, doc defs.Document) (*CRE, error)
	AddStandard(ctx context.Context, doc defs.Document) (*Standard, error)
	AddLink(ctx context.Context, cre *CRE, standard *Standard, lt defs.LinkType) error
	AddInternalLink(ctx context.Context, group, cre *CRE, lt defs.LinkType) error

	GetCREs(ctx context.Context, q CREQuery) ([]defs.Document, error)
	GetStandards(ctx context.Context, q StandardQuery) ([]defs.Document, error)
	GetStandardsWithPagination(ctx context.Context, q StandardQuery, page int) (int, []defs.Document, *Pagination, error)
	GetStandardsNames(ctx context.Context) ([]string, error)
	Export(ctx context.Context, fn func(doc defs.Document) error) error
	Import(ctx context.Context, doc defs.Document) error

	FindCREsOfCRE(ctx context.Context, cre *CRE) ([]*CRE, error)
	FindCREsOfStandard(ctx context.Context, standard *Standard) ([]*CRE, error)
	GetMaxInternalConnections(ctx context.Context) (int, error)
	GapAnalysis(ctx context.Context, names []string) ([]defs.Document, error)

	GetByTags(ctx context.Context, tags []string) ([]defs.Document, error)
	TextSearch(ctx context.Context, query string) ([]defs.Document, error)
}

var _ Client = (*client)(nil)

type client struct {
	*service.CREService
	closers []io.Closer
}

type options struct {
	cache    GapAnalysisCache
	pageSize int
	migrate  bool
}

type Option func(*options)

// WithCache caches gap analyses.
func WithCache(c GapAnalysisCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithPageSize sets the page size of GetStandardsWithPagination.
func WithPageSize(size int) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithoutMigration skips the schema migration on start.
func WithoutMigration() Option {
	return func(o *options) {
		o.migrate = false
	}
}

// NewClient creates a client over db. The schema is migrated unless
// WithoutMigration is given. Closing the client leaves db open.
func NewClient(db *gorm.DB, opts ...Option) (Client, error) {
	o := &options{migrate: true}
	for _, opt := range opts {
		opt(o)
	}

	s := store.NewGormStore(db)
	if o.migrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}

	return &client{CREService: service.NewCREService(s, o.cache, o.pageSize)}, nil
}

// Open creates a client from the environment, see config.LoadConfig.
func Open(ctx context.Context) (Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return OpenConfig(ctx, cfg)
}

// OpenConfig opens the configured database and, when a redis url is set,
// the gap analysis cache.
func OpenConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	logrus.SetLevel(cfg.LogLevel)

	db, err := config.OpenDb(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{sqlDB}

	opts := []Option{WithPageSize(cfg.PageSize)}
	if cfg.RedisURL != "" {
		codec, err := compress.New(cfg.CacheCompression)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		closers = append(closers, rdb)
		opts = append(opts, WithCache(cache.NewRedisGapAnalysisCache(rdb, codec, cfg.CacheTTL)))
	}

	c, err := NewClient(db, opts...)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	c.(*client).closers = closers
	return c, nil
}

func (c *client) Close() error {
	return closeAll(c.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
