package store

import (
	"context"
	"errors"

	"github.com/AlexDev08/OpenCRE-migration/internal/model"
)

// ErrNotFound is returned by single entity lookups that match no row.
var ErrNotFound = errors.New("record not found")

type Store interface {
	EntityStore
	RelationStore
	// Transaction runs f with a store bound to a single transaction.
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

// CREFilter selects CREs. Empty fields are ignored, the rest are combined with AND.
// With Partial set every field is a LIKE pattern, plain text meaning a substring.
type CREFilter struct {
	ExternalID  string
	Name        string
	Description string
	Partial     bool
}

func (f CREFilter) Empty() bool {
	return f.ExternalID == "" && f.Name == "" && f.Description == ""
}

// StandardFilter selects standards, see CREFilter.
type StandardFilter struct {
	Name       string
	Section    string
	Subsection string
	Hyperlink  string
	Version    string
	Partial    bool
}

func (f StandardFilter) Empty() bool {
	return f.Name == "" && f.Section == "" && f.Subsection == "" && f.Hyperlink == "" && f.Version == ""
}

type EntityStore interface {
	// FindOrCreateCRE inserts a CRE unless one with the same name exists.
	// It returns the stored row and whether it was created.
	FindOrCreateCRE(ctx context.Context, cre *model.CRE) (*model.CRE, bool, error)
	// GetCRE retrieves a CRE by ID.
	GetCRE(ctx context.Context, id uint) (*model.CRE, error)
	// GetCREByName retrieves a CRE by its unique name.
	GetCREByName(ctx context.Context, name string) (*model.CRE, error)
	// ListCREs retrieves the CREs matching the filter ordered by ID.
	ListCREs(ctx context.Context, filter CREFilter) ([]*model.CRE, error)
	// ListCREsFromIDs retrieves CREs by IDs.
	ListCREsFromIDs(ctx context.Context, ids []uint) ([]*model.CRE, error)
	// ListAllCREs retrieves every CRE ordered by name.
	ListAllCREs(ctx context.Context) ([]*model.CRE, error)
	// ListCREsByTags retrieves the CREs carrying every tag.
	ListCREsByTags(ctx context.Context, tags []string) ([]*model.CRE, error)
	// SearchCREs retrieves the CREs whose name, external id or description contains text.
	SearchCREs(ctx context.Context, text string) ([]*model.CRE, error)

	// FindOrCreateStandard inserts a standard unless one with the same
	// name, section and subsection exists.
	FindOrCreateStandard(ctx context.Context, standard *model.Standard) (*model.Standard, bool, error)
	// GetStandard retrieves a standard by ID.
	GetStandard(ctx context.Context, id uint) (*model.Standard, error)
	// ListStandards retrieves the standards matching the filter ordered by name, section, subsection.
	ListStandards(ctx context.Context, filter StandardFilter) ([]*model.Standard, error)
	// ListStandardsFromIDs retrieves standards by IDs.
	ListStandardsFromIDs(ctx context.Context, ids []uint) ([]*model.Standard, error)
	// ListStandardsWithAnyField retrieves the standards whose name, section or subsection is one of values.
	ListStandardsWithAnyField(ctx context.Context, values []string) ([]*model.Standard, error)
	// ListStandardNames retrieves the distinct standard names, sorted.
	ListStandardNames(ctx context.Context) ([]string, error)
	// ListStandardsByTags retrieves the standards carrying every tag.
	ListStandardsByTags(ctx context.Context, tags []string) ([]*model.Standard, error)
	// SearchStandards retrieves the standards whose name, section, subsection or link contains text.
	SearchStandards(ctx context.Context, text string) ([]*model.Standard, error)
}

type RelationStore interface {
	// CreateLink inserts a CRE to standard link unless it exists.
	CreateLink(ctx context.Context, link *model.Link) (bool, error)
	// ListLinks retrieves every link ordered by ID.
	ListLinks(ctx context.Context) ([]*model.Link, error)
	// ListLinksOfCREs retrieves the links of the given CREs ordered by ID.
	ListLinksOfCREs(ctx context.Context, creIDs []uint) ([]*model.Link, error)
	// ListLinksOfStandards retrieves the links of the given standards ordered by ID.
	ListLinksOfStandards(ctx context.Context, standardIDs []uint) ([]*model.Link, error)
	// ListCREsOfStandard retrieves the CREs linked to a standard in link order.
	ListCREsOfStandard(ctx context.Context, standardID uint) ([]*model.CRE, error)

	// CreateInternalLink inserts a group -> cre edge unless the pair is linked already.
	CreateInternalLink(ctx context.Context, link *model.InternalLink) (bool, error)
	// ListInternalLinks retrieves every internal link ordered by ID.
	ListInternalLinks(ctx context.Context) ([]*model.InternalLink, error)
	// ListInternalLinksOf retrieves the internal links where the CRE is either the group or the child.
	ListInternalLinksOf(ctx context.Context, creID uint) ([]*model.InternalLink, error)
	// ListGroupsOf retrieves the immediate groups of a CRE in link order.
	ListGroupsOf(ctx context.Context, creID uint) ([]*model.CRE, error)
	// MaxInternalConnections returns the largest number of children of a single group.
	MaxInternalConnections(ctx context.Context) (int64, error)
}
