package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/cache"
	"github.com/AlexDev08/OpenCRE-migration/internal/graph"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/store"
	"github.com/sirupsen/logrus"
)

const DefaultPageSize = 20

// NewCREService creates a new CREService. The cache may be nil.
func NewCREService(store store.Store, cache cache.GapAnalysisCache, pageSize int) *CREService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &CREService{
		store:    store,
		cache:    cache,
		pageSize: pageSize,
	}
}

// CREService owns the CRE graph: it registers CREs, standards and the links
// between them and answers the document, graph and search queries.
type CREService struct {
	store    store.Store
	cache    cache.GapAnalysisCache
	pageSize int
	// mu serializes internal link writers so the cycle check sees every committed edge
	mu sync.Mutex
}

// AddCRE stores the CRE unless one with the same name exists, in which case
// the existing row is returned unchanged.
func (s *CREService) AddCRE(ctx context.Context, doc defs.Document) (*model.CRE, error) {
	if !doc.IsCRE() || strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("%w: expected a named CRE, got %s %q", ErrInvalidDocument, doc.Doctype, doc.Name)
	}

	cre, created, err := s.store.FindOrCreateCRE(ctx, model.CREToDB(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to add cre %q: %w", doc.Name, err)
	}

	if created {
		logrus.Debugf("added cre %q (%d)", cre.Name, cre.ID)
		s.invalidate(ctx)
	}

	return cre, nil
}

// AddStandard stores the standard unless one with the same name, section and
// subsection exists, in which case the existing row is returned unchanged.
func (s *CREService) AddStandard(ctx context.Context, doc defs.Document) (*model.Standard, error) {
	if !doc.IsStandard() || strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("%w: expected a named standard, got %s %q", ErrInvalidDocument, doc.Doctype, doc.Name)
	}

	standard, created, err := s.store.FindOrCreateStandard(ctx, model.StandardToDB(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to add standard %q: %w", doc.Name, err)
	}

	if created {
		logrus.Debugf("added standard %q:%q:%q (%d)", standard.Name, standard.Section, standard.Subsection, standard.ID)
		s.invalidate(ctx)
	}

	return standard, nil
}

// AddLink links a CRE to a standard. Adding an existing link is a no-op.
func (s *CREService) AddLink(ctx context.Context, cre *model.CRE, standard *model.Standard, lt defs.LinkType) error {
	lt, err := defs.ParseLinkType(string(lt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLinkType, err)
	}
	if lt == defs.LinkTypeContains || lt == defs.LinkTypePartOf {
		return fmt.Errorf("%w: %q links CREs only", ErrInvalidLinkType, lt)
	}
	if cre == nil || standard == nil {
		return fmt.Errorf("%w: link needs both a cre and a standard", ErrNotFound)
	}

	var created bool
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetCRE(ctx, cre.ID); err != nil {
			return notFound(err, "cre %d", cre.ID)
		}
		if _, err := tx.GetStandard(ctx, standard.ID); err != nil {
			return notFound(err, "standard %d", standard.ID)
		}

		created, err = tx.CreateLink(ctx, &model.Link{
			Type:       string(lt),
			CreID:      cre.ID,
			StandardID: standard.ID,
		})
		return err
	})
	if err != nil {
		return err
	}

	if created {
		s.invalidate(ctx)
	}

	return nil
}

// AddInternalLink adds the group -> cre edge. An edge that would close a
// cycle in the hierarchy is dropped with a warning and no error.
func (s *CREService) AddInternalLink(ctx context.Context, group, cre *model.CRE, lt defs.LinkType) error {
	if lt == "" {
		lt = defs.LinkTypeContains
	}
	lt, err := defs.ParseLinkType(string(lt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLinkType, err)
	}
	if lt == defs.LinkTypeLinkedTo || lt == defs.LinkTypePartOf {
		return fmt.Errorf("%w: %q cannot link two CREs", ErrInvalidLinkType, lt)
	}
	if group == nil || cre == nil {
		return fmt.Errorf("%w: internal link needs both a group and a cre", ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created bool
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetCRE(ctx, group.ID); err != nil {
			return notFound(err, "group cre %d", group.ID)
		}
		if _, err := tx.GetCRE(ctx, cre.ID); err != nil {
			return notFound(err, "cre %d", cre.ID)
		}

		g, err := loadGraph(ctx, tx)
		if err != nil {
			return err
		}

		if g.WouldCycle(group.ID, cre.ID) {
			logrus.Warnf("internal link %q -> %q would create a cycle, skipping", group.Name, cre.Name)
			return nil
		}

		created, err = tx.CreateInternalLink(ctx, &model.InternalLink{
			Type:    string(lt),
			GroupID: group.ID,
			CreID:   cre.ID,
		})
		return err
	})
	if err != nil {
		return err
	}

	if created {
		s.invalidate(ctx)
	}

	return nil
}

// loadGraph reads the whole CRE hierarchy.
func loadGraph(ctx context.Context, tx store.Store) (*graph.Graph, error) {
	links, err := tx.ListInternalLinks(ctx)
	if err != nil {
		return nil, err
	}

	edges := make([]graph.Edge, 0, len(links))
	for _, l := range links {
		edges = append(edges, graph.Edge{Group: l.GroupID, Child: l.CreID})
	}

	return graph.New(edges), nil
}

// invalidate drops cached gap analyses. A failure only costs stale reads
// until the entries expire, so it is logged rather than returned.
func (s *CREService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		logrus.Errorf("failed to invalidate gap analysis cache: %v", err)
	}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
