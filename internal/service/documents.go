package service

import (
	"context"
	"slices"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/store"
	mapset "github.com/deckarep/golang-set/v2"
)

// CREQuery selects root CREs. With Partial set the filters are LIKE patterns:
// text without '%' or '_' matches as a substring, text with either is matched
// as written, so "control_policy" only matches a whole value and
// "%control_policy%" is needed to find it inside one. '\' escapes a wildcard.
// IncludeOnly keeps only the linked standards whose name, section,
// subsection or hyperlink is listed.
type CREQuery struct {
	ExternalID  string
	Name        string
	Description string
	Partial     bool
	IncludeOnly []string
}

func (q CREQuery) filter() store.CREFilter {
	return store.CREFilter{
		ExternalID:  q.ExternalID,
		Name:        q.Name,
		Description: q.Description,
		Partial:     q.Partial,
	}
}

// StandardQuery selects root standards, Partial works as in CREQuery.
// IncludeOnly keeps only the linked CREs whose name or external id is listed.
type StandardQuery struct {
	Name        string
	Section     string
	Subsection  string
	Hyperlink   string
	Version     string
	Partial     bool
	IncludeOnly []string
}

func (q StandardQuery) filter() store.StandardFilter {
	return store.StandardFilter{
		Name:       q.Name,
		Section:    q.Section,
		Subsection: q.Subsection,
		Hyperlink:  q.Hyperlink,
		Version:    q.Version,
		Partial:    q.Partial,
	}
}

type Pagination struct {
	Page    int  `json:"page" yaml:"page"`
	PerPage int  `json:"per_page" yaml:"per_page"`
	Total   int  `json:"total" yaml:"total"`
	Pages   int  `json:"pages" yaml:"pages"`
	HasPrev bool `json:"has_prev" yaml:"has_prev"`
	HasNext bool `json:"has_next" yaml:"has_next"`
}

// GetCREs returns the matching CREs with their standards and their
// neighbours in the hierarchy, nil when no CRE matches.
func (s *CREService) GetCREs(ctx context.Context, q CREQuery) ([]defs.Document, error) {
	filter := q.filter()
	if filter.Empty() {
		return nil, nil
	}

	var docs []defs.Document
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		roots, err := tx.ListCREs(ctx, filter)
		if err != nil {
			return err
		}

		docs, err = assembleCREs(ctx, tx, roots, q.IncludeOnly)
		return err
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// assembleCREs expands every root one level deep. Children get a single
// back link to a linkless copy of the root and nothing else.
func assembleCREs(ctx context.Context, tx store.Store, roots []*model.CRE, includeOnly []string) ([]defs.Document, error) {
	if len(roots) == 0 {
		return nil, nil
	}

	rootIDs := make([]uint, 0, len(roots))
	for _, root := range roots {
		rootIDs = append(rootIDs, root.ID)
	}

	links, err := tx.ListLinksOfCREs(ctx, rootIDs)
	if err != nil {
		return nil, err
	}

	standardIDs := make([]uint, 0, len(links))
	for _, l := range links {
		standardIDs = append(standardIDs, l.StandardID)
	}

	standards, err := tx.ListStandardsFromIDs(ctx, standardIDs)
	if err != nil {
		return nil, err
	}
	standardByID := make(map[uint]*model.Standard, len(standards))
	for _, st := range standards {
		standardByID[st.ID] = st
	}

	docs := make([]defs.Document, 0, len(roots))
	for _, root := range roots {
		doc := model.CREFromDB(root)

		kept := 0
		for _, l := range links {
			st, ok := standardByID[l.StandardID]
			if l.CreID != root.ID || !ok {
				continue
			}
			if len(includeOnly) > 0 && !included(includeOnly, st.Name, st.Section, st.Subsection, st.Hyperlink) {
				continue
			}
			doc.AddLink(defs.Link{Type: storedLinkType(l.Type, defs.LinkTypeLinkedTo), Document: model.StandardFromDB(st)})
			kept++
		}

		// filtering out every standard leaves the neighbours bare
		collapse := len(includeOnly) > 0 && kept == 0

		internal, err := tx.ListInternalLinksOf(ctx, root.ID)
		if err != nil {
			return nil, err
		}

		neighbourIDs := make([]uint, 0, len(internal))
		for _, il := range internal {
			if il.GroupID == root.ID {
				neighbourIDs = append(neighbourIDs, il.CreID)
			} else {
				neighbourIDs = append(neighbourIDs, il.GroupID)
			}
		}

		neighbours, err := tx.ListCREsFromIDs(ctx, neighbourIDs)
		if err != nil {
			return nil, err
		}
		neighbourByID := make(map[uint]*model.CRE, len(neighbours))
		for _, c := range neighbours {
			neighbourByID[c.ID] = c
		}

		shallowRoot := model.CREFromDB(root)
		for _, il := range internal {
			lt := storedLinkType(il.Type, defs.LinkTypeContains)
			if il.GroupID == root.ID {
				child, ok := neighbourByID[il.CreID]
				if !ok {
					continue
				}
				childDoc := model.CREFromDB(child)
				if !collapse {
					childDoc.AddLink(defs.Link{Type: lt.Inverse(), Document: shallowRoot.Shallow()})
				}
				doc.AddLink(defs.Link{Type: lt, Document: childDoc})
			} else {
				group, ok := neighbourByID[il.GroupID]
				if !ok {
					continue
				}
				doc.AddLink(defs.Link{Type: lt.Inverse(), Document: model.CREFromDB(group)})
			}
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// GetStandards returns the matching standards with their linked CREs, nil
// when no standard matches.
func (s *CREService) GetStandards(ctx context.Context, q StandardQuery) ([]defs.Document, error) {
	filter := q.filter()
	if filter.Empty() {
		return nil, nil
	}

	var docs []defs.Document
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		roots, err := tx.ListStandards(ctx, filter)
		if err != nil {
			return err
		}

		docs, err = assembleStandards(ctx, tx, roots, q.IncludeOnly)
		return err
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// GetStandardsWithPagination returns one page of GetStandards. Pages start at 1.
// An empty query pages through every standard.
func (s *CREService) GetStandardsWithPagination(ctx context.Context, q StandardQuery, page int) (int, []defs.Document, *Pagination, error) {
	if page < 1 {
		page = 1
	}

	var (
		docs       []defs.Document
		pagination *Pagination
	)
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		roots, err := tx.ListStandards(ctx, q.filter())
		if err != nil {
			return err
		}

		pagination = paginate(page, s.pageSize, len(roots))
		start := min((page-1)*s.pageSize, len(roots))
		end := min(start+s.pageSize, len(roots))

		docs, err = assembleStandards(ctx, tx, roots[start:end], q.IncludeOnly)
		return err
	})
	if err != nil {
		return 0, nil, nil, err
	}

	return pagination.Pages, docs, pagination, nil
}

func paginate(page, perPage, total int) *Pagination {
	pages := (total + perPage - 1) / perPage
	return &Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}

func assembleStandards(ctx context.Context, tx store.Store, roots []*model.Standard, includeOnly []string) ([]defs.Document, error) {
	if len(roots) == 0 {
		return nil, nil
	}

	rootIDs := make([]uint, 0, len(roots))
	for _, root := range roots {
		rootIDs = append(rootIDs, root.ID)
	}

	links, err := tx.ListLinksOfStandards(ctx, rootIDs)
	if err != nil {
		return nil, err
	}

	creIDs := make([]uint, 0, len(links))
	for _, l := range links {
		creIDs = append(creIDs, l.CreID)
	}

	cres, err := tx.ListCREsFromIDs(ctx, creIDs)
	if err != nil {
		return nil, err
	}
	creByID := make(map[uint]*model.CRE, len(cres))
	for _, c := range cres {
		creByID[c.ID] = c
	}

	docs := make([]defs.Document, 0, len(roots))
	for _, root := range roots {
		doc := model.StandardFromDB(root)
		for _, l := range links {
			cre, ok := creByID[l.CreID]
			if l.StandardID != root.ID || !ok {
				continue
			}
			if len(includeOnly) > 0 && !included(includeOnly, cre.Name, cre.ExternalID) {
				continue
			}
			doc.AddLink(defs.Link{Type: storedLinkType(l.Type, defs.LinkTypeLinkedTo), Document: model.CREFromDB(cre)})
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// GetStandardsNames returns the distinct standard names, sorted.
func (s *CREService) GetStandardsNames(ctx context.Context) ([]string, error) {
	return s.store.ListStandardNames(ctx)
}

// Export calls fn with one document per CRE, ordered by name, followed by
// every standard without links. A CRE links its standards first, then its
// children and groups in the order the internal links were added.
// The documents are read in one transaction before fn is called.
func (s *CREService) Export(ctx context.Context, fn func(doc defs.Document) error) error {
	var docs []defs.Document
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		cres, err := tx.ListAllCREs(ctx)
		if err != nil {
			return err
		}

		docs, err = assembleCREs(ctx, tx, cres, nil)
		if err != nil {
			return err
		}

		// children come back with a link to their group, exported documents stay one level deep
		for i := range docs {
			for j := range docs[i].Links {
				docs[i].Links[j].Document = docs[i].Links[j].Document.Shallow()
			}
		}

		links, err := tx.ListLinks(ctx)
		if err != nil {
			return err
		}
		linked := mapset.NewThreadUnsafeSet[uint]()
		for _, l := range links {
			linked.Add(l.StandardID)
		}

		standards, err := tx.ListStandards(ctx, store.StandardFilter{})
		if err != nil {
			return err
		}
		for _, st := range standards {
			if !linked.Contains(st.ID) {
				docs = append(docs, model.StandardFromDB(st))
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if err := fn(doc); err != nil {
			return err
		}
	}

	return nil
}

// storedLinkType reads a link type column, falling back to def for rows written without one.
func storedLinkType(stored string, def defs.LinkType) defs.LinkType {
	if stored == "" {
		return def
	}
	if lt, err := defs.ParseLinkType(stored); err == nil {
		return lt
	}
	return defs.LinkType(stored)
}

func included(includeOnly []string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && slices.Contains(includeOnly, f) {
			return true
		}
	}
	return false
}
