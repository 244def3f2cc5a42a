package service

import (
	"context"
	"slices"
	"strings"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/search"
	"github.com/AlexDev08/OpenCRE-migration/internal/store"
	mapset "github.com/deckarep/golang-set/v2"
)

// results collects linkless documents once each, in insertion order.
type results struct {
	seen mapset.Set[string]
	docs []defs.Document
}

func newResults() *results {
	return &results{seen: mapset.NewThreadUnsafeSet[string]()}
}

func (r *results) addCREs(cres []*model.CRE) {
	for _, c := range cres {
		r.add(model.CREFromDB(c))
	}
}

func (r *results) addStandards(standards []*model.Standard) {
	for _, st := range standards {
		r.add(model.StandardFromDB(st))
	}
}

func (r *results) add(doc defs.Document) {
	if r.seen.Add(doc.Key()) {
		r.docs = append(r.docs, doc)
	}
}

// GetByTags returns the CREs, then the standards, carrying every tag. A tag
// matches when it is a substring of one of the stored tags. Blank tags are
// ignored.
func (s *CREService) GetByTags(ctx context.Context, tags []string) ([]defs.Document, error) {
	res := newResults()
	tags = slices.DeleteFunc(slices.Clone(tags), func(tag string) bool {
		return strings.TrimSpace(tag) == ""
	})
	if len(tags) == 0 {
		return res.docs, nil
	}

	cres, err := s.store.ListCREsByTags(ctx, tags)
	if err != nil {
		return nil, err
	}
	res.addCREs(cres)

	standards, err := s.store.ListStandardsByTags(ctx, tags)
	if err != nil {
		return nil, err
	}
	res.addStandards(standards)

	return res.docs, nil
}

// TextSearch runs a free-text query:
//
//	CRE:<id or name>          CREs with that external id or name
//	Standard:<url>            standards whose hyperlink contains url
//	Standard:<a>[:<b>[:<c>]]  standards whose name, section and subsection contain the
//	                          qualifiers as a contiguous run, compared exactly
//	<text>                    the CRE with that external id, otherwise every CRE and
//	                          standard with a field containing text
//
// A space may replace any colon.
func (s *CREService) TextSearch(ctx context.Context, query string) ([]defs.Document, error) {
	q := search.ParseQuery(query)
	res := newResults()
	if q.Text == "" {
		return res.docs, nil
	}

	var err error
	switch q.Kind {
	case search.KindCRE:
		err = s.searchCREs(ctx, q, res)
	case search.KindStandard:
		err = s.searchStandards(ctx, q, res)
	default:
		err = s.searchAny(ctx, q, res)
	}
	if err != nil {
		return nil, err
	}

	return res.docs, nil
}

func (s *CREService) searchCREs(ctx context.Context, q search.Query, res *results) error {
	byID, err := s.store.ListCREs(ctx, store.CREFilter{ExternalID: q.Text})
	if err != nil {
		return err
	}
	res.addCREs(byID)

	byName, err := s.store.ListCREs(ctx, store.CREFilter{Name: q.Text})
	if err != nil {
		return err
	}
	res.addCREs(byName)

	return nil
}

func (s *CREService) searchStandards(ctx context.Context, q search.Query, res *results) error {
	if q.URL != "" {
		pattern := "%" + search.EscapeLike(q.URL) + "%"
		standards, err := s.store.ListStandards(ctx, store.StandardFilter{Hyperlink: pattern, Partial: true})
		if err != nil {
			return err
		}
		res.addStandards(standards)
		return nil
	}

	// names may contain spaces, so the whole text is tried as one qualifier too
	whole := []string{q.Text}
	candidates, err := s.store.ListStandardsWithAnyField(ctx, append(whole, q.Qualifiers...))
	if err != nil {
		return err
	}

	for _, st := range candidates {
		if search.MatchStandardQualifiers(q.Qualifiers, st.Name, st.Section, st.Subsection) ||
			search.MatchStandardQualifiers(whole, st.Name, st.Section, st.Subsection) {
			res.add(model.StandardFromDB(st))
		}
	}
	return nil
}

func (s *CREService) searchAny(ctx context.Context, q search.Query, res *results) error {
	exact, err := s.store.ListCREs(ctx, store.CREFilter{ExternalID: q.Text})
	if err != nil {
		return err
	}
	if len(exact) > 0 {
		res.addCREs(exact)
		return nil
	}

	cres, err := s.store.SearchCREs(ctx, q.Text)
	if err != nil {
		return err
	}
	res.addCREs(cres)

	standards, err := s.store.SearchStandards(ctx, strings.TrimSpace(q.Text))
	if err != nil {
		return err
	}
	res.addStandards(standards)

	return nil
}
