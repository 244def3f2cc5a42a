package service

import (
	"context"
	"slices"
	"strings"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/graph"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/store"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// gapRoot is a standard taking part in a gap analysis and the reach of its CREs.
type gapRoot struct {
	standard *model.Standard
	reach    graph.Reach
	doc      defs.Document
}

// GapAnalysis returns every standard named in names. Two standards of
// different names link each other when their CREs meet anywhere in the
// hierarchy: a shared CRE, one being an ancestor of the other or a common
// ancestor or descendant.
func (s *CREService) GapAnalysis(ctx context.Context, names []string) ([]defs.Document, error) {
	names = normalizeNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	if s.cache != nil {
		docs, ok, err := s.cache.Get(ctx, names)
		if err != nil {
			logrus.Errorf("failed to read gap analysis cache: %v", err)
		} else if ok {
			logrus.Debugf("gap analysis cache hit for %v", names)
			return docs, nil
		}
	}

	var docs []defs.Document
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		docs, err = gapAnalysis(ctx, tx, names)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, names, docs); err != nil {
			logrus.Errorf("failed to write gap analysis cache: %v", err)
		}
	}

	return docs, nil
}

func gapAnalysis(ctx context.Context, tx store.Store, names []string) ([]defs.Document, error) {
	var roots []*gapRoot
	for _, name := range names {
		standards, err := tx.ListStandards(ctx, store.StandardFilter{Name: name})
		if err != nil {
			return nil, err
		}
		for _, st := range standards {
			roots = append(roots, &gapRoot{standard: st, doc: model.StandardFromDB(st)})
		}
	}
	if len(roots) == 0 {
		return nil, nil
	}

	g, err := loadGraph(ctx, tx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(roots))
	for _, root := range roots {
		ids = append(ids, root.standard.ID)
	}
	links, err := tx.ListLinksOfStandards(ctx, ids)
	if err != nil {
		return nil, err
	}

	linked := make(map[uint][]uint)
	for _, l := range links {
		linked[l.StandardID] = append(linked[l.StandardID], l.CreID)
	}

	for _, root := range roots {
		if cres := linked[root.standard.ID]; len(cres) > 0 {
			root.reach = g.Reach(cres)
		}
	}

	for i, a := range roots {
		for _, b := range roots[i+1:] {
			if a.standard.Name == b.standard.Name || a.reach == nil || b.reach == nil {
				continue
			}

			conn, ok := a.reach.Meet(b.reach)
			if !ok {
				continue
			}

			logrus.Debugf("%s and %s meet at cre %d after %d hops", a.doc, b.doc, conn.Via, conn.Hops)
			a.doc.AddLink(defs.Link{Type: defs.LinkTypeLinkedTo, Document: model.StandardFromDB(b.standard)})
			b.doc.AddLink(defs.Link{Type: defs.LinkTypeLinkedTo, Document: model.StandardFromDB(a.standard)})
		}
	}

	docs := make([]defs.Document, 0, len(roots))
	for _, root := range roots {
		docs = append(docs, root.doc)
	}

	return docs, nil
}

// normalizeNames trims, drops empty and duplicate names and sorts the rest
// so every permutation of the same names gives the same analysis.
func normalizeNames(names []string) []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			set.Add(name)
		}
	}

	normalized := set.ToSlice()
	slices.Sort(normalized)
	return normalized
}
