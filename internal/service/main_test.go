package service

import (
	"context"
	"testing"
	"time"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/cache"
	"github.com/AlexDev08/OpenCRE-migration/internal/compress"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/AlexDev08/OpenCRE-migration/internal/store"
	"github.com/AlexDev08/OpenCRE-migration/internal/tester"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*CREService, store.Store) {
	t.Helper()
	s := store.NewGormStore(tester.TestDB(t))
	return NewCREService(s, nil, 0), s
}

func newCachedTestService(t *testing.T) *CREService {
	t.Helper()
	client, _ := tester.Redis(t)
	c := cache.NewRedisGapAnalysisCache(client, compress.NewGZip(), time.Minute)
	return NewCREService(store.NewGormStore(tester.TestDB(t)), c, 0)
}

func mustAddCRE(t *testing.T, s *CREService, doc defs.Document) *model.CRE {
	t.Helper()
	cre, err := s.AddCRE(context.TODO(), doc)
	require.NoError(t, err)
	return cre
}

func mustAddStandard(t *testing.T, s *CREService, doc defs.Document) *model.Standard {
	t.Helper()
	standard, err := s.AddStandard(context.TODO(), doc)
	require.NoError(t, err)
	return standard
}

func creNames(cres []*model.CRE) []string {
	names := make([]string, 0, len(cres))
	for _, c := range cres {
		names = append(names, c.Name)
	}
	return names
}

func standardWithVersion(name, section, subsection, hyperlink, version string) defs.Document {
	doc := defs.NewStandard(name, section, subsection, hyperlink)
	doc.Version = version
	return doc
}
