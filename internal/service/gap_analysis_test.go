package service

import (
	"context"
	"strings"
	"testing"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGapGraph builds
//
//	CC -> CA, CB, CD
//	CD -> CDD
//	CA: SA1, SAA1   CB: SB1   CD: SD1   CDD: SDD1   CW: SW1   CX: SA3, SX1
//
// and leaves SA2 without a CRE.
func setupGapGraph(t *testing.T, svc *CREService) (map[string]*model.CRE, map[string]defs.Document) {
	t.Helper()
	ctx := context.TODO()

	cres := map[string]*model.CRE{}
	for i, name := range []string{"CA", "CB", "CC", "CD", "CDD", "CW", "CX"} {
		cres[name] = mustAddCRE(t, svc, defs.NewCRE(string(rune('1'+i)), name, name))
	}

	standards := map[string]defs.Document{}
	stored := map[string]*model.Standard{}
	for _, key := range []string{"SA1", "SA2", "SA3", "SAA1", "SB1", "SD1", "SDD1", "SW1", "SX1"} {
		doc := defs.NewStandard(strings.TrimRight(key, "123"), key, "", "")
		standards[key] = doc
		stored[key] = mustAddStandard(t, svc, doc)
	}

	for _, l := range [][2]string{
		{"CA", "SA1"}, {"CA", "SAA1"}, {"CB", "SB1"}, {"CD", "SD1"},
		{"CDD", "SDD1"}, {"CW", "SW1"}, {"CX", "SA3"}, {"CX", "SX1"},
	} {
		require.NoError(t, svc.AddLink(ctx, cres[l[0]], stored[l[1]], defs.LinkTypeLinkedTo))
	}

	for _, l := range [][2]string{{"CC", "CA"}, {"CC", "CB"}, {"CC", "CD"}, {"CD", "CDD"}} {
		require.NoError(t, svc.AddInternalLink(ctx, cres[l[0]], cres[l[1]], defs.LinkTypeContains))
	}

	return cres, standards
}

func linkedTo(doc defs.Document, others ...defs.Document) defs.Document {
	for _, o := range others {
		doc.AddLink(defs.Link{Type: defs.LinkTypeLinkedTo, Document: o})
	}
	return doc
}

func TestCREService_GapAnalysis(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)
	_, s := setupGapGraph(t, svc)

	tests := []struct {
		names    []string
		expected []defs.Document
	}{
		{
			names:    []string{"SA"},
			expected: []defs.Document{s["SA1"], s["SA2"], s["SA3"]},
		},
		{
			// shared CRE
			names: []string{"SA", "SAA"},
			expected: []defs.Document{
				linkedTo(s["SA1"], s["SAA1"]),
				linkedTo(s["SAA1"], s["SA1"]),
				s["SA2"], s["SA3"],
			},
		},
		{
			names: []string{"SAA", "SA"},
			expected: []defs.Document{
				linkedTo(s["SA1"], s["SAA1"]),
				linkedTo(s["SAA1"], s["SA1"]),
				s["SA2"], s["SA3"],
			},
		},
		{
			// cousins through CC
			names: []string{"SA", "SDD"},
			expected: []defs.Document{
				linkedTo(s["SA1"], s["SDD1"]),
				linkedTo(s["SDD1"], s["SA1"]),
				s["SA2"], s["SA3"],
			},
		},
		{
			names:    []string{"SA", "SW"},
			expected: []defs.Document{s["SA1"], s["SA2"], s["SA3"], s["SW1"]},
		},
		{
			names: []string{"SA", "SB", "SD", "SW"},
			expected: []defs.Document{
				linkedTo(s["SA1"], s["SB1"], s["SD1"]),
				linkedTo(s["SB1"], s["SA1"], s["SD1"]),
				linkedTo(s["SD1"], s["SA1"], s["SB1"]),
				s["SA2"], s["SA3"], s["SW1"],
			},
		},
		{
			names: []string{"SA", "SX"},
			expected: []defs.Document{
				s["SA1"], s["SA2"],
				linkedTo(s["SA3"], s["SX1"]),
				linkedTo(s["SX1"], s["SA3"]),
			},
		},
		{
			// parent and child
			names: []string{"SD", "SDD"},
			expected: []defs.Document{
				linkedTo(s["SD1"], s["SDD1"]),
				linkedTo(s["SDD1"], s["SD1"]),
			},
		},
		{
			names:    []string{" SW ", "SW", ""},
			expected: []defs.Document{s["SW1"]},
		},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.names, ","), func(t *testing.T) {
			res, err := svc.GapAnalysis(ctx, tt.names)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, res)
		})
	}

	res, err := svc.GapAnalysis(ctx, []string{"NoSuchStandard"})
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = svc.GapAnalysis(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCREService_GapAnalysisSymmetric(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)
	setupGapGraph(t, svc)

	ab, err := svc.GapAnalysis(ctx, []string{"SB", "SDD", "SX"})
	require.NoError(t, err)

	for _, names := range [][]string{{"SDD", "SB", "SX"}, {"SX", "SDD", "SB"}} {
		ba, err := svc.GapAnalysis(ctx, names)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestCREService_GapAnalysisCache(t *testing.T) {
	ctx := context.TODO()
	svc := newCachedTestService(t)
	cres, s := setupGapGraph(t, svc)

	unconnected := []defs.Document{s["SA1"], s["SA2"], s["SA3"], s["SW1"]}

	res, err := svc.GapAnalysis(ctx, []string{"SA", "SW"})
	require.NoError(t, err)
	assert.ElementsMatch(t, unconnected, res)

	// served from the cache
	res, err = svc.GapAnalysis(ctx, []string{"SW", "SA"})
	require.NoError(t, err)
	assert.ElementsMatch(t, unconnected, res)

	// CW joins the hierarchy under CC, the cached result must not be reused
	require.NoError(t, svc.AddInternalLink(ctx, cres["CC"], cres["CW"], defs.LinkTypeContains))

	res, err = svc.GapAnalysis(ctx, []string{"SA", "SW"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []defs.Document{
		linkedTo(s["SA1"], s["SW1"]),
		linkedTo(s["SW1"], s["SA1"]),
		s["SA2"],
		s["SA3"],
	}, res)
}
