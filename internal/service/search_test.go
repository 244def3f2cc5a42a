package service

import (
	"context"
	"testing"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCREService_GetByTags(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)

	creDoc := defs.NewCRE("", "tagCREname1", "tagCREdesc1")
	creDoc.Tags = []string{"tag1", "dash-2", "underscore_3", "space 4", "co_mb-ination%5"}
	mustAddCRE(t, svc, creDoc)

	standardDoc := defs.NewStandard("tagsstand", "tagsstand", "4.5.6.7", "https://example.com")
	standardDoc.Tags = []string{"tag1", " dots.5.5", " space 6 ", " several spaces and newline          7        \n"}
	mustAddStandard(t, svc, standardDoc)

	cre := defs.NewCRE("", "tagCREname1", "tagCREdesc1")
	cre.Tags = []string{"tag1", "dash-2", "underscore_3", "space 4", "co_mb-ination%5"}
	standard := defs.NewStandard("tagsstand", "tagsstand", "4.5.6.7", "https://example.com")
	standard.Tags = []string{"tag1", "dots.5.5", "space 6", "several spaces and newline          7"}

	tests := []struct {
		name     string
		tags     []string
		expected []defs.Document
	}{
		{name: "single cre tag", tags: []string{"dash-2"}, expected: []defs.Document{cre}},
		{name: "every tag must match", tags: []string{"tag1", "underscore_3"}, expected: []defs.Document{cre}},
		{name: "single standard tag", tags: []string{"space 6"}, expected: []defs.Document{standard}},
		{name: "two standard tags", tags: []string{"dots.5.5", "space 6"}, expected: []defs.Document{standard}},
		{name: "substring of a tag", tags: []string{"space"}, expected: []defs.Document{cre, standard}},
		{name: "shared tags", tags: []string{"space", "tag1"}, expected: []defs.Document{cre, standard}},
		{name: "shared tag", tags: []string{"tag1"}, expected: []defs.Document{cre, standard}},
		{name: "wildcards are literal", tags: []string{"co_mb"}, expected: []defs.Document{cre}},
		{name: "case sensitive", tags: []string{"TAG1"}},
		{name: "no tags", tags: []string{}},
		{name: "blank tags", tags: []string{"", "  "}},
		{name: "blank tags are ignored", tags: []string{"", "dash-2"}, expected: []defs.Document{cre}},
		{name: "unknown tag", tags: []string{"this should not be a tag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetByTags(ctx, tt.tags)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Empty(t, res)
				return
			}
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestCREService_TextSearch(t *testing.T) {
	ctx := context.TODO()
	svc, _ := newTestService(t)

	cre := defs.NewCRE("123-456", "textSearchCRE", "lorem ipsum tsSection+tsC")
	s1 := defs.NewStandard("textSearchStandard", "tsSection", "tsSubSection", "https://example.com/tsSection/tsSubSection")
	s2 := defs.NewStandard("textSearchStandard", "tsSection", "tsSubSection1", "https://example.com/tsSection/tsSubSection1")
	s3 := defs.NewStandard("textSearchStandard", "tsSection1", "tsSubSection1", "https://example.com/tsSection1/tsSubSection1")
	spaced := defs.NewStandard("Text Search Standard", "ts section", "", "")

	mustAddCRE(t, svc, cre)
	for _, s := range []defs.Document{s1, s2, s3, spaced} {
		mustAddStandard(t, svc, s)
	}

	expected := map[string][]defs.Document{
		"123-456":                          {cre},
		"CRE:textSearchCRE":                {cre},
		"CRE textSearchCRE":                {cre},
		"cre:textSearchCRE":                {cre},
		"CRE:123-456":                      {cre},
		"CRE 123-456":                      {cre},
		"Standard:textSearchStandard":      {s1, s2, s3},
		"Standard textSearchStandard":      {s1, s2, s3},
		"Standard:tsSection":               {s1, s2},
		"Standard tsSection":               {s1, s2},
		"Standard:tsSection:tsSubSection1": {s2},
		"Standard tsSection tsSubSection1": {s2},
		"Standard:tsSubSection1":           {s2, s3},
		"Standard tsSubSection1":           {s2, s3},
		"Standard:textSearchStandard:tsSection:tsSubSection": {s1},
		"Standard:https://example.com/tsSection/tsSubSection1":  {s2},
		"Standard https://example.com/tsSection1/tsSubSection1": {s3},
		"Standard:Text Search Standard":                         {spaced},
		"Standard:https://example.com/tsSection/":               {s1, s2},
		"Standard https://example.com/tsSection":                {s1, s2, s3},
		"https://example.com/tsSection":                         {s1, s2, s3},
		"ipsum":                                                 {cre},
		"tsSection":                                             {cre, s1, s2, s3},
		"ts section":                                            {spaced},
		"Standard:tsSection:tsSubSection1:x:y":                  nil,
		"CRE:nothing":                                           nil,
		"nothing at all":                                        nil,
		"":                                                      nil,
	}

	for query, docs := range expected {
		t.Run(query, func(t *testing.T) {
			res, err := svc.TextSearch(ctx, query)
			require.NoError(t, err)
			if docs == nil {
				assert.Empty(t, res)
				return
			}
			assert.ElementsMatch(t, docs, res)
		})
	}
}
