package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	got := SplitTags("tag1, dots.5.5, space 6 , several spaces and newline          7        \n")
	assert.Equal(t, []string{"tag1", "dots.5.5", "space 6", "several spaces and newline          7"}, got)

	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags(" , ,"))
	assert.Equal(t, "a,b c", JoinTags([]string{" a", "", "b c "}))
}

func TestMatchTags(t *testing.T) {
	cre := "tag1,dash-2,underscore_3,space 4,co_mb-ination%5"
	standard := "tag1, dots.5.5, space 6 , several spaces and newline          7        \n"

	tests := []struct {
		name     string
		query    []string
		cre      bool
		standard bool
	}{
		{"single tag on cre", []string{"dash-2"}, true, false},
		{"all tags must match", []string{"tag1", "underscore_3"}, true, false},
		{"single tag on standard", []string{"space 6"}, false, true},
		{"two tags on standard", []string{"dots.5.5", "space 6"}, false, true},
		{"substring of a token", []string{"space"}, true, true},
		{"shared tags", []string{"space", "tag1"}, true, true},
		{"common tag", []string{"tag1"}, true, true},
		{"no tags", nil, false, false},
		{"unknown tag", []string{"this should not be a tag"}, false, false},
		{"token is not a substring of the query", []string{"tag1tag1"}, false, false},
		{"case sensitive", []string{"TAG1"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cre, MatchTags(cre, tt.query))
			assert.Equal(t, tt.standard, MatchTags(standard, tt.query))
		})
	}
}

func TestMatchLike(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"12%", "123", true},
		{"12%", "012", false},
		{"gcC%", "gcC1", true},
		{"gcC%", "gcc1", false},
		{"%CD%", "gcCD2", true},
		{"g_C1", "gcC1", true},
		{"g_C1", "gC1", false},
		{"%", "", true},
		{"", "", true},
		{"", "a", false},
		{`100\%`, "100%", true},
		{`100\%`, "1000", false},
		{"a%b%c", "aXbYc", true},
		{"a%b%c", "aXbY", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLike(tt.pattern, tt.value))
		})
	}
}

func TestMatchFilter(t *testing.T) {
	assert.True(t, MatchFilter("gcC1", "gcC1", false))
	assert.False(t, MatchFilter("gcC", "gcC1", false))
	// partial filters without wildcards are substrings
	assert.True(t, MatchFilter("cC", "gcC1", true))
	assert.True(t, MatchFilter("12%", "123", true))
	assert.False(t, MatchFilter("cc", "gcC1", true))
	assert.Equal(t, `a\_b\%c\\`, EscapeLike(`a_b%c\`))
	assert.Equal(t, "%abc%", LikePattern("abc"))
	assert.Equal(t, "ab%", LikePattern("ab%"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("ipsum", "textSearchCRE", "lorem ipsum"))
	assert.False(t, ContainsAny("", "a", "b"))
	assert.False(t, ContainsAny("Ipsum", "lorem ipsum"))
}
