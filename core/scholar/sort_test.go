package scholar_test

import (
	"testing"

	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, year, citations int, influential bool) scholar.RelationEntry {
	return scholar.RelationEntry{
		Paper:       scholar.Paper{ID: id, Title: "Paper " + id, Year: year, Citations: citations},
		Influential: influential,
	}
}

func ids(entries []scholar.RelationEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Paper.ID
	}
	return out
}

func TestSortEntries_CitationPrimary(t *testing.T) {
	entries := []scholar.RelationEntry{
		entry("a", 2019, 50, false),
		entry("b", 2020, 10, false),
		entry("c", 2018, 80, false),
		entry("d", 2021, 5, false),
		entry("e", 2017, 30, false),
	}

	scholar.SortEntries(entries, scholar.SortByCitations)

	assert.Equal(t, []string{"c", "a", "e", "b", "d"}, ids(entries))
}

func TestSortEntries_InfluentialPrimary(t *testing.T) {
	entries := []scholar.RelationEntry{
		entry("a", 2019, 500, false),
		entry("b", 2020, 10, true),
		entry("c", 2018, 80, true),
	}

	scholar.SortEntries(entries, scholar.SortByInfluential)

	// Influential entries first, citation count breaking the tie between them
	assert.Equal(t, []string{"c", "b", "a"}, ids(entries))
}

func TestSortEntries_YearPrimary(t *testing.T) {
	entries := []scholar.RelationEntry{
		entry("a", 2015, 900, false),
		entry("b", 2021, 3, false),
		entry("c", 0, 5000, false), // unknown year sorts last
	}

	scholar.SortEntries(entries, scholar.SortByYear)

	assert.Equal(t, []string{"b", "a", "c"}, ids(entries))
}

func TestSortEntries_TiebreakerChain(t *testing.T) {
	// Identical citation counts: influential wins, then the newer year
	entries := []scholar.RelationEntry{
		entry("old", 2010, 100, false),
		entry("new", 2020, 100, false),
		entry("inf", 2005, 100, true),
	}

	scholar.SortEntries(entries, scholar.SortByCitations)

	assert.Equal(t, []string{"inf", "new", "old"}, ids(entries))
}

func TestSortEntries_Deterministic(t *testing.T) {
	build := func() []scholar.RelationEntry {
		return []scholar.RelationEntry{
			entry("a", 2019, 50, false),
			entry("b", 2019, 50, false),
			entry("c", 2018, 80, true),
			entry("d", 2019, 50, false),
		}
	}

	first := build()
	scholar.SortEntries(first, scholar.SortByCitations)

	for i := 0; i < 10; i++ {
		again := build()
		scholar.SortEntries(again, scholar.SortByCitations)
		require.Equal(t, first, again, "sort must be deterministic across runs")
	}

	// Fully tied entries keep their input order (stable sort)
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(first))
}

func TestFilterEntries_InfluentialOnly(t *testing.T) {
	entries := []scholar.RelationEntry{
		entry("a", 2019, 50, false),
		entry("b", 2020, 10, true),
		entry("c", 2018, 80, false),
	}

	kept := scholar.FilterEntries(entries, scholar.RelationQuery{InfluentialOnly: true})

	assert.Equal(t, []string{"b"}, ids(kept))
}

func TestFilterEntries_YearWindow(t *testing.T) {
	entries := []scholar.RelationEntry{
		entry("a", 2015, 1, false),
		entry("b", 2018, 1, false),
		entry("c", 2021, 1, false),
		entry("unknown", 0, 1, false),
	}

	tests := []struct {
		name  string
		query scholar.RelationQuery
		want  []string
	}{
		{"no bounds keeps unknown year", scholar.RelationQuery{}, []string{"a", "b", "c", "unknown"}},
		{"since bound", scholar.RelationQuery{SinceYear: 2018}, []string{"b", "c"}},
		{"until bound", scholar.RelationQuery{UntilYear: 2018}, []string{"a", "b"}},
		{"inclusive window", scholar.RelationQuery{SinceYear: 2015, UntilYear: 2021}, []string{"a", "b", "c"}},
		{"unknown year fails any set bound", scholar.RelationQuery{SinceYear: 1900}, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := scholar.FilterEntries(entries, tt.query)
			assert.Equal(t, tt.want, ids(kept))
		})
	}
}

func TestFilterEntries_DoesNotMutateInput(t *testing.T) {
	entries := []scholar.RelationEntry{
		entry("a", 2019, 50, false),
		entry("b", 2020, 10, true),
	}

	_ = scholar.FilterEntries(entries, scholar.RelationQuery{InfluentialOnly: true})

	assert.Equal(t, []string{"a", "b"}, ids(entries))
}

func TestParseRelationType(t *testing.T) {
	tests := []struct {
		in   string
		want scholar.RelationType
	}{
		{"reference", scholar.RelationReferences},
		{"references", scholar.RelationReferences},
		{"citation", scholar.RelationCitations},
		{"Citations", scholar.RelationCitations},
	}
	for _, tt := range tests {
		got, err := scholar.ParseRelationType(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := scholar.ParseRelationType("sideways")
	assert.Error(t, err)
}

func TestRelationTypeKey(t *testing.T) {
	assert.Equal(t, "citedPaper", scholar.RelationReferences.Key())
	assert.Equal(t, "citingPaper", scholar.RelationCitations.Key())
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want scholar.SortKey
	}{
		{"citation", scholar.SortByCitations},
		{"influential", scholar.SortByInfluential},
		{"year", scholar.SortByYear},
	}
	for _, tt := range tests {
		got, err := scholar.ParseSortKey(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := scholar.ParseSortKey("relevance")
	assert.Error(t, err)
}
