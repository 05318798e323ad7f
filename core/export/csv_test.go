package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/adalundhe/citegraph/core/export"
	"github.com/adalundhe/citegraph/core/scholar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Attention Is All You Need", "Attention_Is_All_You_Need"},
		{"Graphs: A Survey?", "Graphs_A_Survey"},
		{"pre-trained_models", "pre-trained_models"},
		{"trailing spaces   ", "trailing_spaces"},
		{"Über façade 123", "Über_façade_123"},
		{"!@#$%", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, export.SafeFilename(tc.in), tc.in)
	}
}

func TestRelationsCSVName(t *testing.T) {
	name := export.RelationsCSVName(scholar.RelationReferences, "Deep Learning")
	assert.Equal(t, "references_Deep_Learning.csv", name)

	name = export.RelationsCSVName(scholar.RelationCitations, "A/B: Testing")
	assert.Equal(t, "citations_AB_Testing.csv", name)
}

func TestGraphFileName(t *testing.T) {
	assert.Equal(t, "graph_all_Deep_Learning.html", export.GraphFileName("all", "Deep Learning", "html"))
	assert.Equal(t, "graph_citations_X.dot", export.GraphFileName("citations", "X", "dot"))
}

func TestWriteRelationsCSV(t *testing.T) {
	entries := []scholar.RelationEntry{
		{Paper: scholar.Paper{ID: "a", Title: "Some Paper", Year: 2019, Citations: 100}, Influential: true},
		{Paper: scholar.Paper{ID: "b", Title: "Graphs, Everywhere", Year: 2021, Citations: 12}, Influential: false},
		{Paper: scholar.Paper{ID: "c", Citations: 5}, Influential: false},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteRelationsCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"isInfluential", "citationCount", "year", "title"}, records[0])
	assert.Equal(t, []string{"true", "100", "2019", "Some Paper"}, records[1])
	assert.Equal(t, []string{"false", "12", "2021", "Graphs, Everywhere"}, records[2])
	assert.Equal(t, []string{"false", "5", "N/A", "Unknown"}, records[3])
}

func TestWriteRelationsCSV_EmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteRelationsCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"isInfluential", "citationCount", "year", "title"}, records[0])
}

func TestSaveRelationsCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "nested")
	entries := []scholar.RelationEntry{
		{Paper: scholar.Paper{ID: "a", Title: "Stored", Year: 2020, Citations: 3}, Influential: true},
	}

	path, err := export.SaveRelationsCSV(dir, scholar.RelationReferences, "Stored Paper", entries)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "references_Stored_Paper.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"true", "3", "2020", "Stored"}, records[1])
}
