// Package scholar talks to the Semantic Scholar Graph API: best-match
// title search, paper details, and paginated reference/citation retrieval
// with filtering, sorting, and per-query memoization.
package scholar

import (
	"fmt"
	"strings"
)

// Paper is the immutable publication summary the API returns. Year 0 means
// the publication year is unknown; Citations is 0 when the count is absent.
type Paper struct {
	ID        string
	Title     string
	Year      int
	Citations int
}

// HasYear reports whether the publication year is known.
func (p Paper) HasYear() bool { return p.Year != 0 }

// RelationEntry pairs a related paper with the influence flag the API
// attaches to the relation edge itself.
type RelationEntry struct {
	Paper       Paper
	Influential bool
}

// RelationType selects which side of the citation edge to traverse.
type RelationType string

const (
	RelationReferences RelationType = "references"
	RelationCitations  RelationType = "citations"
)

// Key returns the JSON field holding the related paper for this relation
// type: references nest it under citedPaper, citations under citingPaper.
func (r RelationType) Key() string {
	if r == RelationCitations {
		return "citingPaper"
	}
	return "citedPaper"
}

// Valid reports whether r is one of the two supported relation types.
func (r RelationType) Valid() bool {
	return r == RelationReferences || r == RelationCitations
}

// ParseRelationType accepts singular or plural spellings.
func ParseRelationType(s string) (RelationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference", "references":
		return RelationReferences, nil
	case "citation", "citations":
		return RelationCitations, nil
	default:
		return "", fmt.Errorf("unknown relation type %q (want reference or citation)", s)
	}
}

// RelationQuery identifies one memoizable relation retrieval. The struct is
// comparable; structural equality is the cache contract. Limit caps the
// total entries fetched across pages (0 means the client default).
type RelationQuery struct {
	PaperID         string
	Type            RelationType
	InfluentialOnly bool
	SinceYear       int
	UntilYear       int
	Limit           int
}

// CacheKey renders the query as a stable string for per-key locking and
// log lines.
func (q RelationQuery) CacheKey() string {
	return fmt.Sprintf("%s/%s?influential=%t&since=%d&until=%d&limit=%d",
		q.PaperID, q.Type, q.InfluentialOnly, q.SinceYear, q.UntilYear, q.Limit)
}
