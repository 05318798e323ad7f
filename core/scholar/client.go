package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	coreerrors "github.com/adalundhe/citegraph/core/errors"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Semantic Scholar Graph API paper endpoint.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1/paper"

	// DefaultPageSize is the API's maximum page size.
	DefaultPageSize = 1000

	// DefaultFetchLimit caps total entries retrieved per relation query.
	DefaultFetchLimit = 10000

	searchFields  = "paperId,title,year"
	detailsFields = "paperId,title,year,citationCount"
)

// relationFields lists the response fields for one relation direction.
func relationFields(rel RelationType) string {
	key := rel.Key()
	return fmt.Sprintf("isInfluential,%[1]s.paperId,%[1]s.title,%[1]s.year,%[1]s.citationCount", key)
}

// HTTPClient abstracts the transport so tests can inject fakes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds Client construction parameters.
type Config struct {
	BaseURL    string
	APIKey     string        // Optional, sent as x-api-key when set
	PageSize   int           // Optional, defaults to 1000
	PageDelay  time.Duration // Courtesy wait between pages; zero disables pacing
	FetchLimit int           // Default ceiling when a query has no Limit
	Retry      *coreerrors.RetryPolicy
	HTTPClient HTTPClient

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// Client is a sequential Semantic Scholar API client. All methods block;
// rate-limit handling and page pacing happen internally.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	pageDelay  time.Duration
	fetchLimit int
	http       HTTPClient
	policy     *coreerrors.RetryPolicy
	retry      *coreerrors.Executor
	classifier *coreerrors.ErrorClassifier
	logger     *slog.Logger
}

// New creates a Client.
func New(cfg Config) *Client {
	cfg = applyClientDefaults(cfg)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		pageDelay:  cfg.PageDelay,
		fetchLimit: cfg.FetchLimit,
		http:       cfg.HTTPClient,
		policy:     cfg.Retry,
		retry:      coreerrors.NewExecutor(cfg.Retry),
		classifier: coreerrors.NewErrorClassifier(),
		logger:     logger.With(slog.String("component", "scholar")),
	}
}

func applyClientDefaults(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.Retry == nil {
		cfg.Retry = coreerrors.DefaultGraphPolicy()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return cfg
}

// =============================================================================
// Wire Format
// =============================================================================

type paperJSON struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Year          *int   `json:"year"`
	CitationCount *int   `json:"citationCount"`
}

func (p *paperJSON) toPaper() Paper {
	if p == nil {
		return Paper{}
	}
	paper := Paper{ID: p.PaperID, Title: p.Title}
	if p.Year != nil {
		paper.Year = *p.Year
	}
	if p.CitationCount != nil {
		paper.Citations = *p.CitationCount
	}
	return paper
}

type searchResponse struct {
	Total int         `json:"total"`
	Data  []paperJSON `json:"data"`
}

type relationItem struct {
	IsInfluential bool       `json:"isInfluential"`
	CitingPaper   *paperJSON `json:"citingPaper"`
	CitedPaper    *paperJSON `json:"citedPaper"`
}

func (it relationItem) related(rel RelationType) *paperJSON {
	if rel == RelationCitations {
		return it.CitingPaper
	}
	return it.CitedPaper
}

type relationsResponse struct {
	Offset int            `json:"offset"`
	Next   int            `json:"next"`
	Data   []relationItem `json:"data"`
}

// =============================================================================
// Operations
// =============================================================================

// SearchBestMatch resolves a free-text title to the single best-matching
// paper. No match is a fatal error: the caller cannot proceed without a
// seed.
func (c *Client) SearchBestMatch(ctx context.Context, title string) (*Paper, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("limit", "1")
	params.Set("fields", searchFields)

	var resp searchResponse
	if err := c.getJSON(ctx, "/search", params, &resp); err != nil {
		return nil, coreerrors.NewTieredError(coreerrors.TierFatal, "title search failed", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].PaperID == "" {
		return nil, coreerrors.NewTieredError(coreerrors.TierFatal,
			fmt.Sprintf("no publication matches %q", title), nil)
	}

	paper := resp.Data[0].toPaper()
	c.logger.Debug("resolved best match",
		slog.String("paper_id", paper.ID),
		slog.String("title", paper.Title))
	return &paper, nil
}

// PaperDetails fetches the full summary for one paper id, including its
// citation count.
func (c *Client) PaperDetails(ctx context.Context, id string) (*Paper, error) {
	params := url.Values{}
	params.Set("fields", detailsFields)

	var resp paperJSON
	if err := c.getJSON(ctx, "/"+url.PathEscape(id), params, &resp); err != nil {
		return nil, coreerrors.WrapWithTier(coreerrors.TierDegraded, "details fetch failed", err)
	}
	paper := resp.toPaper()
	return &paper, nil
}

// FetchRelations retrieves one relation list across pages, stopping at a
// short page or the query's limit. A failed page ends the retrieval early
// with whatever accumulated: partial results beat an aborted crawl. The
// returned error is non-nil only when the context was cancelled.
func (c *Client) FetchRelations(ctx context.Context, q RelationQuery) ([]RelationEntry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = c.fetchLimit
	}

	// Fresh limiter per retrieval: first page immediate, later pages paced.
	pager := rate.NewLimiter(rate.Every(c.pageDelay), 1)

	entries := make([]RelationEntry, 0)
	for offset := 0; len(entries) < limit; offset += c.pageSize {
		if err := pager.Wait(ctx); err != nil {
			return entries, err
		}

		batch, err := c.fetchPage(ctx, q.PaperID, q.Type, offset)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return entries, ctxErr
			}
			c.logger.Warn("relation page dropped",
				slog.String("paper_id", q.PaperID),
				slog.String("relation", string(q.Type)),
				slog.Int("offset", offset),
				slog.String("error", err.Error()))
			break
		}

		entries = append(entries, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// fetchPage retrieves at most one page of relation entries. Entries whose
// related paper is absent are kept as zero-value papers so page counting
// stays faithful to the raw response; consumers decide what to drop.
func (c *Client) fetchPage(ctx context.Context, id string, rel RelationType, offset int) ([]RelationEntry, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("fields", relationFields(rel))

	var resp relationsResponse
	if err := c.getJSON(ctx, "/"+url.PathEscape(id)+"/"+string(rel), params, &resp); err != nil {
		return nil, err
	}

	entries := make([]RelationEntry, 0, len(resp.Data))
	for _, item := range resp.Data {
		entries = append(entries, RelationEntry{
			Paper:       item.related(rel).toPaper(),
			Influential: item.IsInfluential,
		})
	}
	return entries, nil
}

// getJSON performs one GET with 429-aware retries and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	attempt := 0
	return c.retry.Execute(ctx, func() error {
		attempt++

		req, err := c.newRequest(ctx, path, params)
		if err != nil {
			return coreerrors.WrapWithTier(coreerrors.TierDegraded, "build request", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return coreerrors.WrapWithTier(coreerrors.TierDegraded, "request failed", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn("rate limited",
				slog.String("path", path),
				slog.Duration("wait", coreerrors.CalculateDelay(attempt-1, c.policy)))
			return c.classifier.FromStatus(resp.StatusCode, "rate limited").WithContext("path", path)
		}
		if resp.StatusCode != http.StatusOK {
			return c.classifier.FromStatus(resp.StatusCode, "unexpected status").WithContext("path", path)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return coreerrors.WrapWithTier(coreerrors.TierDegraded, "decode response", err)
		}
		return nil
	})
}

func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	return req, nil
}
