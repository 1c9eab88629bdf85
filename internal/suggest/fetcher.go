// Package suggest consumes the external insight service: it fetches ranked
// payee and category suggestions for transactions, deduplicates them against
// entities the user already has, and gates them by confidence.
package suggest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

// minDescriptionLength is the shortest description worth asking about.
// Anything shorter returns an empty result without touching the network.
const minDescriptionLength = 3

// Config holds configuration for the suggestion fetcher.
type Config struct {
	CacheTTL   time.Duration
	RetryDelay time.Duration
	RateLimit  int // requests per minute
}

// KnownEntities are the user's existing payees and categories, used for
// deduplication and as the fallback when the service is unreachable.
type KnownEntities struct {
	Payees     []model.Payee
	Categories []model.Category
}

// Result carries the ranked lists handed to the UI. Fallback is set when the
// service failed and the lists were built from known entities, unranked.
type Result struct {
	Payees     model.Suggestions
	Categories model.Suggestions
	Fallback   bool
}

// Fetcher requests suggestions from the insight service with caching,
// rate limiting and single-retry semantics.
type Fetcher struct {
	client    service.SuggestionService
	cache     *responseCache
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewFetcher creates a suggestion fetcher backed by the given client.
func NewFetcher(client service.SuggestionService, cfg Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	return &Fetcher{
		client:  client,
		cache:   newResponseCache(cfg.CacheTTL),
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
		retryOpts: service.RetryOptions{
			// One automatic retry, then the caller gets the fallback.
			MaxAttempts:  2,
			InitialDelay: retryDelay,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Fetch returns ranked suggestions for the request, deduplicated against the
// known entities. On persistent failure it returns the unranked known-entity
// fallback alongside the error, so callers can still render something useful.
func (f *Fetcher) Fetch(ctx context.Context, req service.SuggestionRequest, known KnownEntities) (*Result, error) {
	if len(strings.TrimSpace(req.Description)) < minDescriptionLength {
		f.logger.Debug("description below minimum length, skipping fetch",
			"description", req.Description)
		return &Result{}, nil
	}

	key := cacheKey(req, known)
	if cached, found := f.cache.get(key); found {
		f.logger.Debug("suggestion cache hit", "description", req.Description)
		return f.merge(cached, known), nil
	}

	if err := f.limiter.wait(ctx); err != nil {
		return fallback(known), err
	}

	var response *service.SuggestionResponse
	err := common.WithRetry(ctx, func() error {
		resp, fetchErr := f.client.FetchSuggestions(ctx, req)
		if fetchErr != nil {
			return fetchErr
		}
		response = resp
		return nil
	}, f.retryOpts)

	if err != nil {
		f.logger.Warn("suggestion fetch failed, falling back to known entities",
			"description", req.Description,
			"error", err)
		return fallback(known), fmt.Errorf("%w: %v", common.ErrSuggestionUnavailable, err)
	}

	f.cache.set(key, response)

	result := f.merge(response, known)
	f.logger.Debug("suggestions fetched",
		"description", req.Description,
		"payees", len(result.Payees),
		"categories", len(result.Categories))
	return result, nil
}

// Close releases the cache and limiter goroutines.
func (f *Fetcher) Close() {
	f.cache.Close()
	f.limiter.Close()
}

// merge deduplicates by id, annotates suggestions that match known entities,
// and ranks each list by confidence.
func (f *Fetcher) merge(response *service.SuggestionResponse, known KnownEntities) *Result {
	knownPayees := make(map[string]model.Payee, len(known.Payees))
	for _, p := range known.Payees {
		knownPayees[PayeeSuggestionID(p.ID)] = p
	}
	knownCategories := make(map[string]model.Category, len(known.Categories))
	for _, c := range known.Categories {
		knownCategories[CategorySuggestionID(c.ID)] = c
	}

	payees := dedupe(response.Payees, func(s *model.Suggestion) {
		if p, ok := knownPayees[s.ID]; ok {
			s.Type = model.SuggestionExisting
			s.Name = p.Name
			if s.Color == "" {
				s.Color = p.Color
			}
		}
	})
	categories := dedupe(response.Categories, func(s *model.Suggestion) {
		if c, ok := knownCategories[s.ID]; ok {
			s.Type = model.SuggestionExisting
			s.Name = c.Name
			if s.Color == "" {
				s.Color = c.Color
			}
		}
	})

	payees.Sort()
	categories.Sort()

	return &Result{Payees: payees, Categories: categories}
}

// dedupe keeps one suggestion per id, preferring the highest confidence.
func dedupe(suggestions model.Suggestions, annotate func(*model.Suggestion)) model.Suggestions {
	out := make(model.Suggestions, 0, len(suggestions))
	seen := make(map[string]int)

	for _, s := range suggestions {
		annotate(&s)
		if idx, ok := seen[s.ID]; ok && s.ID != "" {
			if s.Confidence > out[idx].Confidence {
				out[idx] = s
			}
			continue
		}
		seen[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}

// fallback builds unranked existing-entity lists for when the service is down.
func fallback(known KnownEntities) *Result {
	payees := make(model.Suggestions, 0, len(known.Payees))
	for _, p := range known.Payees {
		payees = append(payees, model.Suggestion{
			ID:    PayeeSuggestionID(p.ID),
			Name:  p.Name,
			Type:  model.SuggestionExisting,
			Color: p.Color,
		})
	}
	categories := make(model.Suggestions, 0, len(known.Categories))
	for _, c := range known.Categories {
		categories = append(categories, model.Suggestion{
			ID:    CategorySuggestionID(c.ID),
			Name:  c.Name,
			Type:  model.SuggestionExisting,
			Color: c.Color,
		})
	}
	return &Result{Payees: payees, Categories: categories, Fallback: true}
}

// cacheKey normalizes the full input tuple, including the known-entity sets,
// so a value-identical request within the TTL never reaches the network.
func cacheKey(req service.SuggestionRequest, known KnownEntities) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(req.Description)))
	b.WriteByte('|')
	if req.Amount != nil {
		b.WriteString(strconv.FormatFloat(*req.Amount, 'f', 2, 64))
	}
	b.WriteByte('|')
	b.WriteString(req.AccountID)
	b.WriteByte('|')
	b.WriteString(string(req.AccountType))

	ids := make([]string, 0, len(known.Payees)+len(known.Categories))
	for _, p := range known.Payees {
		ids = append(ids, PayeeSuggestionID(p.ID))
	}
	for _, c := range known.Categories {
		ids = append(ids, CategorySuggestionID(c.ID))
	}
	sort.Strings(ids)
	b.WriteByte('|')
	b.WriteString(strings.Join(ids, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)
}

// PayeeSuggestionID is the wire id for an existing payee.
func PayeeSuggestionID(id int64) string {
	return fmt.Sprintf("p%d", id)
}

// CategorySuggestionID is the wire id for an existing category.
func CategorySuggestionID(id int64) string {
	return fmt.Sprintf("c%d", id)
}

// ParsePayeeSuggestionID extracts the payee id from a suggestion id, if the
// suggestion refers to an existing payee.
func ParsePayeeSuggestionID(suggestionID string) (int64, bool) {
	return parseEntityID(suggestionID, 'p')
}

// ParseCategorySuggestionID extracts the category id from a suggestion id, if
// the suggestion refers to an existing category.
func ParseCategorySuggestionID(suggestionID string) (int64, bool) {
	return parseEntityID(suggestionID, 'c')
}

func parseEntityID(suggestionID string, prefix byte) (int64, bool) {
	if len(suggestionID) < 2 || suggestionID[0] != prefix {
		return 0, false
	}
	id, err := strconv.ParseInt(suggestionID[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
