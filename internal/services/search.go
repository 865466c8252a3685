package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
)

type SearchParams struct {
	Query      string
	CategoryID *uint
	// CategoryGiven is set when the caller sent a category filter, even an
	// unparsable one. It turns off the preference restriction.
	CategoryGiven bool
	// User is nil for anonymous callers.
	User *models.User
}

type SearchService interface {
	Search(ctx context.Context, params SearchParams) ([]models.JobListing, error)
}

type searchService struct {
	listingRepo  repositories.ListingRepository
	categoryRepo repositories.CategoryRepository
	oracle       Oracle
	index        CategoryIndex
	logger       *zap.Logger
}

func NewSearchService(
	listingRepo repositories.ListingRepository,
	categoryRepo repositories.CategoryRepository,
	oracle Oracle,
	index CategoryIndex,
	log *zap.Logger,
) SearchService {
	return &searchService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		oracle:       oracle,
		index:        index,
		logger:       logger.OrNop(log),
	}
}

// Search implements SearchService.
func (s *searchService) Search(ctx context.Context, params SearchParams) ([]models.JobListing, error) {
	listings, err := s.listingRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	in := SearchInput{
		Query:         strings.TrimSpace(params.Query),
		CategoryID:    params.CategoryID,
		CategoryGiven: params.CategoryGiven || params.CategoryID != nil,
		Listings:      listings,
	}
	if params.User != nil {
		in.Role = params.User.Role
		if params.User.Profile != nil {
			for _, c := range params.User.Profile.PreferredCategories {
				in.PreferredCategoryIDs = append(in.PreferredCategoryIDs, c.ID)
			}
		}
	}

	if in.Query != "" {
		in.MatchedCategories = s.matchCategories(ctx, in.Query)
	}

	results := ResolveSearch(in)
	s.logger.Debug("search resolved",
		zap.String("query", in.Query),
		zap.Strings("matched_categories", in.MatchedCategories),
		zap.Int("results", len(results)))
	return results, nil
}

// matchCategories merges the oracle's categories with semantic index
// neighbours. Either source failing contributes nothing.
func (s *searchService) matchCategories(ctx context.Context, query string) []string {
	var matched []string

	if s.oracle != nil && s.oracle.Enabled() {
		categories, err := s.categoryRepo.List()
		if err != nil {
			s.logger.Warn("failed to load taxonomy for category matching", zap.Error(err))
		} else {
			matched = append(matched, s.oracle.MatchCategories(ctx, query, Vocabulary(categories))...)
		}
	}

	if s.index != nil {
		matched = append(matched, s.index.Nearest(ctx, query)...)
	}
	return matched
}

// SearchInput is everything the resolver needs. Listings must have their
// Category and Company loaded.
type SearchInput struct {
	Query                string
	CategoryID           *uint
	CategoryGiven        bool
	Role                 models.Role
	PreferredCategoryIDs []uint
	MatchedCategories    []string
	Listings             []models.JobListing
}

// ResolveSearch applies the role filter, the preference filter with its silent
// fallback, the query predicate and the explicit category constraint, in that
// order. Input order is preserved.
func ResolveSearch(in SearchInput) []models.JobListing {
	listings := in.Listings
	if in.Role == models.RoleAttachment {
		listings = filterListings(listings, func(l *models.JobListing) bool {
			return l.Terms == models.TermsAttachment
		})
	}

	query := strings.ToLower(strings.TrimSpace(in.Query))

	if query == "" && in.CategoryID == nil && !in.CategoryGiven && len(in.PreferredCategoryIDs) > 0 {
		preferred := make(map[uint]bool, len(in.PreferredCategoryIDs))
		for _, id := range in.PreferredCategoryIDs {
			preferred[id] = true
		}
		restricted := filterListings(listings, func(l *models.JobListing) bool {
			return preferred[l.CategoryID]
		})
		if len(restricted) > 0 {
			listings = restricted
		}
	}

	if query != "" {
		matcher := newQueryMatcher(query, in.MatchedCategories)
		listings = filterListings(listings, matcher.matches)
	}

	if in.CategoryID != nil {
		id := *in.CategoryID
		listings = filterListings(listings, func(l *models.JobListing) bool {
			return l.CategoryID == id
		})
	}

	return dedupeListings(listings)
}

type queryMatcher struct {
	query   string
	words   []string
	matched map[string]bool
}

func newQueryMatcher(query string, matchedCategories []string) *queryMatcher {
	m := &queryMatcher{query: query, matched: make(map[string]bool, len(matchedCategories))}
	for _, name := range matchedCategories {
		m.matched[strings.ToLower(strings.TrimSpace(name))] = true
	}
	for _, word := range strings.Fields(query) {
		if len([]rune(word)) > 2 {
			m.words = append(m.words, word)
		}
	}
	return m
}

func (m *queryMatcher) matches(l *models.JobListing) bool {
	if containsFold(l.Title, m.query) ||
		containsFold(l.CompanyName, m.query) ||
		containsFold(l.DisplayCompany(), m.query) ||
		containsFold(l.Description, m.query) ||
		containsFold(l.Category.Name, m.query) {
		return true
	}

	if m.matched[strings.ToLower(l.Category.Name)] {
		return true
	}

	for _, word := range m.words {
		if HasKeyword(l.Category, word) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerSubstr string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerSubstr)
}

func filterListings(listings []models.JobListing, keep func(*models.JobListing) bool) []models.JobListing {
	out := make([]models.JobListing, 0, len(listings))
	for i := range listings {
		if keep(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

func dedupeListings(listings []models.JobListing) []models.JobListing {
	seen := make(map[uint]bool, len(listings))
	out := make([]models.JobListing, 0, len(listings))
	for _, l := range listings {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}
