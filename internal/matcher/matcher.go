package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/metrics"
)

// Matcher appends newly matching pool stories to each of a subscriber's filters.
type Matcher struct {
	gw     store.Gateway
	limit  int
	policy TruncatePolicy
	log    logger.Entry
}

// New returns a Matcher capping every filter at limit stories.
// A nil policy means KeepEarliest.
func New(gw store.Gateway, limit int, policy TruncatePolicy) *Matcher {
	if policy == nil {
		policy = KeepEarliest
	}
	return &Matcher{gw: gw, limit: limit, policy: policy, log: logger.With("matcher")}
}

// MatchFilter returns pool stories, in pool order, that are not yet in the
// filter and contain one of its keywords in the title or snippet. At most
// limit stories are returned.
func MatchFilter(f models.Filter, pool []models.Story, limit int) []models.Story {
	if limit <= 0 {
		return nil
	}
	keywords := make([]string, 0, len(f.Keywords))
	for _, k := range f.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return nil
	}

	existing := make(map[string]struct{}, len(f.NewsStories))
	for _, s := range f.NewsStories {
		existing[s.StoryID] = struct{}{}
	}

	var matched []models.Story
	for _, s := range pool {
		if _, ok := existing[s.StoryID]; ok {
			continue
		}
		if matchesAny(s, keywords) {
			matched = append(matched, s)
			if len(matched) >= limit {
				break
			}
		}
	}
	return matched
}

func matchesAny(s models.Story, keywords []string) bool {
	title := strings.ToLower(s.Title)
	snippet := strings.ToLower(s.ContentSnippet)
	for _, k := range keywords {
		if strings.Contains(title, k) || strings.Contains(snippet, k) {
			return true
		}
	}
	return false
}

// Apply computes the subscriber's new filters against pool without writing them.
// The input subscriber is not modified.
func (m *Matcher) Apply(sub *models.Subscriber, pool *models.StoryPool) ([]models.Filter, int) {
	var stories []models.Story
	if pool != nil {
		stories = pool.Stories
	}
	filters := make([]models.Filter, len(sub.Filters))
	added := 0
	for i, f := range sub.Filters {
		matched := MatchFilter(f, stories, m.limit)
		f.NewsStories = m.policy(f.NewsStories, matched, m.limit)
		added += kept(matched, f.NewsStories)
		filters[i] = f
	}
	return filters, added
}

// kept counts how many of matched survived truncation into result.
func kept(matched, result []models.Story) int {
	if len(matched) == 0 {
		return 0
	}
	in := make(map[string]struct{}, len(result))
	for _, s := range result {
		in[s.StoryID] = struct{}{}
	}
	n := 0
	for _, s := range matched {
		if _, ok := in[s.StoryID]; ok {
			n++
		}
	}
	return n
}

// Refresh matches the subscriber against pool and persists the new filters.
// It returns the stored subscriber and the number of stories added.
func (m *Matcher) Refresh(ctx context.Context, sub *models.Subscriber, pool *models.StoryPool) (*models.Subscriber, int, error) {
	if sub == nil || sub.ID == "" {
		return nil, 0, fmt.Errorf("refresh: subscriber without id")
	}
	filters, added := m.Apply(sub, pool)

	updated, err := m.gw.UpdateFilters(ctx, sub.ID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("refresh subscriber %s: %w", sub.ID, err)
	}
	metrics.StoriesMatched.Add(float64(added))
	if len(filters) > 0 {
		m.log.Infof("%d stories in total added for subscriber %s", added, sub.ID)
	} else {
		m.log.Warnf("no stories added because subscriber %s has no filters", sub.ID)
	}
	return updated, added, nil
}
