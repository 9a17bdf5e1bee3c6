package matcher

import (
	"fmt"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

// TruncatePolicy combines a filter's existing stories with newly matched ones
// and caps the result at limit.
type TruncatePolicy func(existing, matched []models.Story, limit int) []models.Story

// KeepEarliest appends matched after existing and keeps the first limit entries.
// A filter that is already full therefore ignores new matches.
func KeepEarliest(existing, matched []models.Story, limit int) []models.Story {
	out := make([]models.Story, 0, len(existing)+len(matched))
	out = append(out, existing...)
	out = append(out, matched...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// KeepLatest appends matched after existing and drops the oldest entries
// from the front until limit remain.
func KeepLatest(existing, matched []models.Story, limit int) []models.Story {
	out := make([]models.Story, 0, len(existing)+len(matched))
	out = append(out, existing...)
	out = append(out, matched...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// PolicyByName resolves the TRUNCATE_POLICY setting.
func PolicyByName(name string) (TruncatePolicy, error) {
	switch name {
	case "", "keep-earliest":
		return KeepEarliest, nil
	case "keep-latest":
		return KeepLatest, nil
	}
	return nil, fmt.Errorf("unknown truncate policy %q", name)
}
