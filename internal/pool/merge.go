package pool

import "github.com/newswatcher/newswatcher/backend/news-worker/internal/models"

// Merge puts fresh stories ahead of existing ones and keeps the newest max entries.
// Fresh stories whose ID is already pooled, or repeated within fresh, are dropped.
// It returns the merged list and how many fresh stories were added.
func Merge(existing, fresh []models.Story, max int) ([]models.Story, int) {
	seen := make(map[string]struct{}, len(existing)+len(fresh))
	for _, s := range existing {
		seen[s.StoryID] = struct{}{}
	}

	added := make([]models.Story, 0, len(fresh))
	for _, s := range fresh {
		if _, dup := seen[s.StoryID]; dup {
			continue
		}
		seen[s.StoryID] = struct{}{}
		added = append(added, s)
	}

	merged := make([]models.Story, 0, len(added)+len(existing))
	merged = append(merged, added...)
	merged = append(merged, existing...)
	if max >= 0 && len(merged) > max {
		merged = merged[:max]
	}
	return merged, len(added)
}
