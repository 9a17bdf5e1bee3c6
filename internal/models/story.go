package models

import "time"

// Document type tags shared with the web tier; both live in one collection.
const (
	GlobalStoryType = "GLOBALSTORY_TYPE"
	UserType        = "USER_TYPE"
)

// Story is one ingested news article.
// StoryID is derived from the canonical URL and is unique within any story list.
type Story struct {
	StoryID        string    `bson:"storyID" json:"storyID"`
	Title          string    `bson:"title" json:"title"`
	ContentSnippet string    `bson:"contentSnippet" json:"contentSnippet"`
	Date           time.Time `bson:"date" json:"date"`
	ImageURL       string    `bson:"imageUrl" json:"imageUrl"`
	Link           string    `bson:"link" json:"link"`
	Source         string    `bson:"source" json:"source"`
}

// StoryPool is the singleton global story document, newest story first.
type StoryPool struct {
	ID      string  `bson:"_id,omitempty" json:"_id,omitempty"`
	Type    string  `bson:"type" json:"type"`
	Stories []Story `bson:"newsStories" json:"newsStories"`
}

// Len returns the number of pooled stories; a nil pool is empty.
func (p *StoryPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Stories)
}
