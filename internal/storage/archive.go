package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

// Uploader is the subset of MinIOStorage used by SnapshotArchiver.
type Uploader interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// SnapshotArchiver writes every persisted global story pool as a JSON object
// under "global-stories/<UTC timestamp>.json".
type SnapshotArchiver struct {
	up     Uploader
	prefix string
	now    func() time.Time
}

func NewSnapshotArchiver(up Uploader) *SnapshotArchiver {
	return &SnapshotArchiver{up: up, prefix: "global-stories/", now: time.Now}
}

// Archive uploads the pool snapshot and returns the object key.
func (a *SnapshotArchiver) Archive(ctx context.Context, p *models.StoryPool) (string, error) {
	if p == nil {
		return "", fmt.Errorf("archive: nil pool")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("archive encode: %w", err)
	}
	key := a.prefix + a.now().UTC().Format("20060102T150405Z") + ".json"
	if err := a.up.UploadFile(ctx, key, bytes.NewReader(b), int64(len(b)), "application/json"); err != nil {
		return "", fmt.Errorf("archive upload %s: %w", key, err)
	}
	return key, nil
}
