package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	key         string
	body        []byte
	size        int64
	contentType string
	err         error
}

func (f *fakeUploader) UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.key, f.body, f.size, f.contentType = key, b, size, contentType
	return nil
}

func TestSnapshotArchiver_Archive(t *testing.T) {
	up := &fakeUploader{}
	a := NewSnapshotArchiver(up)
	a.now = func() time.Time { return time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC) }

	pool := &models.StoryPool{
		Type:    models.GlobalStoryType,
		Stories: []models.Story{{StoryID: "s1", Title: "Apple unveils new phone"}},
	}
	key, err := a.Archive(context.Background(), pool)
	require.NoError(t, err)
	require.Equal(t, "global-stories/20261014T060000Z.json", key)
	require.Equal(t, key, up.key)
	require.Equal(t, "application/json", up.contentType)
	require.Equal(t, int64(len(up.body)), up.size)

	var got models.StoryPool
	require.NoError(t, json.Unmarshal(up.body, &got))
	require.Len(t, got.Stories, 1)
	require.Equal(t, "s1", got.Stories[0].StoryID)
}

func TestSnapshotArchiver_Errors(t *testing.T) {
	a := NewSnapshotArchiver(&fakeUploader{err: errors.New("bucket gone")})
	_, err := a.Archive(context.Background(), &models.StoryPool{})
	require.ErrorContains(t, err, "bucket gone")

	_, err = a.Archive(context.Background(), nil)
	require.Error(t, err)
}
