package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	m, err := Decode([]byte(`{"command":"REFRESH_STORIES","subscriberSnapshot":{"_id":"u1","type":"USER_TYPE","newsFilters":[{"name":"Tech","keyWords":["apple"],"newsStories":[]}]}}`))
	require.NoError(t, err)
	require.Equal(t, CommandRefreshStories, m.Command)
	require.Equal(t, "u1", m.Subscriber.ID)
	require.Equal(t, []string{"apple"}, m.Subscriber.Filters[0].Keywords)

	m, err = Decode([]byte(`{"command":"PURGE"}`))
	require.NoError(t, err)
	require.Equal(t, "PURGE", m.Command)
	require.Nil(t, m.Subscriber)

	_, err = Decode([]byte(`{"msg":"REFRESH_STORIES"}`))
	require.Error(t, err)
	_, err = Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestNewRefreshWireShape(t *testing.T) {
	b, err := json.Marshal(NewRefresh(&models.Subscriber{ID: "u1"}))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Equal(t, "REFRESH_STORIES", raw["command"])
	require.Contains(t, raw, "subscriberSnapshot")
}

func TestResolvers(t *testing.T) {
	ctx := context.Background()
	snapshot := &models.Subscriber{ID: "u1", Filters: []models.Filter{{Name: "stale"}}}
	msg := NewRefresh(snapshot)

	got, err := SnapshotResolver{}.Resolve(ctx, msg)
	require.NoError(t, err)
	require.Same(t, snapshot, got)

	gw := store.NewMemoryGateway()
	gw.PutSubscriber(&models.Subscriber{ID: "u1", Filters: []models.Filter{{Name: "current"}}})
	got, err = ReloadResolver{Loader: gw}.Resolve(ctx, msg)
	require.NoError(t, err)
	require.Equal(t, "current", got.Filters[0].Name)

	_, err = ReloadResolver{Loader: gw}.Resolve(ctx, NewRefresh(&models.Subscriber{ID: "gone"}))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = SnapshotResolver{}.Resolve(ctx, Message{Command: CommandRefreshStories})
	require.True(t, errors.Is(err, ErrNoSnapshot))
}

func TestResolverByName(t *testing.T) {
	r, err := ResolverByName("reload", store.NewMemoryGateway())
	require.NoError(t, err)
	require.IsType(t, ReloadResolver{}, r)

	r, err = ResolverByName("snapshot", nil)
	require.NoError(t, err)
	require.IsType(t, SnapshotResolver{}, r)

	_, err = ResolverByName("poll", nil)
	require.Error(t, err)
}

const defaultUserSnapshot = `{"command":"REFRESH_STORIES","subscriberSnapshot":{"_id":"6710b7c2f1a4e3d2c1b0a998","type":"USER_TYPE",` +
	`"displayName":"Ada","email":"ada@example.com","newsFilters":[{"name":"Technology Companies",` +
	`"keyWords":["Apple","Microsoft","IBM","Amazon","Google","Intel"],"enableAlert":false,"alertFrequency":0,` +
	`"enableAutoDelete":false,"deleteTime":0,"timeOfLastScan":0,"newsStories":[]}]}}`

func TestDecode_DefaultUserSnapshot(t *testing.T) {
	m, err := Decode([]byte(defaultUserSnapshot))
	require.NoError(t, err)
	require.Equal(t, "6710b7c2f1a4e3d2c1b0a998", m.Subscriber.ID)
	f := m.Subscriber.Filters[0]
	require.Equal(t, "Technology Companies", f.Name)
	require.Len(t, f.Keywords, 6)
	require.Equal(t, float64(0), f.Extra["deleteTime"])
	require.Equal(t, float64(0), f.Extra["timeOfLastScan"])
	require.Equal(t, false, f.Extra["enableAutoDelete"])
}
