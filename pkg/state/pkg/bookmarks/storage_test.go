package bookmarks

import (
	"testing"
	"time"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	broadcaster := common.NewChangesBroadcaster[Change]()
	broadcaster.Broadcast()
	t.Cleanup(broadcaster.Close)

	uut := NewStorage(broadcaster)
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	uut.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return uut
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00", FormatTime(-5))
	assert.Equal(t, "0:09", FormatTime(9.99))
	assert.Equal(t, "1:05", FormatTime(65.4))
	assert.Equal(t, "61:01", FormatTime(3661))
}

func TestAddPoint_DefaultLabel(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// when
	bookmark := uut.AddPoint(75.3, "", " verbs ")

	// then
	assert.Equal(t, PointType, bookmark.Type)
	assert.Equal(t, "Point @ 1:15", bookmark.Label)
	assert.Equal(t, "verbs", bookmark.Tag)
	assert.NotEmpty(t, bookmark.ID)
}

func TestAddRegion_OrdersAndLabels(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// when
	bookmark, err := uut.AddRegion(12, 3, "", "")

	// then
	require.NoError(t, err)
	assert.Equal(t, 3.0, *bookmark.Start)
	assert.Equal(t, 12.0, *bookmark.End)
	assert.Equal(t, "Phrase 0:03 → 0:12", bookmark.Label)
}

func TestAddRegion_RejectsEmptyPhrase(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// when
	_, err := uut.AddRegion(4, 4, "", "")

	// then
	assert.ErrorIs(t, err, ErrEmptyPhrase)
}

func TestList_FiltersAndSortsNewestFirst(t *testing.T) {
	// given
	uut := newTestStorage(t)
	greeting := uut.AddPoint(1, "Greeting", "Basics")
	uut.AddPoint(2, "Numbers", "counting")
	farewell := uut.AddPoint(3, "Farewell", "basics")

	// when
	byTag := uut.List(Filter{Tag: "BASICS"})
	byQuery := uut.List(Filter{Query: "count"})
	all := uut.All()

	// then
	require.Len(t, byTag, 2)
	assert.Equal(t, farewell.ID, byTag[0].ID)
	assert.Equal(t, greeting.ID, byTag[1].ID)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "Numbers", byQuery[0].Label)
	assert.Len(t, all, 3)
	assert.Equal(t, farewell.ID, all[0].ID)
}

func TestTags_DistinctSorted(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.AddPoint(1, "", "verbs")
	uut.AddPoint(2, "", "")
	uut.AddPoint(3, "", "adjectives")
	uut.AddPoint(4, "", "verbs")

	// then
	assert.Equal(t, []string{"adjectives", "verbs"}, uut.Tags())
}

func TestUpdate_ClearedLabelRestoresDefault(t *testing.T) {
	// given
	uut := newTestStorage(t)
	bookmark, _ := uut.AddRegion(60, 62.5, "custom", "")
	empty := ""
	tag := "drills"

	// when
	updated, err := uut.Update(bookmark.ID, Patch{Label: &empty, Tag: &tag})

	// then
	require.NoError(t, err)
	assert.Equal(t, "Phrase 1:00 → 1:02", updated.Label)
	assert.Equal(t, "drills", updated.Tag)
}

func TestRemove_UnknownID(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// when
	_, err := uut.Remove("missing")

	// then
	assert.ErrorIs(t, err, ErrBookmarkNotFound)
}

func TestLoad_ReplacesItems(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.AddPoint(1, "", "")
	at := 5.0

	// when
	uut.Load([]Bookmark{
		{ID: "a", Type: PointType, Time: &at, Label: "Loaded"},
		{Type: PointType, Time: &at},
	})

	// then
	all := uut.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Loaded", all[0].Label)
}
