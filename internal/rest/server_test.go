package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/api"
	"github.com/sarpt/mpv-repeat-player/pkg/state"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type restFixture struct {
	api        *fakeApi
	handler    http.Handler
	repository state.Repository
}

func newRestFixture(t *testing.T) restFixture {
	t.Helper()

	repository := state.NewRepository()
	t.Cleanup(repository.Close)

	fake := newFakeApi()
	uut := NewServer(Config{
		ErrWriter:        io.Discard,
		OutWriter:        io.Discard,
		StatesRepository: repository,
	})
	require.NoError(t, uut.Init(fake))

	return restFixture{
		api:        fake,
		handler:    uut.Handler(),
		repository: repository,
	}
}

func (f restFixture) form(method, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	return res
}

func (f restFixture) get(path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	return res
}

func decodeFormResponse(t *testing.T, res *httptest.ResponseRecorder) common.HandlerErrors {
	t.Helper()

	var out common.HandlerErrors
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

func TestPostLoopRangeSetsRangeAtomically(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, loopPath, url.Values{
		rangeStartArg: {"12.5"},
		rangeEndArg:   {"4"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	require.Len(t, fixture.api.Calls(), 1)
	assert.Equal(t, apiCall{name: "SetLoopRange", args: []interface{}{12.5, 4.0}}, fixture.api.Calls()[0])
}

func TestPostLoopRangeRequiresBothEndpoints(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, loopPath, url.Values{
		rangeStartArg: {"1"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Contains(t, decodeFormResponse(t, res).ArgumentErrors, rangeStartArg)
	assert.Empty(t, fixture.api.Calls())
}

func TestPostLoopRangeRejectsInfinity(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, loopPath, url.Values{
		rangeStartArg: {"1"},
		rangeEndArg:   {"Inf"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Contains(t, decodeFormResponse(t, res).ArgumentErrors, rangeEndArg)
	assert.Empty(t, fixture.api.Calls())
}

func TestPostPlaybackSeekRejectsNaN(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, playbackPath, url.Values{
		seekArg: {"NaN"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Empty(t, fixture.api.Calls())
}

func TestPostLoopEmptyMarkerClearsIt(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, loopPath, url.Values{
		aArg: {""},
	})

	// then
	assert.Equal(t, 200, res.Code)
	require.Len(t, fixture.api.Calls(), 1)
	assert.Equal(t, "SetLoopA", fixture.api.Calls()[0].name)
	assert.Nil(t, fixture.api.Calls()[0].args[0])
}

func TestPostLoopTimingKeepsOtherKnobs(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	initial := fixture.repository.Loop().Timing()

	// when
	res := fixture.form(http.MethodPost, loopPath, url.Values{
		fadeArg: {"300"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	require.Len(t, fixture.api.Calls(), 1)

	expected := initial
	expected.FadeMs = 300
	assert.Equal(t, apiCall{name: "SetTiming", args: []interface{}{expected}}, fixture.api.Calls()[0])
}

func TestPostPlaybackUnknownArgumentIsRejected(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, playbackPath, url.Values{
		"fullscreen": {"true"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Contains(t, decodeFormResponse(t, res).ArgumentErrors, "fullscreen")
	assert.Empty(t, fixture.api.Calls())
}

func TestPostPlaybackSeek(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, playbackPath, url.Values{
		seekArg: {"42.25"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, []apiCall{{name: "Seek", args: []interface{}{42.25}}}, fixture.api.Calls())
}

func TestPostPlaybackReportsPlayerStatus(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	fixture.api.errors["ChangePause"] = common.StatusError{Err: api.ErrPlayerNotReady, Status: 503}

	// when
	res := fixture.form(http.MethodPost, playbackPath, url.Values{
		pauseArg: {"true"},
	})

	// then
	assert.Equal(t, 503, res.Code)
	assert.Equal(t, api.ErrPlayerNotReady.Error(), decodeFormResponse(t, res).GeneralError)
}

func TestGetLoopNotModifiedForSameRevision(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	fixture.repository.Loop().SetRange(1, 2)
	first := fixture.get(loopPath, nil)
	require.Equal(t, 200, first.Code)

	// when
	res := fixture.get(loopPath, map[string]string{revisionHeader: first.Header().Get(revisionHeader)})

	// then
	assert.Equal(t, http.StatusNotModified, res.Code)
	assert.Empty(t, res.Body.Bytes())
}

func TestPutRegionTooShortIsBadRequest(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	fixture.api.errors["EditRegion"] = fmt.Errorf("%w: too short", common.ErrInvalidArgument)

	// when
	res := fixture.form(http.MethodPut, regionPath, url.Values{
		startArg: {"1"},
		endArg:   {"1.02"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Equal(t, []apiCall{{name: "EditRegion", args: []interface{}{1.0, 1.02}}}, fixture.api.Calls())
}

func TestPostGesturesKey(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, gesturesPath, url.Values{
		keyArg:         {"a"},
		inTextInputArg: {"true"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, []apiCall{{name: "KeyPress", args: []interface{}{"a", true}}}, fixture.api.Calls())
}

func TestPostGesturesPointerDown(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, gesturesPath, url.Values{
		pointerArg: {pointerDown},
		buttonArg:  {"touch"},
		timeArg:    {"3.5"},
		xArg:       {"120"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	require.Len(t, fixture.api.Calls(), 1)
	assert.Equal(t, "PointerDown", fixture.api.Calls()[0].name)
	assert.Equal(t, api.Pointer{Button: "touch", Time: 3.5, X: 120}, fixture.api.Calls()[0].args[0])
}

func TestPostGesturesPrimaryScrubs(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, gesturesPath, url.Values{
		primaryScrubsArg: {"true"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, []apiCall{{name: "SetPrimaryScrubs", args: []interface{}{true}}}, fixture.api.Calls())
}

func TestPostGesturesPrimaryScrubsRejectsNonBool(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, gesturesPath, url.Values{
		primaryScrubsArg: {"sometimes"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Contains(t, decodeFormResponse(t, res).ArgumentErrors, primaryScrubsArg)
	assert.Empty(t, fixture.api.Calls())
}

func TestPostGesturesPointerRequiresTime(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, gesturesPath, url.Values{
		pointerArg: {pointerMove},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Empty(t, fixture.api.Calls())
}

func TestPostBookmarksValidatesType(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, bookmarksPath, url.Values{
		typeArg: {"chapter"},
	})

	// then
	assert.Equal(t, 400, res.Code)
	assert.Contains(t, decodeFormResponse(t, res).ArgumentErrors, typeArg)
	assert.Empty(t, fixture.api.Calls())
}

func TestPostBookmarksPhrase(t *testing.T) {
	// given
	fixture := newRestFixture(t)

	// when
	res := fixture.form(http.MethodPost, bookmarksPath, url.Values{
		typeArg:  {phraseBookmark},
		labelArg: {"greeting"},
		tagArg:   {"lesson 1"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, []apiCall{{name: "AddPhraseBookmark", args: []interface{}{"greeting", "lesson 1"}}}, fixture.api.Calls())
}

func TestPatchBookmarksOnlyPassesProvidedFields(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	id := "5b0a3c2e-7f62-4b8e-9d0c-2a7d5b1e6f10"

	// when
	res := fixture.form(http.MethodPatch, bookmarksPath, url.Values{
		idArg:  {id},
		tagArg: {"review"},
	})

	// then
	assert.Equal(t, 200, res.Code)
	require.Len(t, fixture.api.Calls(), 1)
	patch, ok := fixture.api.Calls()[0].args[1].(bookmarks.Patch)
	require.True(t, ok)
	assert.Nil(t, patch.Label)
	require.NotNil(t, patch.Tag)
	assert.Equal(t, "review", *patch.Tag)
}

func TestDeleteBookmarksNotFound(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	fixture.api.errors["RemoveBookmark"] = notFound("bookmark")
	id := "5b0a3c2e-7f62-4b8e-9d0c-2a7d5b1e6f10"

	// when
	req := httptest.NewRequest(http.MethodDelete, bookmarksPath+"?id="+id, nil)
	res := httptest.NewRecorder()
	fixture.handler.ServeHTTP(res, req)

	// then
	assert.Equal(t, 404, res.Code)
	assert.Equal(t, []apiCall{{name: "RemoveBookmark", args: []interface{}{id}}}, fixture.api.Calls())
}

func TestGetBookmarksFiltersByQuery(t *testing.T) {
	// given
	fixture := newRestFixture(t)
	fixture.repository.Bookmarks().AddPoint(1, "hello there", "")
	fixture.repository.Bookmarks().AddPoint(2, "goodbye", "farewells")

	// when
	res := fixture.get(bookmarksPath+"?q=bye", nil)

	// then
	require.Equal(t, 200, res.Code)
	var out getBookmarksResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	require.Len(t, out.Bookmarks, 1)
	assert.Equal(t, "goodbye", out.Bookmarks[0].Label)
	assert.Equal(t, []string{"farewells"}, out.Tags)
}
