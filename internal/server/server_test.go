package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/session"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

func newTestServer(t *testing.T, opts ...session.Option) *httptest.Server {
	t.Helper()
	srv := New(session.NewManager(opts...),
		WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		WithMetrics())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func decodeState(t *testing.T, resp *http.Response) stateResponse {
	t.Helper()
	defer resp.Body.Close()

	var raw struct {
		Layers    []map[string]string `json:"layers"`
		Offsets   []int               `json:"offsets"`
		Len       int                 `json:"len"`
		MaxLayers int                 `json:"max_layers"`
		Full      bool                `json:"full"`
		CanUndo   bool                `json:"can_undo"`
		CanRedo   bool                `json:"can_redo"`
		Changed   *bool               `json:"changed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.Len(t, raw.Layers, raw.Len)
	require.Len(t, raw.Offsets, raw.Len)
	return stateResponse{
		Len:       raw.Len,
		MaxLayers: raw.MaxLayers,
		Full:      raw.Full,
		CanUndo:   raw.CanUndo,
		CanRedo:   raw.CanRedo,
		Changed:   raw.Changed,
	}
}

func post(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Post(url, "", nil)
	require.NoError(t, err)
	return resp
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidAction, http.StatusBadRequest},
		{errors.ErrCodeInvalidFormat, http.StatusBadRequest},
		{errors.ErrCodeSessionNotFound, http.StatusNotFound},
		{errors.ErrCodeTooManySessions, http.StatusServiceUnavailable},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.code))
		})
	}
}

func TestIndexSetsCookie(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "session cookie set")

	body, _ := io.ReadAll(resp.Body)
	for _, a := range stack.Actions() {
		assert.Contains(t, string(body), "/actions/"+a.String())
	}
}

func TestActionsMutateState(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	st := decodeState(t, post(t, c, ts.URL+"/actions/top"))
	assert.Equal(t, 1, st.Len)
	require.NotNil(t, st.Changed)
	assert.True(t, *st.Changed)

	post(t, c, ts.URL+"/actions/add-label").Body.Close()
	post(t, c, ts.URL+"/actions/bottom").Body.Close()

	resp, err := c.Get(ts.URL + "/state")
	require.NoError(t, err)
	st = decodeState(t, resp)
	assert.Equal(t, 3, st.Len)
	assert.True(t, st.CanUndo)
	assert.False(t, st.CanRedo)
}

func TestStateOffsets(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	for _, a := range []string{"top", "label", "bottom"} {
		post(t, c, ts.URL+"/actions/"+a).Body.Close()
	}

	resp, err := c.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Offsets []int `json:"offsets"`
		Layers  []struct {
			Kind string `json:"kind"`
		} `json:"layers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []int{-108, -118, 0}, body.Offsets)
	require.Len(t, body.Layers, 3)
	assert.Equal(t, "top", body.Layers[0].Kind)
}

func TestNoopRemovalReportsUnchanged(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	st := decodeState(t, post(t, c, ts.URL+"/actions/remove-tail"))
	assert.Equal(t, 0, st.Len)
	require.NotNil(t, st.Changed)
	assert.False(t, *st.Changed)
}

func TestUnknownAction(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, newClient(t), ts.URL+"/actions/frosting")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, errors.ErrCodeInvalidAction, body.Code)
}

func TestUndoRedoReset(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	post(t, c, ts.URL+"/actions/top").Body.Close()
	post(t, c, ts.URL+"/actions/space").Body.Close()

	st := decodeState(t, post(t, c, ts.URL+"/undo"))
	assert.Equal(t, 1, st.Len)
	assert.True(t, st.CanRedo)

	st = decodeState(t, post(t, c, ts.URL+"/redo"))
	assert.Equal(t, 2, st.Len)

	st = decodeState(t, post(t, c, ts.URL+"/reset"))
	assert.Equal(t, 0, st.Len)
	assert.True(t, *st.Changed)

	st = decodeState(t, post(t, c, ts.URL+"/redo"))
	assert.False(t, *st.Changed)
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	alice, bob := newClient(t), newClient(t)

	post(t, alice, ts.URL+"/actions/top").Body.Close()
	post(t, alice, ts.URL+"/actions/top").Body.Close()
	post(t, bob, ts.URL+"/actions/label").Body.Close()

	resp, err := alice.Get(ts.URL + "/state")
	require.NoError(t, err)
	assert.Equal(t, 2, decodeState(t, resp).Len)

	resp, err = bob.Get(ts.URL + "/state")
	require.NoError(t, err)
	assert.Equal(t, 1, decodeState(t, resp).Len)
}

func TestMaxLayersFromStoreOptions(t *testing.T) {
	ts := newTestServer(t, session.WithStoreOptions(stack.WithMaxLayers(1)))
	c := newClient(t)

	post(t, c, ts.URL+"/actions/top").Body.Close()
	st := decodeState(t, post(t, c, ts.URL+"/actions/top"))
	assert.Equal(t, 1, st.Len)
	assert.True(t, st.Full)
	assert.False(t, *st.Changed)
}

func TestRenderSVG(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	post(t, c, ts.URL+"/actions/top").Body.Close()

	resp, err := c.Get(ts.URL + "/stack.svg?interactive=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "<svg"))
	assert.Contains(t, string(body), "<style>")
}

func TestRenderJSONAndDOT(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	post(t, c, ts.URL+"/actions/label").Body.Close()
	post(t, c, ts.URL+"/actions/top").Body.Close()

	resp, err := c.Get(ts.URL + "/stack.json")
	require.NoError(t, err)
	var layout struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&layout))
	resp.Body.Close()
	assert.Len(t, layout.Blocks, 2)

	resp, err = c.Get(ts.URL + "/stack.dot?type=nodelink")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "digraph")
	assert.Contains(t, string(body), "-118")
}

func TestRenderInvalidFormat(t *testing.T) {
	ts := newTestServer(t)

	tests := []string{"/stack.gif", "/stack.dot", "/stack.json?type=nodelink", "/stack.svg?type=pie"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	post(t, newClient(t), ts.URL+"/actions/top").Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "stackbuilder_http_requests_total")
	assert.Contains(t, string(body), "stackbuilder_sessions_created_total")
}

func TestTooManySessions(t *testing.T) {
	ts := newTestServer(t, session.WithMaxSessions(1))

	post(t, newClient(t), ts.URL+"/actions/top").Body.Close()

	resp := post(t, newClient(t), ts.URL+"/actions/top")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
