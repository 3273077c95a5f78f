package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/glassmap/internal/config"
	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/surface"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.MaxSize = 256
	cfg.Defaults.Size = 64
	cfg.Defaults.Bezel = 8

	s, err := New(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSurfaces(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/surfaces")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []surfaceInfo
	require.NoError(t, json.Unmarshal(body, &out))

	var names []string
	for _, s := range out {
		names = append(names, s.Name)
	}
	assert.Equal(t, surface.Names(), names)
}

func TestPresets(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/presets")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []presetInfo
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out)
}

func TestDisplacementMapPNG(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/maps/displacement.png?size=48&bezel=6&thickness=4&surface=convex")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	expected, err := glassmap.GenerateDisplacementMap(48, 6, 4, surface.TypeConvex)
	require.NoError(t, err)

	scale, err := strconv.ParseFloat(resp.Header.Get(HeaderMaxDisplacement), 64)
	require.NoError(t, err)
	assert.InDelta(t, expected.MaxDisplacement, scale, 1e-9)
}

func TestSpecularMapWebP(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/maps/specular.webp?size=32")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get(HeaderMaxDisplacement))
	assert.True(t, bytes.HasPrefix(body, []byte("RIFF")))
}

func TestMapsAreCached(t *testing.T) {
	s, ts := newTestServer(t)

	first, body1 := get(t, ts.URL+"/maps/displacement.png?size=40")
	second, body2 := get(t, ts.URL+"/maps/displacement.png?size=40")
	require.Equal(t, http.StatusOK, first.StatusCode)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, body1, body2)

	stats := s.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, 1, stats.Len)
}

func TestLightAngleInDegrees(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/maps/specular.png?size=32&bezel=6&surface=convex&light=-90")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expected, err := glassmap.GenerateSpecularMap(32, 6, surface.TypeConvex, -math.Pi/2)
	require.NoError(t, err)
	want, err := encoder.EncodeBytes(expected.Pix, expected.Width, expected.Height, encoder.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, want, body)
}

func TestCacheKeyIgnoresUnusedParameters(t *testing.T) {
	s, ts := newTestServer(t)

	for _, path := range []string{
		"/maps/displacement.png?size=40&light=0",
		"/maps/displacement.png?size=40&light=45",
		"/maps/specular.png?size=40&thickness=2",
		"/maps/specular.png?size=40&thickness=20",
	} {
		resp, _ := get(t, ts.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	stats := s.CacheStats()
	assert.Equal(t, 2, stats.Len)
	assert.Equal(t, uint64(2), stats.Hits)
}

func TestBadRequests(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "size above server limit", path: "/maps/displacement.png?size=512", status: http.StatusBadRequest},
		{name: "zero size", path: "/maps/displacement.png?size=0", status: http.StatusBadRequest},
		{name: "non numeric size", path: "/maps/displacement.png?size=big", status: http.StatusBadRequest},
		{name: "negative bezel", path: "/maps/specular.png?bezel=-3", status: http.StatusBadRequest},
		{name: "unknown surface", path: "/maps/displacement.png?surface=wavy", status: http.StatusBadRequest},
		{name: "infinite light", path: "/maps/specular.png?light=Inf", status: http.StatusBadRequest},
		{name: "unknown format", path: "/maps/displacement.gif", status: http.StatusBadRequest},
		{name: "unknown preset", path: "/filter.svg?preset=window", status: http.StatusBadRequest},
		{name: "negative blur", path: "/filter.svg?blur=-1", status: http.StatusBadRequest},
		{name: "unknown map", path: "/maps/normal.png", status: http.StatusNotFound},
		{name: "missing extension", path: "/maps/displacement", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var e errorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestFilterSVG(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/filter.svg?preset=orb&blur=3&id=lens")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))

	svg := string(body)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `<filter id="lens"`)
	assert.Contains(t, svg, `stdDeviation="3"`)
	assert.Contains(t, svg, `width="120" height="120" result="displacementMap"`)
	assert.Contains(t, svg, "data:image/png;base64,")
	assert.NotEmpty(t, resp.Header.Get(HeaderMaxDisplacement))
}
