package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alde/glassmap/internal/cache"
	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/filter"
	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/preset"
	"github.com/alde/glassmap/pkg/surface"
)

// HeaderMaxDisplacement carries the feDisplacementMap scale matching a
// served displacement map.
const HeaderMaxDisplacement = "X-Max-Displacement"

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

type surfaceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type presetInfo struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	BezelWidth     float64 `json:"bezel_width"`
	GlassThickness float64 `json:"glass_thickness"`
	Surface        string  `json:"surface"`
	Blur           float64 `json:"blur"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) surfaces(w http.ResponseWriter, r *http.Request) {
	profiles := surface.ListProfiles()
	out := make([]surfaceInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, surfaceInfo{Name: string(p.Type), Description: p.Description})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) presets(w http.ResponseWriter, r *http.Request) {
	all := preset.All()
	out := make([]presetInfo, 0, len(all))
	for _, p := range all {
		out = append(out, presetInfo{
			Name:           p.Name,
			Description:    p.Description,
			Width:          p.Width,
			Height:         p.Height,
			BezelWidth:     p.BezelWidth,
			GlassThickness: p.GlassThickness,
			Surface:        string(p.Surface),
			Blur:           p.Blur,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// mapImage serves /maps/{displacement|specular}.{png|webp|bmp|tiff}
func (s *Server) mapImage(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	name, ext, ok := strings.Cut(file, ".")
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown map %q", file))
		return
	}

	kind := cache.Kind(name)
	if kind != cache.KindDisplacement && kind != cache.KindSpecular {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown map %q", name))
		return
	}

	format, err := encoder.ParseFormat(ext)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	geom, err := s.geometryFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	key := cache.NewKey(geom, kind, format)
	entry, err := s.maps.GetOrBuild(key, func() (cache.Entry, error) {
		return buildEntry(key)
	})
	if err != nil {
		s.log.Error("failed to build map", slog.String("key", key.String()), slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", entry.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(entry.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if kind == cache.KindDisplacement {
		w.Header().Set(HeaderMaxDisplacement, strconv.FormatFloat(entry.MaxDisplacement, 'f', -1, 64))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(entry.Data)
}

func (s *Server) filterSVG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	geom, err := s.geometryFromQuery(q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	blur, err := floatParam(q, "blur", s.cfg.Defaults.Blur)
	if err == nil && blur < 0 {
		err = fmt.Errorf("%w: blur must not be negative", errBadRequest)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	effect := filter.FromGeometry(geom, blur, q.Get("id"))
	if effect.Err != nil {
		s.writeError(w, http.StatusInternalServerError, effect.Err)
		return
	}

	var buf bytes.Buffer
	if err := effect.Render(&buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set(HeaderMaxDisplacement, strconv.FormatFloat(effect.MaxDisplacement, 'f', -1, 64))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func buildEntry(key cache.Key) (cache.Entry, error) {
	g := key.Geometry

	var (
		pix             []uint8
		width, height   int
		maxDisplacement float64
	)
	switch key.Kind {
	case cache.KindSpecular:
		m, err := glassmap.GenerateSpecularMap(g.Size, g.BezelWidth, g.Surface, g.LightAngle)
		if err != nil {
			return cache.Entry{}, err
		}
		pix, width, height = m.Pix, m.Width, m.Height
	default:
		m, err := glassmap.GenerateDisplacementMap(g.Size, g.BezelWidth, g.GlassThickness, g.Surface)
		if err != nil {
			return cache.Entry{}, err
		}
		pix, width, height, maxDisplacement = m.Pix, m.Width, m.Height, m.MaxDisplacement
	}

	data, err := encoder.EncodeBytes(pix, width, height, key.Format)
	if err != nil {
		return cache.Entry{}, err
	}

	return cache.Entry{
		Data:            data,
		MediaType:       key.Format.MediaType(),
		MaxDisplacement: maxDisplacement,
	}, nil
}

// geometryFromQuery reads size, bezel, thickness, surface and light
// (degrees, like the --light flag), falling back to the configured
// defaults.
func (s *Server) geometryFromQuery(q url.Values) (glassmap.Geometry, error) {
	g, err := s.cfg.Geometry()
	if err != nil {
		return g, err
	}

	if v := q.Get("preset"); v != "" {
		p, err := preset.Get(v)
		if err != nil {
			return g, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		g = p.Geometry()
	}

	if g.Size, err = intParam(q, "size", g.Size); err != nil {
		return g, err
	}
	if g.BezelWidth, err = floatParam(q, "bezel", g.BezelWidth); err != nil {
		return g, err
	}
	if g.GlassThickness, err = floatParam(q, "thickness", g.GlassThickness); err != nil {
		return g, err
	}
	if g.LightAngle, err = degreesParam(q, "light", g.LightAngle); err != nil {
		return g, err
	}
	if v := q.Get("surface"); v != "" {
		if g.Surface, err = surface.Parse(v); err != nil {
			return g, err
		}
	}

	if g.Size > s.cfg.Server.MaxSize {
		return g, fmt.Errorf("%w: %d exceeds server limit %d", glassmap.ErrInvalidSize, g.Size, s.cfg.Server.MaxSize)
	}
	if err := g.Validate(); err != nil {
		return g, err
	}
	return g, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, v)
	}
	return n, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be a number, got %q", errBadRequest, name, v)
	}
	return f, nil
}

// degreesParam reads an angle given in degrees and returns it in radians
func degreesParam(q url.Values, name string, def float64) (float64, error) {
	if q.Get(name) == "" {
		return def, nil
	}
	d, err := floatParam(q, name, 0)
	if err != nil {
		return def, err
	}
	return d * math.Pi / 180, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
