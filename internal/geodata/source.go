package geodata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/logger"

	"github.com/rotisserie/eris"
)

// BoundarySource yields the boundary file of a state.
type BoundarySource interface {
	Boundaries(ctx context.Context, state string) (BoundaryFile, error)
}

// CoordinateSource yields the coordinate file of a state.
type CoordinateSource interface {
	Coordinates(ctx context.Context, state string) (CoordinateFile, error)
}

// DirSource reads <Root>/boundaries/<slug>.json and <Root>/coordinates/<slug>.json.
type DirSource struct {
	Root string
}

func (s DirSource) read(kind, state string, v any) error {
	fp := filepath.Join(s.Root, kind, Slug(state)+".json")
	b, err := os.ReadFile(fp)
	if os.IsNotExist(err) {
		return eris.Wrapf(ErrNotFound, "%s", fp)
	}
	if err != nil {
		return eris.Wrapf(err, "read %s", fp)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return eris.Wrapf(err, "decode %s", fp)
	}
	return nil
}

func (s DirSource) Boundaries(ctx context.Context, state string) (BoundaryFile, error) {
	var f BoundaryFile
	if err := s.read("boundaries", state, &f); err != nil {
		return f, err
	}
	for _, ft := range f.Features {
		withBBox(ft)
	}
	return f, nil
}

func (s DirSource) Coordinates(ctx context.Context, state string) (CoordinateFile, error) {
	var f CoordinateFile
	err := s.read("coordinates", state, &f)
	return f, err
}

// HTTPSource fetches the same files below BaseURL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s HTTPSource) get(ctx context.Context, kind, state string, v any) error {
	u := strings.TrimRight(s.BaseURL, "/") + "/" + path.Join(kind, Slug(state)+".json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrapf(err, "request %s", u)
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "get %s", u)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return eris.Wrapf(ErrNotFound, "%s", u)
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("get %s: status %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return eris.Wrapf(err, "decode %s", u)
	}
	logger.L().Debug("geodata_http_loaded", "url", u)
	return nil
}

func (s HTTPSource) Boundaries(ctx context.Context, state string) (BoundaryFile, error) {
	var f BoundaryFile
	if err := s.get(ctx, "boundaries", state, &f); err != nil {
		return f, err
	}
	for _, ft := range f.Features {
		withBBox(ft)
	}
	return f, nil
}

func (s HTTPSource) Coordinates(ctx context.Context, state string) (CoordinateFile, error) {
	var f CoordinateFile
	err := s.get(ctx, "coordinates", state, &f)
	return f, err
}

// WriteBoundaries writes f to <root>/boundaries/<slug>.json via a temp file.
func WriteBoundaries(root, state string, f BoundaryFile) error {
	if f.Type == "" {
		f.Type = "FeatureCollection"
	}
	if f.FailedDistricts == nil {
		f.FailedDistricts = []string{}
	}
	return writeFile(root, "boundaries", state, f)
}

// WriteCoordinates writes f to <root>/coordinates/<slug>.json.
func WriteCoordinates(root, state string, f CoordinateFile) error {
	if f.Coordinates == nil {
		f.Coordinates = map[string]Coordinate{}
	}
	return writeFile(root, "coordinates", state, f)
}

func writeFile(root, kind, state string, v any) error {
	dir := filepath.Join(root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "mkdir %s", dir)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "encode %s", kind)
	}
	fp := filepath.Join(dir, Slug(state)+".json")
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", tmp)
	}
	return eris.Wrapf(os.Rename(tmp, fp), "rename %s", tmp)
}
