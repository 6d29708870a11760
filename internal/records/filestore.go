package records

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anoopt/rto-codes-sub000/internal/logger"

	"github.com/rotisserie/eris"
)

const configFile = "config.json"

// FileStore serves the JSON record tree:
//
//	<root>/<state-dir>/config.json
//	<root>/<state-dir>/<code>.json
//
// Everything is read once in OpenFileStore; the store is immutable afterwards,
// so a data change means opening a new store and swapping it in (see Dynamic).
type FileStore struct {
	root   string
	states []StateConfig
	rtos   map[string][]RTO // by state code, file order sorted by code
}

// OpenFileStore loads every state directory under root. A directory without
// config.json is skipped with a warning; a config or record that is not valid
// JSON is an error, since the tree is authored data.
func OpenFileStore(root string) (*FileStore, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, eris.Wrapf(err, "read record root %s", root)
	}
	fs := &FileStore{root: root, rtos: make(map[string][]RTO)}
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		dir := filepath.Join(root, ent.Name())
		cfg, ok, err := readStateConfig(dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.L().Warn("records_state_without_config", "dir", dir)
			continue
		}
		if cfg.Code == "" {
			cfg.Code = strings.ToUpper(ent.Name())
		}
		rtos, err := readRTOs(dir)
		if err != nil {
			return nil, err
		}
		for i := range rtos {
			if rtos[i].State == "" {
				rtos[i].State = cfg.Name
			}
			if rtos[i].StateCode == "" {
				rtos[i].StateCode = cfg.Code
			}
		}
		fs.states = append(fs.states, cfg)
		fs.rtos[strings.ToUpper(cfg.Code)] = rtos
		logger.L().Debug("records_state_loaded", "state", cfg.Name, "code", cfg.Code, "rtos", len(rtos), "districts", len(cfg.DistrictMapping))
	}
	sort.Slice(fs.states, func(i, j int) bool { return fs.states[i].Name < fs.states[j].Name })
	logger.L().Info("records_loaded", "root", root, "states", len(fs.states))
	return fs, nil
}

func readStateConfig(dir string) (StateConfig, bool, error) {
	var cfg StateConfig
	b, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, eris.Wrapf(err, "read %s", configFile)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, false, eris.Wrapf(err, "decode %s", filepath.Join(dir, configFile))
	}
	return cfg, true, nil
}

func readRTOs(dir string) ([]RTO, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read state dir %s", dir)
	}
	var out []RTO
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || name == configFile || !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", name)
		}
		var r RTO
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, eris.Wrapf(err, "decode %s", filepath.Join(dir, name))
		}
		if r.Code == "" {
			r.Code = strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *FileStore) find(state string) (StateConfig, bool) {
	for _, c := range s.states {
		if c.Matches(state) {
			return c, true
		}
	}
	return StateConfig{}, false
}

func (s *FileStore) States(ctx context.Context) ([]StateConfig, error) {
	out := make([]StateConfig, len(s.states))
	copy(out, s.states)
	return out, nil
}

func (s *FileStore) StateConfig(ctx context.Context, state string) (StateConfig, bool, error) {
	c, ok := s.find(state)
	return c, ok, nil
}

func (s *FileStore) ListRTOs(ctx context.Context, state string) ([]RTO, error) {
	if strings.TrimSpace(state) == "" {
		var all []RTO
		for _, c := range s.states {
			all = append(all, s.rtos[strings.ToUpper(c.Code)]...)
		}
		return all, nil
	}
	c, ok := s.find(state)
	if !ok {
		return nil, nil
	}
	src := s.rtos[strings.ToUpper(c.Code)]
	out := make([]RTO, len(src))
	copy(out, src)
	return out, nil
}

func (s *FileStore) DistrictMapping(ctx context.Context, state string) (map[string]string, error) {
	c, ok := s.find(state)
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(c.DistrictMapping))
	for k, v := range c.DistrictMapping {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) ValidSVGDistrictIDs(ctx context.Context, state string) ([]string, error) {
	c, ok := s.find(state)
	if !ok {
		return nil, nil
	}
	out := make([]string, len(c.SVGDistrictIDs))
	copy(out, c.SVGDistrictIDs)
	return out, nil
}
