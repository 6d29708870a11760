// boundary-fetch builds the static geodata files of one state from the
// Nominatim service:
//
//	boundary-fetch <state>
//
// Requests are paced by NOMINATIM_RATE_MS; SIGINT stops between requests and
// the districts not reached are written as failed.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/boundary"
	"github.com/anoopt/rto-codes-sub000/internal/district"
	"github.com/anoopt/rto-codes-sub000/internal/geodata"
	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/records"
	"github.com/anoopt/rto-codes-sub000/internal/utils"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	state := utils.EnvString("FETCH_STATE", "")
	if len(os.Args) > 1 {
		state = os.Args[1]
	}
	if strings.TrimSpace(state) == "" {
		l.Error("boundary_fetch_usage", "msg", "boundary-fetch <state>")
		os.Exit(2)
	}
	dataDir := utils.EnvString("DATA_DIR", "data")
	recDir := utils.EnvString("RECORDS_DIR", filepath.Join(dataDir, "states"))

	ctx := context.Background()
	fs, err := records.OpenFileStore(recDir)
	if err != nil {
		l.Error("records_open_error", "dir", recDir, "err", err)
		os.Exit(1)
	}
	cfg, ok, _ := fs.StateConfig(ctx, state)
	if !ok {
		l.Error("boundary_fetch_unknown_state", "state", state)
		os.Exit(1)
	}
	rtos, _ := fs.ListRTOs(ctx, cfg.Code)
	names := canonicalNames(cfg, rtos)
	rec := boundary.NewReconciler(names, boundary.Merge(boundary.AliasesFor(cfg.Code), cfg.BoundaryAliases))

	nom := &geodata.Nominatim{
		BaseURL:   utils.EnvString("NOMINATIM_URL", geodata.DefaultNominatimURL),
		UserAgent: utils.EnvString("NOMINATIM_USER_AGENT", "rto-codes-boundary-fetch/1.0"),
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
	every := utils.EnvDuration("NOMINATIM_RATE_MS", time.Millisecond, 1100*time.Millisecond)
	seq := geodata.NewSequence(rate.NewLimiter(rate.Every(every), 1))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		l.Warn("boundary_fetch_interrupt")
		seq.Cancel()
	}()

	l.Info("boundary_fetch_start", "state", cfg.Name, "districts", len(names), "every", every.String())
	var features []*geojson.Feature
	res := seq.Run(ctx, names, func(ctx context.Context, name string) error {
		f, err := nom.District(ctx, name, cfg.Name)
		if err != nil {
			return err
		}
		ext := geodata.DistrictName(f)
		canonical, kind := rec.Match(ext)
		if kind == boundary.MatchNone {
			if s, score := rec.Suggest(ext); s != "" {
				l.Warn("boundary_fetch_unresolved", "query", name, "name", ext, "suggest", s, "score", score)
			}
		} else if canonical != ext {
			f.Properties[geodata.PropCanonicalName] = canonical
		}
		if canonical != name {
			l.Warn("boundary_fetch_name_mismatch", "query", name, "name", ext, "resolved", canonical)
		}
		features = append(features, f)
		return nil
	})
	failed := append([]string{}, res.Failed...)
	failed = append(failed, notReached(names, res)...)
	sort.Strings(failed)

	out := geodata.BoundaryFile{Features: features, FailedDistricts: failed}
	if err := geodata.WriteBoundaries(dataDir, cfg.Name, out); err != nil {
		l.Error("boundary_write_error", "err", err)
		os.Exit(1)
	}
	l.Info("boundary_fetch_done", "state", cfg.Name, "ok", len(res.Done), "failed", len(failed), "cancelled", res.Cancelled)

	if utils.EnvBool("FETCH_COORDINATES", false) && !seq.Cancelled() {
		fetchCoordinates(ctx, dataDir, cfg, rtos, nom, seq)
	}
}

// canonicalNames is every district the state's mapping or records name.
func canonicalNames(cfg records.StateConfig, rtos []records.RTO) []string {
	seen := map[string]bool{}
	var out []string
	add := func(n string) {
		n = strings.TrimSpace(n)
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for name := range cfg.DistrictMapping {
		add(name)
	}
	for _, n := range district.BuildIndex(rtos, cfg.Code).Districts() {
		add(n)
	}
	sort.Strings(out)
	return out
}

func notReached(items []string, res geodata.Result) []string {
	seen := make(map[string]bool, len(res.Done)+len(res.Failed))
	for _, s := range res.Done {
		seen[s] = true
	}
	for _, s := range res.Failed {
		seen[s] = true
	}
	var out []string
	for _, s := range items {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// fetchCoordinates geocodes each office address and merges the points into
// the existing coordinates file.
func fetchCoordinates(ctx context.Context, dataDir string, cfg records.StateConfig, rtos []records.RTO, nom *geodata.Nominatim, seq *geodata.Sequence) {
	l := logger.L()
	existing, err := geodata.DirSource{Root: dataDir}.Coordinates(ctx, cfg.Name)
	if err != nil && !eris.Is(err, geodata.ErrNotFound) {
		l.Error("coordinates_read_error", "err", err)
		return
	}
	if existing.Coordinates == nil {
		existing.Coordinates = map[string]geodata.Coordinate{}
	}
	byCode := make(map[string]records.RTO, len(rtos))
	codes := make([]string, 0, len(rtos))
	for _, r := range rtos {
		code := strings.ToUpper(r.Code)
		if _, done := existing.Coordinates[code]; done {
			continue
		}
		byCode[code] = r
		codes = append(codes, code)
	}
	res := seq.Run(ctx, codes, func(ctx context.Context, code string) error {
		r := byCode[code]
		q := r.Address
		if q == "" {
			q = strings.Join(nonEmpty(r.Region, r.District, cfg.Name), ", ")
		}
		c, err := nom.Locate(ctx, q)
		if err != nil {
			return err
		}
		existing.Coordinates[code] = c
		return nil
	})
	if err := geodata.WriteCoordinates(dataDir, cfg.Name, existing); err != nil {
		l.Error("coordinates_write_error", "err", err)
		return
	}
	l.Info("coordinates_fetch_done", "state", cfg.Name, "ok", len(res.Done), "failed", len(res.Failed), "cancelled", res.Cancelled)
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
