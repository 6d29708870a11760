// Package boundary resolves district names returned by the external boundary
// service to the canonical names used by RTO records.
package boundary

import (
	"sort"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
)

// MatchKind tells which lookup step resolved a name.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFold
	MatchAlias
	MatchAliasFold
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFold:
		return "fold"
	case MatchAlias:
		return "alias"
	case MatchAliasFold:
		return "alias_fold"
	}
	return "none"
}

// fold builds a fresh Caser per call; a Caser keeps state and is not safe
// for concurrent use.
func fold(s string) string { return cases.Fold().String(s) }

// Reconciler holds one state's canonical names and alias table with the
// case-folded lookups precomputed. Safe for concurrent use once built.
type Reconciler struct {
	names     []string
	canonical map[string]bool
	foldCanon map[string]string
	aliases   map[string]string
	foldAlias map[string]string
}

// NewReconciler copies canonical and aliases. When several entries fold to
// the same key the lexically smallest one wins.
func NewReconciler(canonical []string, aliases map[string]string) *Reconciler {
	r := &Reconciler{
		canonical: make(map[string]bool, len(canonical)),
		foldCanon: make(map[string]string, len(canonical)),
		aliases:   make(map[string]string, len(aliases)),
		foldAlias: make(map[string]string, len(aliases)),
	}
	for _, n := range canonical {
		if n == "" || r.canonical[n] {
			continue
		}
		r.canonical[n] = true
		r.names = append(r.names, n)
	}
	sort.Strings(r.names)
	for _, n := range r.names {
		if _, ok := r.foldCanon[fold(n)]; !ok {
			r.foldCanon[fold(n)] = n
		}
	}
	keys := make([]string, 0, len(aliases))
	for k, v := range aliases {
		r.aliases[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := r.foldAlias[fold(k)]; !ok {
			r.foldAlias[fold(k)] = aliases[k]
		}
	}
	return r
}

// Match resolves external and reports the step that did it. Unresolved names
// come back unchanged with MatchNone.
func (r *Reconciler) Match(external string) (string, MatchKind) {
	if r.canonical[external] {
		return external, MatchExact
	}
	f := fold(external)
	if n, ok := r.foldCanon[f]; ok {
		return n, MatchFold
	}
	if n, ok := r.aliases[external]; ok {
		return n, MatchAlias
	}
	if n, ok := r.foldAlias[f]; ok {
		return n, MatchAliasFold
	}
	return external, MatchNone
}

// Resolve is Match without the kind.
func (r *Reconciler) Resolve(external string) string {
	n, _ := r.Match(external)
	return n
}

// Same reports whether an external name denotes the given canonical district.
func (r *Reconciler) Same(external, canonical string) bool {
	return r.Resolve(external) == canonical
}

// Canonical returns the canonical names, sorted.
func (r *Reconciler) Canonical() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Suggest returns the canonical name closest to external and its similarity
// in [0,1]. Used for diagnostics only; it never feeds Resolve.
func (r *Reconciler) Suggest(external string) (string, float64) {
	best, score := "", 0.0
	f := fold(external)
	for _, n := range r.names {
		s := levenshtein.Similarity(f, fold(n), nil)
		if s > score {
			best, score = n, s
		}
	}
	return best, score
}

// Resolve maps an external service name to a canonical district: exact
// member, case-insensitive member, alias, case-insensitive alias, else the
// name unchanged.
func Resolve(external string, canonical []string, aliases map[string]string) string {
	return NewReconciler(canonical, aliases).Resolve(external)
}
