package teams

import (
	"strings"
)

// Key is the canonical identifier for an NFL franchise, independent of
// which abbreviation, city, or nickname form was used to reference it.
type Key string

// franchise holds the canonical identity of one NFL team
type franchise struct {
	Key     Key
	Name    string
	Abbrevs []string // a franchise may carry more than one abbreviation (e.g. WAS/WSH)
	Aliases []string // nicknames, city-only names, legacy names
}

// Resolver normalizes and matches team identifiers across the
// inconsistent formats the external feed and user submissions use.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	byAbbrev map[string]Key
	byName   map[string]Key
	byAlias  map[string]Key
	names    map[Key]string
}

var franchises = []franchise{
	{Key: "ARI", Name: "Arizona Cardinals", Abbrevs: []string{"ARI"}, Aliases: []string{"Cardinals", "Arizona"}},
	{Key: "ATL", Name: "Atlanta Falcons", Abbrevs: []string{"ATL"}, Aliases: []string{"Falcons", "Atlanta"}},
	{Key: "BAL", Name: "Baltimore Ravens", Abbrevs: []string{"BAL"}, Aliases: []string{"Ravens", "Baltimore"}},
	{Key: "BUF", Name: "Buffalo Bills", Abbrevs: []string{"BUF"}, Aliases: []string{"Bills", "Buffalo"}},
	{Key: "CAR", Name: "Carolina Panthers", Abbrevs: []string{"CAR"}, Aliases: []string{"Panthers", "Carolina"}},
	{Key: "CHI", Name: "Chicago Bears", Abbrevs: []string{"CHI"}, Aliases: []string{"Bears", "Chicago"}},
	{Key: "CIN", Name: "Cincinnati Bengals", Abbrevs: []string{"CIN"}, Aliases: []string{"Bengals", "Cincinnati"}},
	{Key: "CLE", Name: "Cleveland Browns", Abbrevs: []string{"CLE"}, Aliases: []string{"Browns", "Cleveland"}},
	{Key: "DAL", Name: "Dallas Cowboys", Abbrevs: []string{"DAL"}, Aliases: []string{"Cowboys", "Dallas"}},
	{Key: "DEN", Name: "Denver Broncos", Abbrevs: []string{"DEN"}, Aliases: []string{"Broncos", "Denver"}},
	{Key: "DET", Name: "Detroit Lions", Abbrevs: []string{"DET"}, Aliases: []string{"Lions", "Detroit"}},
	{Key: "GB", Name: "Green Bay Packers", Abbrevs: []string{"GB"}, Aliases: []string{"Packers", "Green Bay"}},
	{Key: "HOU", Name: "Houston Texans", Abbrevs: []string{"HOU"}, Aliases: []string{"Texans", "Houston"}},
	{Key: "IND", Name: "Indianapolis Colts", Abbrevs: []string{"IND"}, Aliases: []string{"Colts", "Indianapolis"}},
	{Key: "JAX", Name: "Jacksonville Jaguars", Abbrevs: []string{"JAX"}, Aliases: []string{"Jaguars", "Jacksonville"}},
	{Key: "KC", Name: "Kansas City Chiefs", Abbrevs: []string{"KC"}, Aliases: []string{"Chiefs", "Kansas City"}},
	{Key: "LAC", Name: "Los Angeles Chargers", Abbrevs: []string{"LAC"}, Aliases: []string{"Chargers", "San Diego Chargers"}},
	{Key: "LAR", Name: "Los Angeles Rams", Abbrevs: []string{"LAR"}, Aliases: []string{"Rams", "St. Louis Rams"}},
	{Key: "LV", Name: "Las Vegas Raiders", Abbrevs: []string{"LV"}, Aliases: []string{"Raiders", "Las Vegas", "Oakland Raiders"}},
	{Key: "MIA", Name: "Miami Dolphins", Abbrevs: []string{"MIA"}, Aliases: []string{"Dolphins", "Miami"}},
	{Key: "MIN", Name: "Minnesota Vikings", Abbrevs: []string{"MIN"}, Aliases: []string{"Vikings", "Minnesota"}},
	{Key: "NE", Name: "New England Patriots", Abbrevs: []string{"NE"}, Aliases: []string{"Patriots", "New England"}},
	{Key: "NO", Name: "New Orleans Saints", Abbrevs: []string{"NO"}, Aliases: []string{"Saints", "New Orleans"}},
	{Key: "NYG", Name: "New York Giants", Abbrevs: []string{"NYG"}, Aliases: []string{"Giants"}},
	{Key: "NYJ", Name: "New York Jets", Abbrevs: []string{"NYJ"}, Aliases: []string{"Jets"}},
	{Key: "PHI", Name: "Philadelphia Eagles", Abbrevs: []string{"PHI"}, Aliases: []string{"Eagles", "Philadelphia"}},
	{Key: "PIT", Name: "Pittsburgh Steelers", Abbrevs: []string{"PIT"}, Aliases: []string{"Steelers", "Pittsburgh"}},
	{Key: "SEA", Name: "Seattle Seahawks", Abbrevs: []string{"SEA"}, Aliases: []string{"Seahawks", "Seattle"}},
	{Key: "SF", Name: "San Francisco 49ers", Abbrevs: []string{"SF"}, Aliases: []string{"49ers", "San Francisco", "Niners"}},
	{Key: "TB", Name: "Tampa Bay Buccaneers", Abbrevs: []string{"TB"}, Aliases: []string{"Buccaneers", "Tampa Bay", "Bucs"}},
	{Key: "TEN", Name: "Tennessee Titans", Abbrevs: []string{"TEN"}, Aliases: []string{"Titans", "Tennessee"}},
	// Washington has appeared under both WAS and WSH in feed data, and under
	// three franchise names since 2019. All of them map to the same key.
	{Key: "WAS", Name: "Washington Commanders", Abbrevs: []string{"WAS", "WSH"},
		Aliases: []string{"Commanders", "Washington", "Washington Football Team", "Football Team", "Washington Redskins", "Redskins"}},
}

// NewResolver builds the canonical team lookup tables.
func NewResolver() *Resolver {
	r := &Resolver{
		byAbbrev: make(map[string]Key),
		byName:   make(map[string]Key),
		byAlias:  make(map[string]Key),
		names:    make(map[Key]string),
	}
	for _, f := range franchises {
		r.names[f.Key] = f.Name
		r.byName[strings.ToLower(f.Name)] = f.Key
		for _, a := range f.Abbrevs {
			r.byAbbrev[strings.ToUpper(a)] = f.Key
		}
		for _, alias := range f.Aliases {
			r.byAlias[strings.ToLower(alias)] = f.Key
		}
	}
	return r
}

// CanonicalName returns the full franchise name for a canonical key.
func (r *Resolver) CanonicalName(k Key) string {
	return r.names[k]
}

// Resolve maps a team identifier (abbreviation, full name, city, or
// nickname) to its canonical key. The second return is false when no
// rule matches; callers must treat that as "cannot score" and skip,
// never as a fatal condition.
//
// Matching policy, first match wins:
//  1. exact case-insensitive abbreviation
//  2. exact case-insensitive full name
//  3. alias/variation table
//  4. bidirectional substring containment against canonical names
func (r *Resolver) Resolve(identifier string) (Key, bool) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return "", false
	}

	if k, ok := r.byAbbrev[strings.ToUpper(trimmed)]; ok {
		return k, true
	}

	lower := strings.ToLower(trimmed)
	if k, ok := r.byName[lower]; ok {
		return k, true
	}
	if k, ok := r.byAlias[lower]; ok {
		return k, true
	}

	norm := Normalize(trimmed)
	if norm == "" {
		return "", false
	}
	// Walk the ordered table, not a map, so an ambiguous fragment like
	// "New York" resolves to the same franchise on every run.
	for _, f := range franchises {
		candidate := Normalize(f.Name)
		if strings.Contains(candidate, norm) || strings.Contains(norm, candidate) {
			return f.Key, true
		}
	}

	return "", false
}

// Match reports whether two team identifiers refer to the same
// franchise. When both resolve, it compares canonical keys. When either
// is unresolved it falls back to substring containment between the
// normalized strings; external aliases are not exhaustively enumerable,
// so this trades a small false-positive risk for coverage.
func (r *Resolver) Match(a, b string) bool {
	ka, okA := r.Resolve(a)
	kb, okB := r.Resolve(b)
	if okA && okB {
		return ka == kb
	}

	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Normalize lowercases an identifier and strips franchise-generic
// suffixes so that partial names can be compared by containment.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "Football Team", "")
	return strings.ToLower(strings.TrimSpace(s))
}
