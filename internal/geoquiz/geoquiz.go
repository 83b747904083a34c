// Package geoquiz defines the core domain types shared across the service.
// It has zero external dependencies — everything here is pure Go.
package geoquiz

// Code identifies a quizzable geographic entity (ISO 3166-1 alpha-2 for
// countries, or a dataset-specific key for sub-national features).
type Code string

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EntityInfo is the immutable per-load snapshot of one entity's facts.
// Fields beyond Code and Name may be absent; absence of flag or capital
// data makes the corresponding stage inapplicable, it is never an error.
type EntityInfo struct {
	Code         Code    `json:"code"`
	Name         string  `json:"name"`
	Capital      string  `json:"capital,omitempty"`
	CapitalCoord *LatLng `json:"capitalCoord,omitempty"`
	FlagRef      string  `json:"flagRef,omitempty"`
	Region       string  `json:"region,omitempty"`
	Subregion    string  `json:"subregion,omitempty"`
}

// HasFlag reports whether flag data is available for this entity.
func (e EntityInfo) HasFlag() bool { return e.FlagRef != "" }

// HasCapital reports whether capital coordinates are available.
func (e EntityInfo) HasCapital() bool { return e.CapitalCoord != nil }

// Stage is one guess modality for an entity.
type Stage string

const (
	StageName    Stage = "name"
	StageFlag    Stage = "flag"
	StageCapital Stage = "capital"
)

// Progress tracks which stages have been answered correctly for one entity.
// Entries are created lazily on first reference and only cleared in bulk.
type Progress struct {
	NameDone    bool `json:"nameDone"`
	FlagDone    bool `json:"flagDone"`
	CapitalDone bool `json:"capitalDone"`
}

// Done reports whether the given stage has been answered correctly.
func (p Progress) Done(s Stage) bool {
	switch s {
	case StageName:
		return p.NameDone
	case StageFlag:
		return p.FlagDone
	case StageCapital:
		return p.CapitalDone
	}
	return false
}

// MarkDone records a correct answer for the given stage. Idempotent.
func (p *Progress) MarkDone(s Stage) {
	switch s {
	case StageName:
		p.NameDone = true
	case StageFlag:
		p.FlagDone = true
	case StageCapital:
		p.CapitalDone = true
	}
}

// Settings are the difficulty toggles. They persist across sessions and
// outlive dataset switches.
type Settings struct {
	FlagsEnabled    bool `json:"flagsEnabled"`
	CapitalsEnabled bool `json:"capitalsEnabled"`
}
