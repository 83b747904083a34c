package engine

import (
	"sort"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// Projection is the read-only view the presentation layer renders from.
// It is recomputed from the full state on every intent rather than
// maintained incrementally.
type Projection struct {
	Dataset  string           `json:"dataset,omitempty"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	Settings geoquiz.Settings `json:"settings"`

	Target   *geoquiz.EntityInfo `json:"target,omitempty"`
	Selected *geoquiz.EntityInfo `json:"selected,omitempty"`
	Stage    geoquiz.Stage       `json:"stage,omitempty"`
	Revealed bool                `json:"revealed"`
	// LastCorrect is nil until the current round has been scored.
	LastCorrect *bool `json:"lastCorrect,omitempty"`

	Found   []geoquiz.Code `json:"found"`
	Failed  []geoquiz.Code `json:"failed"`
	Partial []geoquiz.Code `json:"partial"`

	Scores map[geoquiz.Stage]Score `json:"scores"`
	Action Action                  `json:"action"`
}

// Score is one category's correct-answer count over the entities for
// which the stage is currently applicable.
type Score struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Action describes the single primary affordance.
type Action struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Snapshot returns the current projection.
func (e *Engine) Snapshot() Projection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Settings returns the current difficulty toggles.
func (e *Engine) Settings() geoquiz.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *Engine) snapshotLocked() Projection {
	p := Projection{
		Loading:  e.loading,
		Error:    e.loadErr,
		Settings: e.cfg,
		Stage:    e.stage,
		Revealed: e.revealed,
		Found:    sortedCodes(e.found),
		Failed:   sortedCodes(e.failed),
		Partial:  e.partialLocked(),
		Scores:   e.scoresLocked(),
	}
	if e.hasEntry {
		p.Dataset = e.entry.ID
	}
	if e.scored {
		v := e.lastCorrect
		p.LastCorrect = &v
	}
	if info, ok := e.entities[e.target]; ok && e.target != "" {
		p.Target = &info
	}
	if info, ok := e.entities[e.selected]; ok && e.selected != "" {
		p.Selected = &info
	}
	p.Action = e.actionLocked()
	return p
}

func (e *Engine) actionLocked() Action {
	a := Action{Label: "Confirm"}
	if e.revealed {
		a.Label = "Next"
	}
	switch {
	case e.loading, e.loadErr != "", e.target == "":
		a.Disabled = true
	case !e.revealed && e.selected == "":
		a.Disabled = true
	}
	return a
}

// partial lists entities with at least one stage done that are not yet
// complete.
func (e *Engine) partialLocked() []geoquiz.Code {
	set := make(map[geoquiz.Code]struct{})
	for code, p := range e.progress {
		if p.NameDone || p.FlagDone || p.CapitalDone {
			if _, done := e.found[code]; !done {
				set[code] = struct{}{}
			}
		}
	}
	return sortedCodes(set)
}

func (e *Engine) scoresLocked() map[geoquiz.Stage]Score {
	scores := map[geoquiz.Stage]Score{
		geoquiz.StageName:    {},
		geoquiz.StageFlag:    {},
		geoquiz.StageCapital: {},
	}
	for code := range e.entities {
		p := e.progress[code]
		for _, s := range e.applicableStagesLocked(code) {
			sc := scores[s]
			sc.Total++
			if p != nil && p.Done(s) {
				sc.Done++
			}
			scores[s] = sc
		}
	}
	return scores
}

func sortedCodes(set map[geoquiz.Code]struct{}) []geoquiz.Code {
	out := make([]geoquiz.Code, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	sortCodes(out)
	return out
}

func sortCodes(codes []geoquiz.Code) {
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
}
