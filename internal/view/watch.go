package view

import "blogsearch/internal/search"

type EffectKind int

const (
	// EffectNone: nothing shown and nothing to show.
	EffectNone EffectKind = iota
	EffectClear
	EffectFetch
)

func (k EffectKind) String() string {
	switch k {
	case EffectClear:
		return "clear"
	case EffectFetch:
		return "fetch"
	}
	return "none"
}

// Effect is the single side effect a keyword transition causes.
type Effect struct {
	Kind   EffectKind
	Params search.Params
}

// Watch maps a keyword transition to its side effect. Keywords are expected
// normalized. A non-empty next keyword always fetches, including a repeat of
// prev, because every navigation re-runs the search.
func Watch(prev, next string) Effect {
	switch {
	case next != "":
		return Effect{Kind: EffectFetch, Params: search.NewParams(next)}
	case prev != "":
		return Effect{Kind: EffectClear}
	}
	return Effect{Kind: EffectNone}
}
