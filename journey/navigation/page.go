// Package navigation formalises the five journey pages, which moves between
// them are expected, and the delayed transitions that gate them.
package navigation

import (
	"strings"
	"time"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

var pages = []types.Page{
	types.PageLanding,
	types.PageMap,
	types.PageChapter,
	types.PageROI,
	types.PageCheckout,
}

// transitions is the storybook's page flow. Staying on a page is always
// allowed and not listed.
var transitions = map[types.Page][]types.Page{
	types.PageLanding:  {types.PageMap},
	types.PageMap:      {types.PageChapter},
	types.PageChapter:  {types.PageMap, types.PageROI},
	types.PageROI:      {types.PageChapter, types.PageCheckout},
	types.PageCheckout: {types.PageLanding},
}

// Pages lists every page in journey order.
func Pages() []types.Page {
	out := make([]types.Page, len(pages))
	copy(out, pages)
	return out
}

// Valid reports whether p is one of the five pages.
func Valid(p types.Page) bool {
	for _, known := range pages {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePage accepts a page name in any case, surrounded by whitespace.
func ParsePage(s string) (types.Page, bool) {
	p := types.Page(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(p) {
		return "", false
	}
	return p, true
}

// Next returns the pages reachable from p in the storybook flow.
func Next(p types.Page) []types.Page {
	next := transitions[p]
	out := make([]types.Page, len(next))
	copy(out, next)
	return out
}

// Policy decides whether setCurrentPage may move between two pages.
type Policy int

const (
	// Free permits any-to-any navigation.
	Free Policy = iota
	// Strict only permits the storybook flow.
	Strict
)

// PolicyFor maps the strict-navigation switch to a Policy.
func PolicyFor(strict bool) Policy {
	if strict {
		return Strict
	}
	return Free
}

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "free"
}

// Allows reports whether moving from one page to another is permitted.
// Unknown destinations are never permitted.
func (p Policy) Allows(from, to types.Page) bool {
	if !Valid(to) {
		return false
	}
	if p == Free || from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DelayFor picks the animation delay that gates moving from one page to
// another.
func DelayFor(t types.Timings, from, to types.Page) time.Duration {
	switch {
	case from == types.PageLanding && to == types.PageMap:
		return t.BookOpen
	case from == types.PageMap && to == types.PageChapter:
		return t.MapBurn
	case to == types.PageCheckout:
		return t.Treasure
	default:
		return t.PageTurn
	}
}

// CueFor names the sound that accompanies a delayed transition.
func CueFor(from, to types.Page) string {
	switch {
	case from == types.PageLanding && to == types.PageMap:
		return types.CueBookOpen
	case from == types.PageMap && to == types.PageChapter:
		return types.CueMapBurn
	case to == types.PageCheckout:
		return types.CueTreasure
	default:
		return types.CuePageFlip
	}
}
