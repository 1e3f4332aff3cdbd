// Package urlstate encodes the dashboard's view flags as URL query
// parameters so a view can be shared as a link.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Query parameter names.
const (
	ParamMap         = "map"
	ParamTimeline    = "timeline"
	ParamComparisons = "comparisons"
	ParamAnalytics   = "analytics"
	ParamHistorical  = "historical"
	ParamWorkshop    = "workshop"
	ParamYear        = "year"
)

// State is the set of dashboard view flags.
type State struct {
	Map         bool   `json:"map"`
	Timeline    bool   `json:"timeline"`
	Comparisons bool   `json:"comparisons"`
	Analytics   bool   `json:"analytics"`
	Historical  bool   `json:"historical"`
	Workshop    string `json:"workshop,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// Defaults is the state of a fresh dashboard: every panel closed, no filter.
func Defaults() State {
	return State{}
}

// Encode writes only what differs from the defaults: true booleans as
// "true", a non-empty workshop and a non-zero year.
func Encode(s State) url.Values {
	v := url.Values{}
	for _, f := range []struct {
		name string
		on   bool
	}{
		{ParamMap, s.Map},
		{ParamTimeline, s.Timeline},
		{ParamComparisons, s.Comparisons},
		{ParamAnalytics, s.Analytics},
		{ParamHistorical, s.Historical},
	} {
		if f.on {
			v.Set(f.name, "true")
		}
	}
	if s.Workshop != "" {
		v.Set(ParamWorkshop, s.Workshop)
	}
	if s.Year != 0 {
		v.Set(ParamYear, strconv.Itoa(s.Year))
	}
	return v
}

// Decode starts from Defaults and overrides a flag only when its value is
// exactly "true", the workshop when present and the year when it parses as
// an integer. Year ranges and workshop ids are not validated.
func Decode(v url.Values) State {
	s := Defaults()
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{ParamMap, &s.Map},
		{ParamTimeline, &s.Timeline},
		{ParamComparisons, &s.Comparisons},
		{ParamAnalytics, &s.Analytics},
		{ParamHistorical, &s.Historical},
	} {
		if v.Get(f.name) == "true" {
			*f.dst = true
		}
	}
	if w := v.Get(ParamWorkshop); w != "" {
		s.Workshop = w
	}
	if y, err := strconv.Atoi(v.Get(ParamYear)); err == nil {
		s.Year = y
	}
	return s
}

// History is the browser history surface the controller writes to.
type History interface {
	// ReplaceState swaps the current entry's query string without adding
	// an entry.
	ReplaceState(query string)
}

// Controller holds the live state and mirrors every change into History.
// Writes are last-write-wins.
type Controller struct {
	mu      sync.Mutex
	state   State
	history History
}

// NewController reads the initial state from the current query string.
func NewController(query string, h History) *Controller {
	v, _ := url.ParseQuery(strings.TrimPrefix(query, "?"))
	return &Controller{state: Decode(v), history: h}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Update applies fn to the state and replaces the history entry with the
// newly encoded query.
func (c *Controller) Update(fn func(*State)) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	if c.history != nil {
		c.history.ReplaceState(Encode(c.state).Encode())
	}
	return c.state
}

// ShareURL returns an absolute link to the current state rooted at base,
// independent of wherever the dashboard is currently loaded.
func (c *Controller) ShareURL(base string) (string, error) {
	return ShareURL(base, c.State())
}

// ShareURL returns base with its query replaced by the encoded state.
func ShareURL(base string, s State) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.RawQuery = Encode(s).Encode()
	u.Fragment = ""
	return u.String(), nil
}
