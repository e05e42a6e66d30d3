// Package daterange bounds the date ranges accepted by analytical queries.
package daterange

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Layout is the wire format of range boundaries.
const Layout = "2006-01-02"

// DefaultMaxMonths is the widest span accepted before the start is clamped.
const DefaultMaxMonths = 12

// Range is an inclusive [Start, End] pair of YYYY-MM-DD dates.
type Range struct {
	Start string `json:"data_inicio"`
	End   string `json:"data_fim"`
}

var (
	ErrMissing  = errors.New("Por favor, selecione ambas as datas (início e fim).")
	ErrInverted = errors.New("A data de início deve ser anterior à data de fim.")
)

// Guard clamps and validates ranges against a maximum month span.
type Guard struct {
	clock     clockwork.Clock
	loc       *time.Location
	maxMonths int
}

// NewGuard builds a Guard. Zero or negative maxMonths uses DefaultMaxMonths.
func NewGuard(clock clockwork.Clock, loc *time.Location, maxMonths int) *Guard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}
	return &Guard{clock: clock, loc: loc, maxMonths: maxMonths}
}

// MaxMonths returns the configured span limit.
func (g *Guard) MaxMonths() int { return g.maxMonths }

// Default returns the first day of the current month through today.
func (g *Guard) Default() Range {
	now := g.clock.Now().In(g.loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, g.loc)
	return Range{Start: first.Format(Layout), End: now.Format(Layout)}
}

// Enforce returns a usable range. Missing, unparseable or inverted input falls
// back to Default; spans wider than the limit keep End and move Start to the
// first day of the month maxMonths before End's month.
func (g *Guard) Enforce(start, end string) Range {
	s, e, err := g.parse(start, end)
	if err != nil {
		return g.Default()
	}
	if MonthSpan(s, e) > g.maxMonths {
		clamped := time.Date(e.Year(), e.Month()-time.Month(g.maxMonths), 1, 0, 0, 0, 0, g.loc)
		return Range{Start: clamped.Format(Layout), End: e.Format(Layout)}
	}
	return Range{Start: s.Format(Layout), End: e.Format(Layout)}
}

// Validate reports why a range would be rejected, or nil when it is usable as is.
func (g *Guard) Validate(start, end string) error {
	s, e, err := g.parse(start, end)
	if err != nil {
		return err
	}
	if MonthSpan(s, e) > g.maxMonths {
		return fmt.Errorf("O intervalo máximo permitido é de %d meses. Por favor, selecione um período menor.", g.maxMonths)
	}
	return nil
}

func (g *Guard) parse(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, ErrMissing
	}
	s, err := time.ParseInLocation(Layout, start, g.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data de início inválida %q: %w", start, err)
	}
	e, err := time.ParseInLocation(Layout, end, g.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data de fim inválida %q: %w", end, err)
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, ErrInverted
	}
	return s, e, nil
}

// MonthSpan counts calendar months between the year/month pairs of a and b,
// ignoring days.
func MonthSpan(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
