// Package levels owns level data: the bundled levels, rule defaults and
// presets, user level files, and lookup by number.
package levels

import (
	"errors"
	"fmt"
	"sort"

	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
)

// ErrNotFound is returned for level numbers the provider does not know.
var ErrNotFound = errors.New("level not found")

// Provider looks levels up by number.
type Provider interface {
	Level(n int) (model.Level, error)
	Numbers() []int
}

// Catalog is an in-memory Provider.
type Catalog struct {
	levels map[int]model.Level
}

// NewCatalog returns a catalog holding levels. Later levels replace earlier
// ones with the same id.
func NewCatalog(levels ...model.Level) *Catalog {
	c := &Catalog{levels: make(map[int]model.Level, len(levels))}
	for _, l := range levels {
		c.Add(l)
	}
	return c
}

// Default returns a catalog of the bundled levels.
func Default() *Catalog {
	return NewCatalog(Builtin()...)
}

// Add inserts or replaces a level.
func (c *Catalog) Add(l model.Level) {
	c.levels[l.ID] = l
}

func (c *Catalog) Level(n int) (model.Level, error) {
	l, ok := c.levels[n]
	if !ok {
		return model.Level{}, fmt.Errorf("level %d: %w", n, ErrNotFound)
	}
	return l, nil
}

// Numbers returns the known level numbers in ascending order.
func (c *Catalog) Numbers() []int {
	out := make([]int, 0, len(c.levels))
	for n := range c.levels {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// All returns every level ordered by number.
func (c *Catalog) All() []model.Level {
	nums := c.Numbers()
	out := make([]model.Level, 0, len(nums))
	for _, n := range nums {
		out = append(out, c.levels[n])
	}
	return out
}

// Load builds the bundled catalog with the user levels in dir merged on
// top. Load problems are logged and skipped.
func Load(dir string, logger *log.Logger) *Catalog {
	c := Default()
	if dir == "" {
		return c
	}
	user, errs := LoadDir(dir)
	for _, err := range errs {
		logger.Warnf("%v", err)
	}
	for _, l := range user {
		c.Add(l)
	}
	return c
}

// Fallback is the level used when nothing else can be loaded.
func Fallback() model.Level {
	lvl, _ := build(1, "Straight Line", "", model.DifficultyMedium, nil, "", Overrides{})
	return lvl
}

// Resolve returns level n, or level 1 when n is unknown, or Fallback when
// the provider has neither. It never fails; problems are logged.
func Resolve(p Provider, n int, logger *log.Logger) model.Level {
	if p == nil {
		logger.Warnf("levels: no provider, using fallback level")
		return Fallback()
	}
	l, err := p.Level(n)
	if err == nil {
		return checked(l, logger)
	}
	logger.Warnf("levels: %v, using level 1", err)
	if n != 1 {
		if l, err = p.Level(1); err == nil {
			return checked(l, logger)
		}
		logger.Warnf("levels: %v", err)
	}
	return Fallback()
}

func checked(l model.Level, logger *log.Logger) model.Level {
	rules, fixes := Sanitize(l.Rules)
	points, fellBack := Clean(l.Points)
	for _, f := range fixes {
		logger.Warnf("levels: level %d: %s", l.ID, f)
	}
	if fellBack {
		logger.Warnf("levels: level %d has no usable path, using fallback line", l.ID)
	}
	l.Rules = rules
	l.Points = points
	return l
}
