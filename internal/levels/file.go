package levels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/wireloop/internal/model"
)

// File is the TOML layout of a user level.
type File struct {
	ID          int         `toml:"id"`
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Difficulty  string      `toml:"difficulty"`
	Preset      string      `toml:"preset"`
	Rules       Overrides   `toml:"rules"`
	Points      []FilePoint `toml:"points"`
}

// FilePoint is one control point. Z is accepted and ignored.
type FilePoint struct {
	X float64  `toml:"x"`
	Y float64  `toml:"y"`
	Z *float64 `toml:"z"`
}

// LoadFile reads one level file. Rule and path problems are repaired and
// returned as notes; only unreadable files and bad metadata are errors.
func LoadFile(path string) (model.Level, []string, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return model.Level{}, nil, fmt.Errorf("failed to decode level %s: %w", path, err)
	}
	if f.ID <= 0 {
		return model.Level{}, nil, fmt.Errorf("level %s: id must be positive", path)
	}
	d, err := ParseDifficulty(f.Difficulty)
	if err != nil {
		return model.Level{}, nil, fmt.Errorf("level %s: %w", path, err)
	}
	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	points := make([]model.Point, len(f.Points))
	for i, p := range f.Points {
		points[i] = model.Point{X: p.X, Y: p.Y}
	}

	lvl, notes := build(f.ID, name, f.Description, d, points, f.Preset, f.Rules)
	for _, key := range meta.Undecoded() {
		notes = append(notes, "unknown key "+key.String())
	}
	return lvl, notes, nil
}

// LoadDir reads every *.toml file in dir in name order. A missing
// directory is not an error. Files that fail to load are reported in the
// returned error list and skipped.
func LoadDir(dir string) ([]model.Level, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("failed to read levels dir: %w", err)}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []model.Level
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		lvl, notes, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, n := range notes {
			errs = append(errs, fmt.Errorf("level %s: %s", path, n))
		}
		out = append(out, lvl)
	}
	return out, errs
}
