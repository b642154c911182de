package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TeamKey is the stable identifier of a catalog team, also used as callback data.
type TeamKey string

type Team struct {
	Key   TeamKey `json:"key" yaml:"key"`
	Label string  `json:"label" yaml:"label"`
	Emoji string  `json:"emoji" yaml:"emoji"`
}

// Title returns "emoji label", the form used on buttons and prompts.
func (t Team) Title() string {
	return t.Emoji + " " + t.Label
}

//go:embed teams.yaml
var catalogYAML []byte

type catalogFile struct {
	Teams []Team `yaml:"teams"`
}

// Catalog is the fixed list of selectable teams in display order.
type Catalog struct {
	teams []Team
	byKey map[TeamKey]Team
}

// ParseCatalog decodes a YAML team list. Keys must be unique and non-empty.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode team catalog: %w", err)
	}
	if len(file.Teams) == 0 {
		return nil, fmt.Errorf("team catalog is empty")
	}

	c := &Catalog{
		teams: make([]Team, 0, len(file.Teams)),
		byKey: make(map[TeamKey]Team, len(file.Teams)),
	}
	for _, t := range file.Teams {
		if t.Key == "" {
			return nil, fmt.Errorf("team catalog entry %q has no key", t.Label)
		}
		if _, dup := c.byKey[t.Key]; dup {
			return nil, fmt.Errorf("duplicate team key %q in catalog", t.Key)
		}
		c.teams = append(c.teams, t)
		c.byKey[t.Key] = t
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog of 11 teams.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err) // embedded file is part of the build
	}
	return c
}

func (c *Catalog) Teams() []Team {
	out := make([]Team, len(c.teams))
	copy(out, c.teams)
	return out
}

func (c *Catalog) Lookup(key TeamKey) (Team, bool) {
	t, ok := c.byKey[key]
	return t, ok
}

// Resolve is Lookup for keys already validated against the catalog; unknown keys
// fall back to the raw key as label.
func (c *Catalog) Resolve(key TeamKey) Team {
	t, ok := c.byKey[key]
	if !ok {
		return Team{Key: key, Label: string(key)}
	}
	return t
}
