package analysis

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"vgsales_dashboard/internal/dataset"
)

// OtherFranchise is the label for titles that match no known franchise.
const OtherFranchise = "Other"

// FranchiseConfig is the ordered franchise list plus display settings.
// Order matters: a title matching several names gets the first one.
type FranchiseConfig struct {
	Franchises   []string          `yaml:"franchises" json:"franchises"`
	Spotlight    []string          `yaml:"spotlight" json:"spotlight"`
	Colors       map[string]string `yaml:"colors" json:"colors"`
	DefaultColor string            `yaml:"default_color" json:"default_color"`
}

// LoadFranchiseConfig reads a YAML franchise file. A missing file or an empty
// franchise list yields the built-in defaults.
func LoadFranchiseConfig(path string) (FranchiseConfig, error) {
	if path == "" {
		return DefaultFranchiseConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultFranchiseConfig(), nil
		}
		return FranchiseConfig{}, err
	}
	var cfg FranchiseConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FranchiseConfig{}, fmt.Errorf("parse franchise config %s: %w", path, err)
	}
	if len(cfg.Franchises) == 0 {
		return DefaultFranchiseConfig(), nil
	}
	def := DefaultFranchiseConfig()
	if cfg.Spotlight == nil {
		cfg.Spotlight = def.Spotlight
	}
	if cfg.DefaultColor == "" {
		cfg.DefaultColor = def.DefaultColor
	}
	return cfg, nil
}

func DefaultFranchiseConfig() FranchiseConfig {
	return FranchiseConfig{
		Franchises: []string{
			"Call of Duty", "FIFA", "Mario", "Pokémon", "Grand Theft Auto",
			"The Sims", "Need for Speed", "Assassin", "Final Fantasy", "Halo",
		},
		Spotlight: []string{"Call of Duty", "FIFA", "Mario", "Pokémon"},
		Colors: map[string]string{
			"Call of Duty": "#FF6B00",
			"FIFA":         "#009688",
			"Mario":        "#E91E63",
			"Pokémon":      "#FFC107",
		},
		DefaultColor: "#2196F3",
	}
}

// Color returns the display colour for a franchise.
func (c FranchiseConfig) Color(franchise string) string {
	if col, ok := c.Colors[franchise]; ok {
		return col
	}
	return c.DefaultColor
}

// Classify returns the first franchise in known whose name is contained in
// title, ignoring case, or OtherFranchise.
func Classify(title string, known []string) string {
	return NewFranchiseClassifier(known).Classify(title)
}

// FranchiseClassifier holds a pre-folded franchise list.
type FranchiseClassifier struct {
	names  []string
	folded []string
}

func NewFranchiseClassifier(known []string) *FranchiseClassifier {
	c := &FranchiseClassifier{
		names:  make([]string, 0, len(known)),
		folded: make([]string, 0, len(known)),
	}
	for _, name := range known {
		f := fold(strings.TrimSpace(name))
		if f == "" {
			continue
		}
		c.names = append(c.names, name)
		c.folded = append(c.folded, f)
	}
	return c
}

// Names returns the franchises in match order.
func (c *FranchiseClassifier) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *FranchiseClassifier) Classify(title string) string {
	t := fold(title)
	for i, name := range c.folded {
		if strings.Contains(t, name) {
			return c.names[i]
		}
	}
	return OtherFranchise
}

// Annotate returns a copy of t with every record's Franchise set.
func (c *FranchiseClassifier) Annotate(t *dataset.Table) *dataset.Table {
	return t.Map(func(r dataset.GameRecord) dataset.GameRecord {
		r.Franchise = c.Classify(r.Title)
		return r
	})
}

// fold lower-cases s for caseless matching. Unlike full case folding it keeps
// ß and ligatures as they are. A Caser keeps state, so one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
