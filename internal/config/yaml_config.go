package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Brand keyword lists are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Brand           BrandConfig    `yaml:"brand"`
	Competitors     []BrandConfig  `yaml:"competitors"`
	DefaultKeywords []string       `yaml:"default_keywords"`
	Analyzer        AnalyzerConfig `yaml:"analyzer"`
}

// BrandConfig names a tracked brand and the phrases that count as a mention.
type BrandConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords,omitempty"` // defaults to the name itself
}

// AnalyzerConfig tunes the keyword analyzer.
type AnalyzerConfig struct {
	NumResults int     `yaml:"num_results"`
	Weights    Weights `yaml:"weights"`
}

// Weights are the composite SoV weights. They are normalised to sum to 1.
type Weights struct {
	Mention    float64 `yaml:"mention"`
	Engagement float64 `yaml:"engagement"`
	Positive   float64 `yaml:"positive"`
}

// Default returns the built-in brand setup used when no config file exists.
func Default() *YAMLConfig {
	cfg := &YAMLConfig{
		Brand: BrandConfig{
			Name:     "atomberg",
			Keywords: []string{"atomberg", "smart fan atomberg", "atomberg ceiling fan"},
		},
		DefaultKeywords: []string{"smart fan", "smart ceiling fan", "WiFi controlled fan"},
	}
	for _, name := range []string{"havells", "orient", "ortem", "agni", "carro", "luminous"} {
		cfg.Competitors = append(cfg.Competitors, BrandConfig{Name: name})
	}
	cfg.applyDefaults()
	return cfg
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns the built-in defaults without error if the file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return Default(), nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	def := Default()
	if cfg.Brand.Name == "" {
		cfg.Brand = def.Brand
	}
	if len(cfg.Competitors) == 0 {
		cfg.Competitors = def.Competitors
	}
	if len(cfg.DefaultKeywords) == 0 {
		cfg.DefaultKeywords = def.DefaultKeywords
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *YAMLConfig) applyDefaults() {
	if len(c.Brand.Keywords) == 0 {
		c.Brand.Keywords = []string{c.Brand.Name}
	}
	for i := range c.Competitors {
		if len(c.Competitors[i].Keywords) == 0 {
			c.Competitors[i].Keywords = []string{c.Competitors[i].Name}
		}
	}
	if c.Analyzer.NumResults <= 0 {
		c.Analyzer.NumResults = 20
	}
	w := c.Analyzer.Weights
	if w.Mention <= 0 && w.Engagement <= 0 && w.Positive <= 0 {
		c.Analyzer.Weights = Weights{Mention: 0.4, Engagement: 0.4, Positive: 0.2}
	}
}

// Normalized returns the weights scaled so they sum to 1.
func (w Weights) Normalized() Weights {
	total := w.Mention + w.Engagement + w.Positive
	if total <= 0 {
		return Weights{Mention: 0.4, Engagement: 0.4, Positive: 0.2}
	}
	return Weights{
		Mention:    w.Mention / total,
		Engagement: w.Engagement / total,
		Positive:   w.Positive / total,
	}
}

// BrandKeywords returns the brand name to keyword mapping, primary brand first.
func (c *YAMLConfig) BrandKeywords() map[string][]string {
	if c == nil {
		return nil
	}
	out := map[string][]string{c.Brand.Name: c.Brand.Keywords}
	for _, comp := range c.Competitors {
		out[comp.Name] = comp.Keywords
	}
	return out
}

// CompetitorNames returns the configured competitor names in file order.
func (c *YAMLConfig) CompetitorNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Competitors))
	for _, comp := range c.Competitors {
		names = append(names, comp.Name)
	}
	return names
}
