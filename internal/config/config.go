// Package config loads and validates the sitegen configuration file.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// LinkRel enumerates the relation kinds of extra link resources. Only
// stylesheets are merged into the global sheet; other kinds pass through to
// the render options untouched.
type LinkRel string

const (
	RelStylesheet LinkRel = "stylesheet"
	RelIcon       LinkRel = "icon"
)

// Link is one extra resource to include in every page head.
type Link struct {
	Rel  LinkRel `yaml:"rel"`
	Path string  `yaml:"path"`
}

// Meta is one meta name/content pair emitted on every page.
type Meta struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// StylesheetConfig controls the merged global stylesheet.
type StylesheetConfig struct {
	// Global is an optional stylesheet appended to the default sheet.
	Global string `yaml:"global,omitempty"`
	// ReplaceDefault drops the built-in default sheet instead of extending it.
	ReplaceDefault bool `yaml:"replace_default,omitempty"`
}

// OutputConfig controls where the site is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// SiteConfig carries the page-head settings shared by every rendered page.
type SiteConfig struct {
	Title    string `yaml:"title"`
	Language string `yaml:"language,omitempty"`
	Meta     []Meta `yaml:"meta,omitempty"`
}

// Config is the full sitegen configuration.
type Config struct {
	// Index is the markdown document the site tree is built from.
	Index string `yaml:"index"`
	// NotFoundPage is an optional markdown document rendered as a flat
	// <name>.html next to the site root, usable as the server's 404 page.
	NotFoundPage string           `yaml:"not_found_page,omitempty"`
	Favicon      string           `yaml:"favicon,omitempty"`
	Stylesheet   StylesheetConfig `yaml:"stylesheet,omitempty"`
	Links        []Link           `yaml:"links,omitempty"`
	Output       OutputConfig     `yaml:"output"`
	Site         SiteConfig       `yaml:"site"`
}

// Load reads, expands and validates the configuration file at path.
// Environment variables referenced as $VAR or ${VAR} in the file are
// expanded; a .env file in the working directory is loaded first when
// present.
func Load(path string) (*Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryConfig, "failed to read configuration file").
			WithContext("path", path).
			Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryConfig, "failed to unmarshal configuration").
			WithContext("path", path).
			Build()
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	for i := range c.Links {
		if c.Links[i].Rel == "" {
			c.Links[i].Rel = RelStylesheet
		}
	}
}

func (c *Config) validate() error {
	if c.Index == "" {
		return sgerrors.New(sgerrors.CategoryValidation, "index document path is required").Build()
	}
	if _, err := language.Parse(c.Site.Language); err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryValidation, "invalid site language tag").
			WithContext("language", c.Site.Language).
			Build()
	}
	for _, l := range c.Links {
		if l.Path == "" {
			return sgerrors.New(sgerrors.CategoryValidation, "link resource is missing a path").Build()
		}
	}
	return nil
}
