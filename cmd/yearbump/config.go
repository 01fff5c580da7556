package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is
// not given.
const DefaultConfigFile = ".yearbump.yml"

// projectConfig is the optional per-project settings file. Unset fields
// leave the flag defaults alone and explicit flags always win.
type projectConfig struct {
	Owner         string   `yaml:"owner"`
	Exclude       []string `yaml:"exclude"`
	Styles        string   `yaml:"styles"`
	Grammars      string   `yaml:"grammars"`
	RulesInclude  string   `yaml:"rules_include"`
	RulesExclude  string   `yaml:"rules_exclude"`
	IncludeHidden *bool    `yaml:"include_hidden"`
	MaxFileSize   *int64   `yaml:"max_file_size"`
	MaxStart      *int     `yaml:"max_start"`
	Workers       *int     `yaml:"workers"`
	Git           *bool    `yaml:"git"`
	Datastore     string   `yaml:"datastore"`
}

// loadProjectConfig reads path. A missing file is not an error unless it
// was named explicitly.
func loadProjectConfig(path string, explicit bool) (*projectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &projectConfig{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var c projectConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &c, nil
}

// apply copies the settings of c into the update flags that were not set
// on the command line.
func (c *projectConfig) apply(flags *pflag.FlagSet) {
	unset := func(name string) bool {
		f := flags.Lookup(name)
		return f == nil || !f.Changed
	}

	if c.Owner != "" && unset("owner") {
		updateOwner = c.Owner
	}
	if len(c.Exclude) > 0 && unset("exclude") {
		updateExclude = c.Exclude
	}
	if c.Styles != "" && unset("styles") {
		updateStylesPath = c.Styles
	}
	if c.Grammars != "" && unset("grammars") {
		updateGrammarsPath = c.Grammars
	}
	if c.RulesInclude != "" && unset("rules-include") {
		updateRulesInclude = c.RulesInclude
	}
	if c.RulesExclude != "" && unset("rules-exclude") {
		updateRulesExclude = c.RulesExclude
	}
	if c.IncludeHidden != nil && unset("include-hidden") {
		updateIncludeHidden = *c.IncludeHidden
	}
	if c.MaxFileSize != nil && unset("max-file-size") {
		updateMaxFileSize = *c.MaxFileSize
	}
	if c.MaxStart != nil && unset("max-start") {
		updateMaxStart = *c.MaxStart
	}
	if c.Workers != nil && unset("workers") {
		updateWorkers = *c.Workers
	}
	if c.Git != nil && unset("git") {
		updateGit = *c.Git
	}
	if c.Datastore != "" && unset("datastore") {
		updateDatastore = c.Datastore
	}
}
