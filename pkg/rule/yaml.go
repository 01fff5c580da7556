package rule

// yamlStyle is the intermediate struct for parsing a comment style.
type yamlStyle struct {
	Name             string   `yaml:"name"`
	ID               string   `yaml:"id"`
	Description      string   `yaml:"description,omitempty"`
	Extensions       []string `yaml:"extensions,omitempty"`
	Open             string   `yaml:"open,omitempty"`
	Close            string   `yaml:"close,omitempty"`
	Line             string   `yaml:"line,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
}

// yamlGrammar is the intermediate struct for parsing a copyright grammar.
type yamlGrammar struct {
	Name             string   `yaml:"name"`
	ID               string   `yaml:"id"`
	Description      string   `yaml:"description,omitempty"`
	Pattern          string   `yaml:"pattern"`
	Keywords         []string `yaml:"keywords,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
}

// yamlRulesFile represents the top-level structure of a rules YAML file.
// A file may carry styles, grammars or both.
type yamlRulesFile struct {
	Styles   []yamlStyle   `yaml:"styles,omitempty"`
	Grammars []yamlGrammar `yaml:"grammars,omitempty"`
}
