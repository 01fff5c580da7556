package rule

import "embed"

// builtinRulesFS embeds the built-in comment styles and copyright grammars.
//
//go:embed styles/*.yml grammars/*.yml
var builtinRulesFS embed.FS
