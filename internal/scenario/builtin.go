package scenario

import (
	_ "embed"
)

//go:embed botornot.yaml
var botornotYAML []byte

// BuiltinName is the name of the embedded default scenario.
const BuiltinName = "botornot"

// Builtin returns the embedded BotOrNot scenario.
func Builtin() (*Scenario, error) {
	return Parse(botornotYAML)
}

// BuiltinSource returns the raw YAML of the embedded scenario.
func BuiltinSource() []byte {
	return append([]byte(nil), botornotYAML...)
}
