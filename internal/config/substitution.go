package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${env://NAME} and ${env://NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// MissingEnvError lists the variables referenced without a default that are
// not set.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "environment variable substitution failed: required variables not set: " + strings.Join(e.Names, ", ")
}

// EnvSubstituter expands ${env://...} references in raw config text before it
// is parsed, so that secrets and per-host URLs can stay out of the file.
type EnvSubstituter struct {
	// Lookup resolves a variable. Defaults to os.LookupEnv.
	Lookup func(name string) (string, bool)
}

// Substitute replaces every reference in content. A variable that is unset
// or empty falls back to its default; references with no default must be
// set, otherwise a *MissingEnvError naming all of them is returned.
func (e *EnvSubstituter) Substitute(content string) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := strings.Contains(match, ":-")

		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return sub[2]
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", &MissingEnvError{Names: missing}
	}
	return result, nil
}

// HasEnvVars reports whether content references any environment variable.
func HasEnvVars(content string) bool {
	return envVarPattern.MatchString(content)
}
