package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadLexicon reads a keyword lexicon YAML file mapping each label to the
// keywords that signal it, and validates it.
func LoadLexicon(path string) (map[string][]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("lexicon path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var lex map[string][]string
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	if err := validateLexicon(lex); err != nil {
		return nil, fmt.Errorf("validate lexicon: %w", err)
	}

	return lex, nil
}

func validateLexicon(lex map[string][]string) error {
	if len(lex) == 0 {
		return errors.New("at least one label is required")
	}
	for label, words := range lex {
		if strings.TrimSpace(label) == "" {
			return errors.New("label name must not be empty")
		}
		for _, w := range words {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("label %q: keyword must not be empty", label)
			}
		}
	}
	return nil
}
