// Package prompt loads named templates from a flat directory of text files
// and substitutes {name} placeholders. Templates are read-only at runtime;
// each file is read once and reused.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned when a template key has no backing file.
var ErrTemplateNotFound = errors.New("prompt template not found")

// MissingVariableError is returned when a template placeholder has no
// supplied value.
type MissingVariableError struct {
	Template string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("prompt template %q: no value for {%s}", e.Template, e.Variable)
}

// Placeholders are {lower_snake_case} identifiers. JSON examples inside the
// templates never match because their braces enclose quoted keys.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Store reads templates from a single directory.
type Store struct {
	dir string

	mu    sync.RWMutex
	texts map[string]string
}

// NewStore creates a Store over dir. Files are loaded lazily on first use.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		texts: make(map[string]string),
	}
}

// Format loads the named template and substitutes vars into its placeholders.
// Unused vars are ignored; a placeholder without a var is an error.
func (s *Store) Format(name string, vars map[string]string) (string, error) {
	text, err := s.load(name)
	if err != nil {
		return "", err
	}

	var missing *MissingVariableError
	result := placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		val, ok := vars[key]
		if !ok {
			if missing == nil {
				missing = &MissingVariableError{Template: name, Variable: key}
			}
			return match
		}
		return val
	})
	if missing != nil {
		return "", missing
	}

	return result, nil
}

// load returns the template text, reading the backing file on first use.
func (s *Store) load(name string) (string, error) {
	s.mu.RLock()
	text, ok := s.texts[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	path := filepath.Join(s.dir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("failed to read prompt template %s: %w", name, err)
	}

	text = strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s (file is empty)", ErrTemplateNotFound, name)
	}

	s.mu.Lock()
	s.texts[name] = text
	s.mu.Unlock()

	return text, nil
}
