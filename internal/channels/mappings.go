package channels

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"equiv/internal/logging"
)

// Mappings loads the hand-maintained alias -> channel URI table used by the
// forced updater. The file is re-read whenever its modification time changes.
//
// Accepted layouts:
//
//	mappings:
//	  "1234": http://example.com/channels/bbc-one
//
// or the same map at the top level.
type Mappings struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	loaded  time.Time
	entries map[string]string
}

// NewMappings constructs a catalog backed by the YAML file at path.
func NewMappings(path string, logger *slog.Logger) *Mappings {
	return &Mappings{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "channels"),
	}
}

// Path returns the backing file.
func (m *Mappings) Path() string { return m.path }

// Lookup returns the candidate URI mapped to alias.
func (m *Mappings) Lookup(alias string) (string, bool, error) {
	if err := m.ensureLoaded(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	uri, ok := m.entries[strings.TrimSpace(alias)]
	return uri, ok, nil
}

// Len returns the number of loaded entries.
func (m *Mappings) Len() (int, error) {
	if err := m.ensureLoaded(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *Mappings) ensureLoaded() error {
	if m.path == "" {
		return ErrMappingsMissing
	}
	info, err := os.Stat(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMappingsMissing, m.path)
		}
		return fmt.Errorf("stat forced mappings: %w", err)
	}

	m.mu.RLock()
	alreadyLoaded := !m.loaded.IsZero() && m.loaded.Equal(info.ModTime())
	m.mu.RUnlock()
	if alreadyLoaded {
		return nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("read forced mappings: %w", err)
	}
	entries, err := parseMappings(data)
	if err != nil {
		return fmt.Errorf("parse forced mappings %s: %w", m.path, err)
	}

	m.mu.Lock()
	m.entries = entries
	m.loaded = info.ModTime()
	m.mu.Unlock()
	m.logger.Info("loaded forced channel mappings",
		logging.String("path", m.path),
		logging.Int("count", len(entries)),
	)
	return nil
}

func parseMappings(data []byte) (map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var entries map[string]string
	if node, ok := raw["mappings"]; ok && node.Kind == yaml.MappingNode {
		if err := node.Decode(&entries); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	normalized := make(map[string]string, len(entries))
	for alias, uri := range entries {
		alias = strings.TrimSpace(alias)
		uri = strings.TrimSpace(uri)
		if alias == "" || uri == "" {
			continue
		}
		normalized[alias] = uri
	}
	return normalized, nil
}
