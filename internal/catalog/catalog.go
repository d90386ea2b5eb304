package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"

	"github.com/park285/paint-chess/internal/board"
)

//go:embed catalog.yaml
var defaultFiles embed.FS

// Colors is the colour set of one role.
type Colors struct {
	Piece   string `yaml:"piece" json:"piece"`
	BgLight string `yaml:"bgLight" json:"bgLight"`
	BgDark  string `yaml:"bgDark" json:"bgDark"`
}

// Palette pairs the colours of both roles.
type Palette struct {
	Name string `yaml:"name" json:"-"`
	P1   Colors `yaml:"p1" json:"p1"`
	P2   Colors `yaml:"p2" json:"p2"`
}

// For returns the colours of r.
func (p Palette) For(r board.Role) Colors {
	if r == board.P2 {
		return p.P2
	}
	return p.P1
}

type document struct {
	Palettes []Palette `yaml:"palettes"`
	AI       struct {
		Greeting  string   `yaml:"greeting"`
		Responses []string `yaml:"responses"`
	} `yaml:"ai"`
	Messages map[string]any `yaml:"messages"`
}

// Catalog holds palettes, AI chat lines and message templates loaded from the embedded
// defaults and an optional override directory.
type Catalog struct {
	mu        sync.RWMutex
	palettes  []Palette
	greeting  string
	responses []string
	messages  map[string]string // flattened dot-keys → template text
}

// New loads the embedded defaults and then applies overrides from dir if provided.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]string)}

	raw, err := fs.ReadFile(defaultFiles, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	doc, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	if _, err := c.apply(doc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	if len(c.palettes) == 0 {
		return nil, errors.New("catalog has no palettes")
	}
	return c, nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read catalog dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		ext := strings.ToLower(filepath.Ext(n))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, n)
		}
	}
	sort.Strings(files)

	seen := make(map[string]string) // key -> filename
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		doc, err := parse(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		keys, err := c.apply(doc)
		if err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		for _, k := range keys {
			if prev, ok := seen[k]; ok {
				return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			seen[k] = name
		}
	}
	return nil
}

func parse(b []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// apply는 doc을 c에 병합하고 설정한 키 목록을 반환.
func (c *Catalog) apply(doc *document) ([]string, error) {
	flat := make(map[string]string)
	if err := flattenStrings(doc.Messages, "", flat); err != nil {
		return nil, err
	}
	for i, p := range doc.Palettes {
		if p.P1.Piece == "" || p.P2.Piece == "" {
			return nil, fmt.Errorf("palette %d (%s) is missing a piece colour", i, p.Name)
		}
	}

	var keys []string
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(doc.Palettes) > 0 {
		c.palettes = doc.Palettes
		keys = append(keys, "palettes")
	}
	if doc.AI.Greeting != "" {
		c.greeting = doc.AI.Greeting
		keys = append(keys, "ai.greeting")
	}
	if len(doc.AI.Responses) > 0 {
		c.responses = doc.AI.Responses
		keys = append(keys, "ai.responses")
	}
	for k, v := range flat {
		c.messages[k] = v
		keys = append(keys, "messages."+k)
	}
	return keys, nil
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Palettes returns a copy of the configured palettes.
func (c *Catalog) Palettes() []Palette {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Palette(nil), c.palettes...)
}

// RandomPalette picks one palette uniformly.
func (c *Catalog) RandomPalette() Palette {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.palettes[rand.IntN(len(c.palettes))]
}

// Greeting is the line an AI player opens a match with.
func (c *Catalog) Greeting() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.greeting
}

// RandomResponse picks one AI reaction line, or "" when none are configured.
func (c *Catalog) RandomResponse() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.responses) == 0 {
		return ""
	}
	return c.responses[rand.IntN(len(c.responses))]
}

// Render executes the message template stored under key.
// Missing keys cause errors; caller should provide a fallback.
func (c *Catalog) Render(key string, data any) (string, error) {
	c.mu.RLock()
	tpl, ok := c.messages[strings.TrimSpace(key)]
	c.mu.RUnlock()
	if !ok || strings.TrimSpace(tpl) == "" {
		return "", fmt.Errorf("template not found: %s", key)
	}
	t, err := template.New(key).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
