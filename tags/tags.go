// Package tags keeps the topic registry in step with the tags used by
// posts. The registry is a JSON object keyed by tag:
//
//	{
//	  "sleep": {"display": "Sleep", "description": "Articles and insights on sleep"}
//	}
package tags

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/withstain/sitekit/frontmatter"
)

// maxSuggestDistance is the largest edit distance offered as a "did you
// mean" suggestion.
const maxSuggestDistance = 2

// Entry is one registered tag.
type Entry struct {
	Display     string `json:"display"`
	Description string `json:"description"`
}

// NewEntry derives the default registry entry for tag.
func NewEntry(tag string) Entry {
	display := DisplayName(tag)
	return Entry{
		Display:     display,
		Description: "Articles and insights on " + strings.ToLower(display),
	}
}

// DisplayName title-cases each hyphen-separated word of tag.
func DisplayName(tag string) string {
	words := strings.Split(tag, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Missing is a tag used by posts but absent from the registry.
type Missing struct {
	Tag        string
	Count      int
	Suggestion string // closest registered tag, if any is close enough
}

// Unused is a registered tag no post uses.
type Unused struct {
	Tag     string
	Display string
}

// Report is the result of comparing posts against the registry.
type Report struct {
	Posts      int
	InUse      int
	Registered int
	Usage      map[string]int
	Missing    []Missing
	Unused     []Unused
	Added      []string // tags written to the registry by Fix
	Warnings   []string // posts that could not be read or parsed
}

// OK reports whether every used tag is registered and every registered
// tag is used.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Unused) == 0
}

// Check scans postsDir recursively for markdown posts and compares their
// tags with the registry at registryPath.
func Check(postsDir, registryPath string) (Report, error) {
	reg, err := LoadRegistry(registryPath)
	if err != nil {
		return Report{}, err
	}
	return check(postsDir, reg)
}

// Fix runs Check and then adds every missing tag to the registry with a
// default entry. The registry is rewritten only when something was added.
func Fix(postsDir, registryPath string) (Report, error) {
	reg, err := LoadRegistry(registryPath)
	if err != nil {
		return Report{}, err
	}
	report, err := check(postsDir, reg)
	if err != nil {
		return report, err
	}
	if len(report.Missing) == 0 {
		return report, nil
	}

	for _, m := range report.Missing {
		if err := reg.Add(m.Tag, NewEntry(m.Tag)); err != nil {
			return report, err
		}
		report.Added = append(report.Added, m.Tag)
	}
	if err := reg.Save(registryPath); err != nil {
		return report, err
	}
	return report, nil
}

func check(postsDir string, reg *Registry) (Report, error) {
	report := Report{
		Registered: reg.Len(),
		Usage:      make(map[string]int),
	}

	err := filepath.WalkDir(postsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		report.Posts++

		tags, err := postTags(path)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			return nil
		}
		for _, tag := range tags {
			report.Usage[tag]++
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan posts: %w", err)
	}
	report.InUse = len(report.Usage)

	for tag, count := range report.Usage {
		if reg.Has(tag) {
			continue
		}
		report.Missing = append(report.Missing, Missing{
			Tag:        tag,
			Count:      count,
			Suggestion: suggest(tag, reg.Tags()),
		})
	}
	sort.Slice(report.Missing, func(i, j int) bool {
		return report.Missing[i].Tag < report.Missing[j].Tag
	})

	for _, tag := range reg.Tags() {
		if _, ok := report.Usage[tag]; !ok {
			report.Unused = append(report.Unused, Unused{Tag: tag, Display: reg.Display(tag)})
		}
	}
	return report, nil
}

// postTags returns the tags list of a post. Posts without front matter or
// whose tags value is not a list have no tags.
func postTags(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, nil
	}

	var fm struct {
		Tags any `yaml:"tags"`
	}
	if err := doc.Decode(&fm); err != nil {
		return nil, err
	}
	list, ok := fm.Tags.([]any)
	if !ok {
		return nil, nil
	}
	var tags []string
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			tags = append(tags, s)
		} else if v != nil {
			tags = append(tags, fmt.Sprint(v))
		}
	}
	return tags, nil
}

// suggest returns the registered tag closest to tag, or "" when none is
// within maxSuggestDistance.
func suggest(tag string, registered []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, cand := range registered {
		if d := levenshtein.ComputeDistance(tag, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

// Registry is the parsed topic registry. Entries keep any fields beyond
// display and description untouched.
type Registry struct {
	entries map[string]json.RawMessage
}

// LoadRegistry reads the registry JSON file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag registry: %w", err)
	}
	entries := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tag registry %s: %w", path, err)
	}
	return &Registry{entries: entries}, nil
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.entries[tag]
	return ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Display returns the display name of tag, or "" when it has none.
func (r *Registry) Display(tag string) string {
	var e Entry
	if err := json.Unmarshal(r.entries[tag], &e); err != nil {
		return ""
	}
	return e.Display
}

// Add registers tag with e, replacing any existing entry.
func (r *Registry) Add(tag string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode tag %s: %w", tag, err)
	}
	r.entries[tag] = raw
	return nil
}

// Save writes the registry sorted by tag with two-space indentation and
// a trailing newline.
func (r *Registry) Save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.entries); err != nil {
		return fmt.Errorf("encode tag registry: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write tag registry: %w", err)
	}
	return nil
}
