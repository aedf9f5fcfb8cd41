// Package frontmatter edits the YAML front matter block at the top of a
// markdown post without reformatting it.
//
// The block is kept as its original lines. Each top-level key owns its
// own line plus any indented continuation lines below it. Set rewrites
// that span in place or appends a new line at the end of the block, so
// serializing an untouched document returns the input byte for byte.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontMatter is returned by Parse when the input does not start
// with a "---" delimited block.
var ErrNoFrontMatter = errors.New("frontmatter: no front matter block")

const delimiter = "---"

// Document is a parsed post: the front matter lines plus everything after
// the closing delimiter.
type Document struct {
	lines   []string
	tail    []byte // closing delimiter and body, verbatim
	newline string
}

// Parse splits data into front matter and body. Both "\n" and "\r\n"
// line endings are accepted and preserved.
func Parse(data []byte) (*Document, error) {
	newline := "\n"
	var rest []byte
	switch {
	case bytes.HasPrefix(data, []byte(delimiter+"\r\n")):
		newline = "\r\n"
		rest = data[len(delimiter)+2:]
	case bytes.HasPrefix(data, []byte(delimiter+"\n")):
		rest = data[len(delimiter)+1:]
	default:
		return nil, ErrNoFrontMatter
	}

	var lines []string
	for offset := 0; offset < len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest)
		if end >= 0 {
			line = rest[offset : offset+end]
			next = offset + end + 1
		} else {
			line = rest[offset:]
		}
		text := strings.TrimSuffix(string(line), "\r")
		if strings.TrimRight(text, " \t") == delimiter {
			return &Document{
				lines:   lines,
				tail:    append([]byte(nil), rest[offset:]...),
				newline: newline,
			}, nil
		}
		lines = append(lines, text)
		offset = next
	}
	return nil, ErrNoFrontMatter
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	var keys []string
	for _, line := range d.lines {
		if key, _, ok := entry(line); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	return d.index(key) >= 0
}

// Get returns the scalar value of key with surrounding quotes removed.
// Values spanning several lines (block scalars, multi-line quoted strings)
// are decoded. Missing keys and non-scalar values return an empty string.
func (d *Document) Get(key string) string {
	i := d.index(key)
	if i < 0 {
		return ""
	}
	_, raw, _ := entry(d.lines[i])
	end := d.span(i)
	if end == i+1 && !blockIndicator.MatchString(raw) {
		return unquote(raw)
	}

	var m map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(d.lines[i:end], "\n")+"\n"), &m); err != nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil, map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Set writes "key: value". An existing key is replaced in place together
// with its continuation lines, otherwise the line is appended to the
// block. It reports whether the document changed.
func (d *Document) Set(key, value string) bool {
	line := key + ": " + value
	if i := d.index(key); i >= 0 {
		end := d.span(i)
		if end == i+1 && d.lines[i] == line {
			return false
		}
		d.lines = append(d.lines[:i+1], d.lines[end:]...)
		d.lines[i] = line
		return true
	}
	d.lines = append(d.lines, line)
	return true
}

// Decode unmarshals the front matter block into v.
func (d *Document) Decode(v any) error {
	if err := yaml.Unmarshal([]byte(strings.Join(d.lines, "\n")), v); err != nil {
		return fmt.Errorf("decode front matter: %w", err)
	}
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteString(d.newline)
	for _, line := range d.lines {
		buf.WriteString(line)
		buf.WriteString(d.newline)
	}
	buf.Write(d.tail)
	return buf.Bytes()
}

func (d *Document) index(key string) int {
	for i, line := range d.lines {
		if k, _, ok := entry(line); ok && k == key {
			return i
		}
	}
	return -1
}

// span returns the index just past the lines owned by the entry at i:
// indented lines and "- " list items, including blank lines between them.
// Trailing blank lines stay with the next entry.
func (d *Document) span(i int) int {
	end := i + 1
	for j := i + 1; j < len(d.lines); j++ {
		line := d.lines[j]
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case line[0] == ' ', line[0] == '\t', line == "-", strings.HasPrefix(line, "- "):
			end = j + 1
		default:
			return end
		}
	}
	return end
}

// blockIndicator matches a block scalar header such as "|", ">-" or "|2+",
// optionally followed by a comment.
var blockIndicator = regexp.MustCompile(`^[|>][1-9+-]{0,2}(\s+#.*)?$`)

// entry splits a top-level "key: value" line. Indented lines, list items
// and comments are not entries.
func entry(line string) (key, value string, ok bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' || line[0] == '-' {
		return "", "", false
	}
	key, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// unquote decodes a quoted YAML scalar, falling back to trimming the
// quote characters when the value is not valid YAML on its own.
func unquote(raw string) string {
	if len(raw) < 2 || (raw[0] != '"' && raw[0] != '\'') {
		return raw
	}
	var s string
	if err := yaml.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return strings.Trim(raw, `"'`)
}
