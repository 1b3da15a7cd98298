package lexical

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Empty-document sentinels the surface emits for a blank editor.
var emptySentinels = map[string]bool{
	"":              true,
	"<p></p>":       true,
	"<p><br></p>":   true,
	"<p><br/></p>":  true,
	"<p><br /></p>": true,
}

// Parse decodes a Lexical JSON document.
func Parse(content string) (*LexicalRoot, error) {
	var root LexicalRoot
	if err := json.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("failed to parse lexical json: %w", err)
	}
	return &root, nil
}

func looksLexical(content string) bool {
	return strings.HasPrefix(content, `{"root":`)
}

// IsEmpty reports whether content carries no real text: an empty string, an
// HTML empty-paragraph marker, or a Lexical tree whose leaves hold only
// whitespace. Embedded non-text nodes (images, rules) count as content.
func IsEmpty(content string) bool {
	trimmed := strings.TrimSpace(content)
	if emptySentinels[trimmed] {
		return true
	}
	if !looksLexical(trimmed) {
		return false
	}
	root, err := Parse(trimmed)
	if err != nil {
		return false
	}
	return isEmptyNode(root.Root)
}

func isEmptyNode(node Node) bool {
	switch node.Type {
	case "text":
		return strings.TrimSpace(node.Text) == ""
	case "linebreak", "tab":
		return true
	case "root", "paragraph", "heading", "quote", "list", "listitem", "link", "":
		for _, child := range node.Children {
			if !isEmptyNode(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// PlainText flattens content to text, one line per block. Non-Lexical
// content is returned unchanged.
func PlainText(content string) string {
	trimmed := strings.TrimSpace(content)
	if !looksLexical(trimmed) {
		return content
	}
	root, err := Parse(trimmed)
	if err != nil {
		return content
	}
	var sb strings.Builder
	walk(root.Root, &sb)
	return strings.TrimSpace(sb.String())
}

func walk(node Node, sb *strings.Builder) {
	switch node.Type {
	case "text":
		sb.WriteString(node.Text)
		return
	case "linebreak":
		sb.WriteString("\n")
		return
	case "tab":
		sb.WriteString("\t")
		return
	case "listitem":
		if node.Checked {
			sb.WriteString("[x] ")
		}
	}

	for _, child := range node.Children {
		walk(child, sb)
	}
	if blockTypes[node.Type] {
		sb.WriteString("\n")
	}
}

// Headline returns the first non-blank line of content, cut to max runes.
func Headline(content string, max int) string {
	for _, line := range strings.Split(PlainText(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if max > 0 && utf8.RuneCountInString(line) > max {
			runes := []rune(line)
			return strings.TrimSpace(string(runes[:max])) + "…"
		}
		return line
	}
	return ""
}
