package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractFirstJSON pulls the first JSON object out of model text. Models
// wrap payloads in markdown fences and sprinkle // comments even when
// told not to, so both are stripped before the outermost braces are
// located. Returns "" when no valid object is present.
func ExtractFirstJSON(content string) string {
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = stripJSONComments(content)

	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first == -1 || last <= first {
		return ""
	}

	candidate := content[first : last+1]
	if !json.Valid([]byte(candidate)) {
		return ""
	}
	return candidate
}

// stripJSONComments removes // line and /* block */ comments, leaving
// string literals untouched.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++ // skip the closing '/'
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var codeBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")

// ExtractCodeBlock returns the first fenced code block's contents, or the
// whole text trimmed when no fence is present.
func ExtractCodeBlock(text string) string {
	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
