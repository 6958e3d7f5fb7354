package services

import (
	"strings"
	"unicode/utf8"
)

// MergeSeparator joins appended text that does not continue the existing text.
const MergeSeparator = "\n\n---\n\n"

// MergeContent appends addition to existing. Nothing is appended when
// existing already contains addition. When more than half of addition
// repeats the tail of existing, only the new remainder is appended;
// otherwise the two are joined with MergeSeparator.
func MergeContent(existing, addition string) string {
	trimmed := strings.TrimSpace(addition)
	switch {
	case trimmed == "":
		return existing
	case strings.TrimSpace(existing) == "":
		return addition
	case strings.Contains(existing, trimmed):
		return existing
	}

	body := strings.TrimRight(existing, " \t\r\n")
	if k := overlap(body, trimmed); k*2 > len(trimmed) {
		return body + trimmed[k:]
	}
	return body + MergeSeparator + trimmed
}

// overlap returns the length of the longest prefix of b that is a suffix of a,
// cut at a rune boundary of b.
func overlap(a, b string) int {
	n := min(len(a), len(b))
	for k := n; k > 0; k-- {
		if k < len(b) && !utf8.RuneStart(b[k]) {
			continue
		}
		if strings.HasSuffix(a, b[:k]) {
			return k
		}
	}
	return 0
}

// UpdateSection replaces the body under the first markdown heading whose
// text equals heading (case-insensitive), up to the next heading of the same
// or a higher level. When no such heading exists a level-2 section is
// appended. Headings inside fenced code blocks are ignored.
func UpdateSection(document, heading, body string) string {
	lines := strings.Split(document, "\n")
	want := strings.ToLower(strings.TrimSpace(heading))
	body = strings.TrimSpace(body)

	start, level := -1, 0
	end := len(lines)
	fenced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenced = !fenced
			continue
		}
		if fenced {
			continue
		}
		lvl, text, ok := parseHeading(line)
		if !ok {
			continue
		}
		if start < 0 {
			if strings.ToLower(text) == want {
				start, level = i, lvl
			}
			continue
		}
		if lvl <= level {
			end = i
			break
		}
	}

	if start < 0 {
		doc := strings.TrimRight(document, "\n")
		if doc != "" {
			doc += "\n\n"
		}
		return doc + "## " + strings.TrimSpace(heading) + "\n\n" + body + "\n"
	}

	out := make([]string, 0, len(lines)+4)
	out = append(out, lines[:start+1]...)
	out = append(out, "", body)
	if end < len(lines) {
		out = append(out, "")
		out = append(out, lines[end:]...)
	} else {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

// parseHeading recognises ATX headings ("## Title").
func parseHeading(line string) (level int, text string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return 0, "", false
	}
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	return level, strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#")), true
}
