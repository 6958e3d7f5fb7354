package filesystem

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// Frontmatter is the YAML header recognised at the top of markdown files.
type Frontmatter struct {
	Title string
	Tags  []string
}

// frontmatterTags accepts both a YAML list and a comma-separated string.
type frontmatterTags []string

func (t *frontmatterTags) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		for _, tag := range strings.Split(node.Value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				*t = append(*t, tag)
			}
		}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*t = list
	return nil
}

// ParseFrontmatter extracts the frontmatter block of content. The content
// itself is not modified. It returns false when there is no well-formed block.
func ParseFrontmatter(content string) (Frontmatter, bool) {
	content = strings.TrimPrefix(content, "\ufeff")
	first, rest, found := strings.Cut(content, "\n")
	if !found || strings.TrimSpace(first) != frontmatterDelim {
		return Frontmatter{}, false
	}

	var block []string
	closed := false
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == frontmatterDelim {
			closed = true
			break
		}
		block = append(block, line)
	}
	if !closed {
		return Frontmatter{}, false
	}

	var raw struct {
		Title string          `yaml:"title"`
		Tags  frontmatterTags `yaml:"tags"`
	}
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &raw); err != nil {
		return Frontmatter{}, false
	}
	fm := Frontmatter{Title: strings.TrimSpace(raw.Title)}
	if raw.Tags != nil {
		fm.Tags = []string(raw.Tags)
	}
	return fm, true
}
