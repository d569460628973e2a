package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatterMetadata extracts tags and scalar attributes from the
// YAML front matter of a markdown file. Files without front matter
// yield nothing.
func frontMatterMetadata(path string) ([]string, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return nil, nil, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, nil, fmt.Errorf("front matter not closed in %s", path)
	}

	frontMatter := map[string]any{}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &frontMatter); err != nil {
		return nil, nil, err
	}

	var tags []string
	attrs := map[string]string{}
	for key, value := range frontMatter {
		if key == "tags" {
			tags = append(tags, stringList(value)...)
			continue
		}
		switch v := value.(type) {
		case string:
			attrs[key] = v
		case int:
			attrs[key] = fmt.Sprintf("%d", v)
		case bool:
			attrs[key] = fmt.Sprintf("%t", v)
		case float64:
			attrs[key] = fmt.Sprintf("%v", v)
		}
	}
	return tags, attrs, nil
}

func stringList(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
