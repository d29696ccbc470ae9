package meta

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const yamlIndent = 2

// Render dumps class as YAML under a "class" key, the text shown on hover.
func Render(class *Class) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(map[string]*Class{"class": class}); err != nil {
		return "", fmt.Errorf("render class: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render class: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown wraps the YAML dump of class in a Markdown document titled
// with name.
func RenderMarkdown(name string, class *Class) (string, error) {
	dump, err := Render(class)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("# %s\n\n`%s`\n\n```yaml\n%s```\n", name, ClassKey(name), dump), nil
}
