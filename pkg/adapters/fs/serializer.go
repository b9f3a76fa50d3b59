package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/strata/pkg/core"
)

// noteDoc is the on-disk form of one note: YAML frontmatter with the
// scalar fields and attributes, followed by the note content.
type noteDoc struct {
	Meta    noteMeta
	Content string
}

type noteMeta struct {
	ID         string     `yaml:"id"`
	Title      string     `yaml:"title"`
	Type       string     `yaml:"type"`
	Mime       string     `yaml:"mime,omitempty"`
	Prefix     string     `yaml:"prefix,omitempty"`
	Expanded   bool       `yaml:"expanded,omitempty"`
	Position   int        `yaml:"position,omitempty"`
	Attributes []attrMeta `yaml:"attributes,omitempty"`
}

type attrMeta struct {
	ID          string             `yaml:"id,omitempty"`
	Type        core.AttributeType `yaml:"type"`
	Name        string             `yaml:"name"`
	Value       string             `yaml:"value,omitempty"`
	Inheritable bool               `yaml:"inheritable,omitempty"`
	Position    int                `yaml:"position,omitempty"`
}

func encodeNote(doc noteDoc) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc.Meta); err != nil {
		return nil, err
	}
	encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

func decodeNote(data []byte) (noteDoc, error) {
	var doc noteDoc

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Content = string(data)
		return doc, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return doc, errors.New("frontmatter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(parts[0], &doc.Meta); err != nil {
		return doc, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	doc.Content = strings.TrimPrefix(string(parts[1]), "\n")
	doc.Content = strings.TrimPrefix(doc.Content, "\r\n")
	return doc, nil
}
