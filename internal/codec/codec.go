// Package codec parses and emits the two on-disk bean document forms.
//
// Frontmatter form (canonical, .md): a YAML block bracketed by "---" lines,
// followed by a markdown body that is read into the description field. Flat
// form (legacy, .yml): the whole file is one YAML document with the
// description inline.
//
// The codec never normalizes: the form observed on read is the form written
// back, keys are emitted in a fixed order, and parse→emit→parse is an
// identity on every field.
package codec

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/beans/internal/types"
)

// Form identifies which on-disk shape a document uses.
type Form int

const (
	// FormFrontmatter is the canonical YAML-frontmatter-plus-body form.
	FormFrontmatter Form = iota
	// FormFlat is the legacy single-YAML-document form.
	FormFlat
)

// Extensions for the two forms.
const (
	ExtCanonical = ".md"
	ExtLegacy    = ".yml"
)

const delimiter = "---"

// Document pairs a parsed bean with the form it was read in.
type Document struct {
	Bean *types.Bean
	Form Form
}

// Parse decodes a bean document, detecting the form from the content. Files
// starting with a "---" delimiter line are frontmatter and must close the
// block with a second delimiter line; anything else is parsed as a flat YAML
// document.
func Parse(data []byte) (*Document, error) {
	if head, body, ok := splitFrontmatter(data); ok {
		bean := newSparseBean()
		if err := yaml.Unmarshal(head, bean); err != nil {
			return nil, types.E(types.KindValidation, "parsing frontmatter: %v", err)
		}
		// The body is the description unless the frontmatter already set one.
		if bean.Description == "" {
			bean.Description = string(body)
		}
		return &Document{Bean: bean, Form: FormFrontmatter}, nil
	}
	if _, opened := cutDelimiterLine(data); opened {
		return nil, types.E(types.KindValidation, "frontmatter has no closing %q delimiter", delimiter)
	}

	bean := newSparseBean()
	if err := yaml.Unmarshal(data, bean); err != nil {
		return nil, types.E(types.KindValidation, "parsing document: %v", err)
	}
	return &Document{Bean: bean, Form: FormFlat}, nil
}

// newSparseBean pre-applies defaults for fields a sparse document may omit.
// Unmarshal only overwrites fields present in the document.
func newSparseBean() *types.Bean {
	return &types.Bean{Priority: types.DefaultPriority}
}

// Emit serializes a document in its recorded form.
func Emit(doc *Document) ([]byte, error) {
	switch doc.Form {
	case FormFrontmatter:
		return emitFrontmatter(doc.Bean)
	default:
		return marshalBean(doc.Bean)
	}
}

// emitFrontmatter writes the structured fields between delimiters and the
// description as the markdown body. Only the first delimiter pair bounds
// the frontmatter, so bodies containing "---" survive the round trip.
func emitFrontmatter(bean *types.Bean) ([]byte, error) {
	// Description moves to the body; strip it from the YAML block.
	head := *bean
	head.Description = ""

	fields, err := marshalBean(&head)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteByte('\n')
	buf.Write(fields)
	buf.WriteString(delimiter)
	buf.WriteByte('\n')
	if bean.Description != "" {
		buf.WriteByte('\n')
		buf.WriteString(bean.Description)
		if !strings.HasSuffix(bean.Description, "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

func marshalBean(bean *types.Bean) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(bean); err != nil {
		return nil, types.E(types.KindIO, "serializing bean %s: %v", bean.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, types.E(types.KindIO, "serializing bean %s: %v", bean.ID, err)
	}
	return buf.Bytes(), nil
}

// splitFrontmatter returns the YAML block and body when data starts with a
// delimiter line. The body has leading newlines trimmed but is otherwise
// untouched.
func splitFrontmatter(data []byte) (head, body []byte, ok bool) {
	rest, found := cutDelimiterLine(data)
	if !found {
		return nil, nil, false
	}
	// Scan line by line for the closing delimiter; later "---" lines belong
	// to the body.
	offset := 0
	for offset <= len(rest) {
		lineEnd := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest) + 1
		if lineEnd >= 0 {
			line = rest[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		} else {
			line = rest[offset:]
		}
		if isDelimiterLine(line) {
			head = rest[:offset]
			if next <= len(rest) {
				// Leading and trailing newlines around the body are
				// formatting, not content; emit adds them back.
				body = bytes.TrimLeft(rest[next:], "\r\n")
				body = bytes.TrimRight(body, "\r\n")
			}
			return head, body, true
		}
		if lineEnd < 0 {
			break
		}
		offset = next
	}
	return nil, nil, false
}

// cutDelimiterLine strips a leading "---" line, tolerating CRLF.
func cutDelimiterLine(data []byte) ([]byte, bool) {
	if rest, ok := bytes.CutPrefix(data, []byte(delimiter+"\n")); ok {
		return rest, true
	}
	if rest, ok := bytes.CutPrefix(data, []byte(delimiter+"\r\n")); ok {
		return rest, true
	}
	return nil, false
}

func isDelimiterLine(line []byte) bool {
	return string(bytes.TrimRight(line, "\r")) == delimiter
}
