package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/domgraph/pkg/errors"
)

// Element is one extracted DOM element.
type Element struct {
	Attributes map[string]string `json:"attributes"`
	InnerText  string            `json:"innerText"`
}

// TagGroup holds every extracted element of one tag.
type TagGroup struct {
	Tag      string
	Elements []Element
}

// TagGroups is the inbound payload. Its JSON form is an object keyed by tag
// name; decoding preserves key order, which determines node ids.
type TagGroups []TagGroup

// ElementCount returns the total number of elements across all groups.
func (tg TagGroups) ElementCount() int {
	n := 0
	for _, g := range tg {
		n += len(g.Elements)
	}
	return n
}

// =============================================================================
// Decoding
// =============================================================================

// ParseTagGroups decodes a tag-grouped JSON payload.
// Any shape violation fails with errors.ErrCodeMalformedInput.
func ParseTagGroups(data []byte) (TagGroups, error) {
	return ReadTagGroups(bytes.NewReader(data))
}

// ReadTagGroupsFile reads and decodes a tag-grouped JSON file.
func ReadTagGroupsFile(path string) (TagGroups, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTagGroups(f)
}

// ReadTagGroups decodes a tag-grouped JSON payload from r.
func ReadTagGroups(r io.Reader) (TagGroups, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err, "read payload")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New(errors.ErrCodeMalformedInput, "payload must be a JSON object keyed by tag name")
	}

	groups := TagGroups{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err, "read tag name")
		}
		tag, _ := tok.(string)
		if err := errors.ValidateTagName(tag); err != nil {
			return nil, err
		}
		if seen[tag] {
			return nil, errors.New(errors.ErrCodeMalformedInput, "duplicate tag %q", tag)
		}
		seen[tag] = true

		elements, err := readElements(dec, tag)
		if err != nil {
			return nil, err
		}
		groups = append(groups, TagGroup{Tag: tag, Elements: elements})
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err, "read payload end")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeMalformedInput, "unexpected data after payload")
	}
	return groups, nil
}

func readElements(dec *json.Decoder, tag string) ([]Element, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err, "read elements of %q", tag)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New(errors.ErrCodeMalformedInput, "tag %q: elements must be an array", tag)
	}
	elements := []Element{}
	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, malformed(err, "tag %q: element %d", tag, i)
		}
		el, err := parseElement(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "tag %q: element %d", tag, i)
		}
		elements = append(elements, el)
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err, "tag %q: read array end", tag)
	}
	return elements, nil
}

func parseElement(raw json.RawMessage) (Element, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Element{}, fmt.Errorf("element must be an object")
	}
	var fields struct {
		Attributes json.RawMessage `json:"attributes"`
		InnerText  json.RawMessage `json:"innerText"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Element{}, err
	}

	var el Element
	if isPresent(fields.Attributes) {
		if bytes.TrimSpace(fields.Attributes)[0] != '{' {
			return Element{}, fmt.Errorf("attributes must be an object")
		}
		if err := json.Unmarshal(fields.Attributes, &el.Attributes); err != nil {
			return Element{}, fmt.Errorf("attributes: %w", err)
		}
	}
	if isPresent(fields.InnerText) {
		if err := json.Unmarshal(fields.InnerText, &el.InnerText); err != nil {
			return Element{}, fmt.Errorf("innerText: %w", err)
		}
	}
	return el, nil
}

func isPresent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func malformed(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeMalformedInput, err, format, args...)
}

// =============================================================================
// Encoding
// =============================================================================

// MarshalJSON writes the groups as an object in slice order.
func (tg TagGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range tg {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Tag)
		if err != nil {
			return nil, err
		}
		elements := g.Elements
		if elements == nil {
			elements = []Element{}
		}
		val, err := json.Marshal(elements)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler with the same rules as ParseTagGroups.
func (tg *TagGroups) UnmarshalJSON(data []byte) error {
	groups, err := ParseTagGroups(data)
	if err != nil {
		return err
	}
	*tg = groups
	return nil
}
