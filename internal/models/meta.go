package models

import (
	"encoding/json"
	"fmt"
)

// AttrValue holds the values of one metadata attribute. Attributes are
// string-or-list in meta.json; a single-valued attribute written as a
// plain string round-trips as a plain string.
type AttrValue struct {
	Values []string
	Multi  bool
}

// Attr returns a single-valued attribute.
func Attr(value string) AttrValue {
	return AttrValue{Values: []string{value}}
}

// AttrList returns a multi-valued attribute.
func AttrList(values ...string) AttrValue {
	return AttrValue{Values: values, Multi: true}
}

func (v AttrValue) MarshalJSON() ([]byte, error) {
	if !v.Multi && len(v.Values) == 1 {
		return json.Marshal(v.Values[0])
	}
	if v.Values == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(v.Values)
}

func (v *AttrValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		v.Values = []string{single}
		v.Multi = false
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("attribute value must be string or string list")
	}
	v.Values = list
	v.Multi = true
	return nil
}

// Meta is the per-document metadata file. It is the source of truth;
// the search index is a rebuildable shadow of it.
type Meta struct {
	Mimetype   string               `json:"mimetype"`
	Attributes map[string]AttrValue `json:"attributes"`
	Tags       []string             `json:"tags,omitempty"`
}

// NewMeta returns a fresh metadata record with the document title
// defaulted to its basename.
func NewMeta(mimetype, title string) *Meta {
	return &Meta{
		Mimetype:   mimetype,
		Attributes: map[string]AttrValue{"title": Attr(title)},
	}
}

// Attr returns the first value of an attribute, or "" when unset.
func (m *Meta) Attr(key string) string {
	if v, ok := m.Attributes[key]; ok && len(v.Values) > 0 {
		return v.Values[0]
	}
	return ""
}

// HasTag reports whether the document carries a tag.
func (m *Meta) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
