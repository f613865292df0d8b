package ir

import "github.com/goccy/go-json"

// JSON serialization support for MetaShape values.
// The encoding follows the emitted TypeScript literals: primitives are plain
// strings, the absent marker is null, and every other variant is an object
// carrying a "meta" discriminator.

// MarshalJSON implements json.Marshaler for Primitive.
func (m Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Name)
}

// MarshalJSON implements json.Marshaler for ObjectRef.
func (m ObjectRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Meta string `json:"meta"`
		Type string `json:"type"`
		Name string `json:"name"`
	}{
		Meta: "object",
		Type: m.FullName,
		Name: m.Name,
	})
}

// MarshalJSON implements json.Marshaler for ArrayOf.
func (m ArrayOf) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Meta string    `json:"meta"`
		Type MetaShape `json:"type"`
	}{
		Meta: "array",
		Type: m.Element,
	})
}

// MarshalJSON implements json.Marshaler for MapOf.
func (m MapOf) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Meta  string    `json:"meta"`
		Key   string    `json:"key"`
		Value MetaShape `json:"value"`
	}{
		Meta:  "map",
		Key:   m.Key,
		Value: m.Value,
	})
}

// MarshalJSON implements json.Marshaler for UnionOf.
func (m UnionOf) MarshalJSON() ([]byte, error) {
	choices := m.Choices
	if choices == nil {
		choices = []MetaShape{}
	}
	return json.Marshal(&struct {
		Meta    string      `json:"meta"`
		Choices []MetaShape `json:"choices"`
	}{
		Meta:    "union",
		Choices: choices,
	})
}

// MarshalJSON implements json.Marshaler for Absent.
func (Absent) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MetaDocument is the language-independent metadata of one generated file.
type MetaDocument struct {
	File     string        `json:"file"`
	Package  string        `json:"package,omitempty"`
	Messages []MetaMessage `json:"messages"`
	Services []MetaService `json:"services,omitempty"`
}

// MetaMessage is the metadata of one message.
type MetaMessage struct {
	Name     string      `json:"name"`
	FullName string      `json:"fullName"`
	Fields   []MetaField `json:"fields"`
}

// MetaField is the metadata of one message property.
type MetaField struct {
	Key  string    `json:"key"`
	Meta MetaShape `json:"meta"`
}

// MetaService is the metadata of one service.
type MetaService struct {
	Name    string       `json:"name"`
	Methods []MetaMethod `json:"methods"`
}

// MetaMethod records the request and response types of a method.
type MetaMethod struct {
	Name     string `json:"name"`
	Request  string `json:"request"`
	Response string `json:"response"`
}

// MarshalIndent encodes the document as indented JSON with a trailing newline.
func (d *MetaDocument) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
