package document

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// hiddenKey is a soft-delete flag inside the settings bag. Hidden sections
// stay in the document and in history but are skipped at render time.
const hiddenKey = "hidden"

// Settings is the untyped key/value bag of a section or block. The document
// model enforces no schema beyond JSON-serializability; each renderer owns its
// expected keys and defaults.
type Settings map[string]any

// Clone deep-copies the settings through a JSON round trip. Settings values
// are JSON-serializable by contract, so a marshal failure means the document
// is corrupt beyond what the model can repair; return an empty bag instead of
// aliasing the original.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		logrus.Errorf("settings clone failed: %v", err)
		return Settings{}
	}

	clone := Settings{}
	if err := json.Unmarshal(data, &clone); err != nil {
		logrus.Errorf("settings clone failed: %v", err)
		return Settings{}
	}

	return clone
}

// Block is a sub-element of a composite section, e.g. a menu item in a header.
type Block struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Settings Settings `json:"settings,omitempty"`
}

func (b Block) Clone() Block {
	return Block{
		ID:       b.ID,
		Type:     b.Type,
		Settings: b.Settings.Clone(),
	}
}

// Section is one ordered, independently rendered unit of a page document.
type Section struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Settings Settings `json:"settings,omitempty"`
	Blocks   []Block  `json:"blocks,omitempty"`
}

func (s Section) Clone() Section {
	clone := Section{
		ID:       s.ID,
		Type:     s.Type,
		Settings: s.Settings.Clone(),
	}
	if s.Blocks != nil {
		clone.Blocks = make([]Block, 0, len(s.Blocks))
		for _, b := range s.Blocks {
			clone.Blocks = append(clone.Blocks, b.Clone())
		}
	}

	return clone
}

// Hidden reports the soft-delete flag from the settings bag.
func (s Section) Hidden() bool {
	if s.Settings == nil {
		return false
	}

	hidden, ok := s.Settings[hiddenKey].(bool)
	return ok && hidden
}

// Sections is the ordered sequence of sections of one page. Insertion order is
// the single source of truth for render order.
type Sections []Section

// Clone deep-copies the sequence. Mutations never alias their input, so every
// snapshot handed to history or persistence is safe to keep.
func (s Sections) Clone() Sections {
	if s == nil {
		return nil
	}

	clone := make(Sections, 0, len(s))
	for _, section := range s {
		clone = append(clone, section.Clone())
	}

	return clone
}

// IndexOf returns the position of the section with the given id, or -1.
func (s Sections) IndexOf(id string) int {
	for i, section := range s {
		if section.ID == id {
			return i
		}
	}

	return -1
}

// Equal reports structural equality via the JSON encoding. Document sizes are
// tens of sections, so the round trip is cheap enough for history diffing.
func (s Sections) Equal(other Sections) bool {
	a, err := json.Marshal(s)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}

	return string(a) == string(b)
}

// Marshal encodes the sequence for storage. An empty sequence encodes as []
// rather than null so a stored draft never reads back as nil.
func (s Sections) Marshal() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(s)
}

// UnmarshalSections decodes a stored sequence. Unknown fields are dropped, not
// rejected; the layout document is untrusted and must never crash the reader.
func UnmarshalSections(data []byte) (Sections, error) {
	sections := make(Sections, 0)
	if len(data) == 0 {
		return sections, nil
	}

	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, err
	}

	return sections, nil
}

// Document is the full editable representation of one storefront page.
type Document struct {
	PageID   string   `json:"pageId"`
	Slug     string   `json:"slug"`
	PageType string   `json:"pageType"`
	Status   string   `json:"status"`
	Sections Sections `json:"sections"`
}
