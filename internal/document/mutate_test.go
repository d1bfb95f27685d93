package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaults(sectionType string) Settings {
	switch sectionType {
	case "hero":
		return Settings{"heading": "Welcome", "showButton": true}
	default:
		return nil
	}
}

func TestAddSection(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	assert.Len(t, sections, 1)
	assert.NotEmpty(t, sections[0].ID)
	assert.Equal(t, "hero", sections[0].Type)
	assert.Equal(t, "Welcome", sections[0].Settings["heading"])

	// unknown types are legal and resolve to empty settings
	sections = AddSection(sections, "not-a-real-type", defaults, true)
	assert.Len(t, sections, 2)
	assert.Equal(t, Settings{}, sections[1].Settings)

	sections = AddSection(sections, "footer", defaults, false)
	assert.Equal(t, "footer", sections[0].Type)
	assert.Len(t, sections, 3)

	// ids are unique
	seen := map[string]bool{}
	for _, s := range sections {
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}

func TestUpdateSection(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	id := sections[0].ID

	updated := UpdateSection(sections, id, Settings{"heading": "Sale", "subheading": "50% off"})
	assert.Equal(t, "Sale", updated[0].Settings["heading"])
	assert.Equal(t, "50% off", updated[0].Settings["subheading"])
	// untouched keys survive the shallow merge
	assert.Equal(t, true, updated[0].Settings["showButton"])
	// input sequence is untouched
	assert.Equal(t, "Welcome", sections[0].Settings["heading"])

	// missing id is a no-op, never an error
	same := UpdateSection(sections, "missing", Settings{"heading": "x"})
	assert.True(t, sections.Equal(same))
}

func TestDeleteSection(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	sections = AddSection(sections, "footer", defaults, true)

	next := DeleteSection(sections, sections[0].ID)
	assert.Len(t, next, 1)
	assert.Equal(t, "footer", next[0].Type)

	same := DeleteSection(sections, "missing")
	assert.True(t, sections.Equal(same))
}

func TestDuplicateSectionIndependence(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	sections = AddSection(sections, "footer", defaults, true)
	sections[0].Blocks = []Block{{ID: "b1", Type: "menu-item", Settings: Settings{"label": "Home"}}}
	original := sections[0].ID

	next := DuplicateSection(sections, original)
	assert.Len(t, next, 3)
	assert.Equal(t, "hero", next[1].Type)
	assert.NotEqual(t, original, next[1].ID)
	assert.NotEqual(t, "b1", next[1].Blocks[0].ID)
	assert.Equal(t, "footer", next[2].Type)

	// mutating the duplicate must not change the original
	mutated := UpdateSection(next, next[1].ID, Settings{"heading": "changed"})
	assert.Equal(t, "Welcome", mutated[0].Settings["heading"])
	assert.Equal(t, "changed", mutated[1].Settings["heading"])
}

func TestReorder(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	sections = AddSection(sections, "gallery", defaults, true)
	sections = AddSection(sections, "footer", defaults, true)
	heroID, galleryID, footerID := sections[0].ID, sections[1].ID, sections[2].ID

	next := Reorder(sections, footerID, heroID, true)
	assert.Equal(t, []string{footerID, heroID, galleryID}, ids(next))

	next = Reorder(sections, heroID, footerID, false)
	assert.Equal(t, []string{galleryID, footerID, heroID}, ids(next))

	// self-move and missing ids are no-ops
	assert.Equal(t, ids(sections), ids(Reorder(sections, heroID, heroID, true)))
	assert.Equal(t, ids(sections), ids(Reorder(sections, "missing", heroID, true)))
	assert.Equal(t, ids(sections), ids(Reorder(sections, heroID, "missing", true)))
}

func TestCopyPaste(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	sections = AddSection(sections, "gallery", defaults, true)
	sections = AddSection(sections, "footer", defaults, true)

	// clipboard preserves relative document order regardless of selection order
	clipboard := Copy(sections, []string{sections[2].ID, sections[0].ID})
	assert.Len(t, clipboard, 2)
	assert.Equal(t, "hero", clipboard[0].Type)
	assert.Equal(t, "footer", clipboard[1].Type)
	assert.Empty(t, clipboard[0].ID)

	next := Paste(sections, clipboard)
	assert.Len(t, next, 5)
	assert.Equal(t, "hero", next[3].Type)
	assert.Equal(t, "footer", next[4].Type)
	assert.NotEmpty(t, next[3].ID)
	assert.NotEqual(t, sections[0].ID, next[3].ID)
}

func TestBulkOperations(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	sections = AddSection(sections, "gallery", defaults, true)
	sections = AddSection(sections, "footer", defaults, true)

	hidden := SetHiddenMany(sections, []string{sections[0].ID, sections[2].ID}, true)
	assert.True(t, hidden[0].Hidden())
	assert.False(t, hidden[1].Hidden())
	assert.True(t, hidden[2].Hidden())

	// equivalent to sequential single-item deletes
	sequential := DeleteSection(DeleteSection(sections, sections[0].ID), sections[1].ID)
	bulk := DeleteMany(sections, []string{sections[0].ID, sections[1].ID})
	assert.True(t, sequential.Equal(bulk))
}

func TestSectionsRoundTrip(t *testing.T) {
	sections := AddSection(nil, "hero", defaults, true)
	data, err := sections.Marshal()
	assert.NoError(t, err)

	decoded, err := UnmarshalSections(data)
	assert.NoError(t, err)
	assert.True(t, sections.Equal(decoded))

	// empty payloads decode to an empty sequence, not nil
	decoded, err = UnmarshalSections(nil)
	assert.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Len(t, decoded, 0)
}

func ids(sections Sections) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.ID)
	}
	return out
}
