package document

import (
	"github.com/google/uuid"
)

// The mutation API is the only way a document changes. Every operation takes
// the current sequence and returns a new one; the caller replaces document
// state and feeds the old sequence into history. Operating on a missing id is
// a no-op, not an error: edits can race with concurrent deletions, e.g. a
// section deleted while it is mid-drag.

// DefaultSettingsFunc resolves the registered default settings for a section
// type. Unknown types resolve to an empty bag.
type DefaultSettingsFunc func(sectionType string) Settings

// Clipboard is a detached list of copied sections. Ids are stripped and
// regenerated on paste.
type Clipboard []Section

// AddSection appends a new section of the given type with freshly generated id
// and the type's default settings. With atEnd false the section is prepended.
func AddSection(sections Sections, sectionType string, defaults DefaultSettingsFunc, atEnd bool) Sections {
	settings := Settings{}
	if defaults != nil {
		if d := defaults(sectionType); d != nil {
			settings = d.Clone()
		}
	}

	section := Section{
		ID:       uuid.New().String(),
		Type:     sectionType,
		Settings: settings,
	}

	next := sections.Clone()
	if atEnd {
		return append(next, section)
	}

	return append(Sections{section}, next...)
}

// UpdateSection shallow-merges partial settings into the target section's bag.
func UpdateSection(sections Sections, id string, partial Settings) Sections {
	next := sections.Clone()
	i := next.IndexOf(id)
	if i < 0 {
		return next
	}

	if next[i].Settings == nil {
		next[i].Settings = Settings{}
	}
	for k, v := range partial.Clone() {
		next[i].Settings[k] = v
	}

	return next
}

// DeleteSection removes the section with the given id.
func DeleteSection(sections Sections, id string) Sections {
	next := sections.Clone()
	i := next.IndexOf(id)
	if i < 0 {
		return next
	}

	return append(next[:i], next[i+1:]...)
}

// DuplicateSection inserts a deep copy immediately after the original.
// Settings are copied by value, so edits to the duplicate never leak into the
// original. The copy gets new ids for the section and all of its blocks.
func DuplicateSection(sections Sections, id string) Sections {
	next := sections.Clone()
	i := next.IndexOf(id)
	if i < 0 {
		return next
	}

	dup := next[i].Clone()
	dup.ID = uuid.New().String()
	for j := range dup.Blocks {
		dup.Blocks[j].ID = uuid.New().String()
	}

	next = append(next, Section{})
	copy(next[i+2:], next[i+1:])
	next[i+1] = dup

	return next
}

// Reorder moves the section identified by fromID to the position immediately
// before (or after) the section identified by toID. Self-moves and missing ids
// are no-ops.
func Reorder(sections Sections, fromID, toID string, before bool) Sections {
	next := sections.Clone()
	if fromID == toID {
		return next
	}

	from := next.IndexOf(fromID)
	if from < 0 || next.IndexOf(toID) < 0 {
		return next
	}

	moved := next[from]
	next = append(next[:from], next[from+1:]...)

	// target index is resolved after removal so a forward move lands right
	to := next.IndexOf(toID)
	if !before {
		to++
	}

	next = append(next, Section{})
	copy(next[to+1:], next[to:])
	next[to] = moved

	return next
}

// Copy produces a detached deep copy of the named sections, preserving their
// relative document order. Ids are stripped; paste regenerates them.
func Copy(sections Sections, ids []string) Clipboard {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	clipboard := make(Clipboard, 0, len(ids))
	for _, section := range sections {
		if !wanted[section.ID] {
			continue
		}

		entry := section.Clone()
		entry.ID = ""
		for j := range entry.Blocks {
			entry.Blocks[j].ID = ""
		}
		clipboard = append(clipboard, entry)
	}

	return clipboard
}

// Paste appends the clipboard entries with freshly generated ids.
func Paste(sections Sections, clipboard Clipboard) Sections {
	next := sections.Clone()
	for _, entry := range clipboard {
		section := entry.Clone()
		section.ID = uuid.New().String()
		for j := range section.Blocks {
			section.Blocks[j].ID = uuid.New().String()
		}
		next = append(next, section)
	}

	return next
}

// DeleteMany removes every named section. Observably equivalent to deleting
// one by one; the session records a single history entry for the batch.
func DeleteMany(sections Sections, ids []string) Sections {
	next := sections
	for _, id := range ids {
		next = DeleteSection(next, id)
	}

	return next.Clone()
}

// SetHiddenMany sets the soft-delete flag on every named section.
func SetHiddenMany(sections Sections, ids []string, hidden bool) Sections {
	next := sections
	for _, id := range ids {
		next = UpdateSection(next, id, Settings{hiddenKey: hidden})
	}

	return next.Clone()
}
