package types

import "strings"

// Well-known wrap keys.
const (
	WrapKeyPatchDirectory = "patch_directory"
	WrapKeyDirectory      = "directory"
	WrapKeyWrapdbVersion  = "wrapdb_version"
	WrapKeyPatchURL       = "patch_url"
	WrapKeyPatchHash      = "patch_hash"
	WrapKeyPatchFilename  = "patch_filename"
)

// WrapLine is one logical line of a wrap file. Raw holds the original
// text (continuation lines included, newline separated) and is emitted
// verbatim unless the entry was modified.
type WrapLine struct {
	Raw   string
	Key   string
	Value string
	Dirty bool
}

func (l WrapLine) IsEntry() bool {
	return l.Key != ""
}

// Render returns the text of the line as it should be written.
func (l WrapLine) Render() string {
	if !l.Dirty {
		return l.Raw
	}
	value := strings.ReplaceAll(l.Value, "\n", "\n\t")
	return l.Key + " = " + value
}

type WrapSection struct {
	Name   string
	Header string
	Lines  []WrapLine
}

// WrapMetadata is a parsed wrap file. Field operations address the
// first section; any further sections are carried through untouched.
// CRLF is set when the source used CRLF line endings; modified lines are
// written with the same ending.
type WrapMetadata struct {
	Package         string
	Preamble        []WrapLine
	Sections        []WrapSection
	TrailingNewline bool
	CRLF            bool
}

func (w *WrapMetadata) primary() *WrapSection {
	if len(w.Sections) == 0 {
		w.Sections = append(w.Sections, WrapSection{Name: "wrap-file", Header: "[wrap-file]"})
	}
	return &w.Sections[0]
}

// SectionName returns the name of the section field operations apply to.
func (w *WrapMetadata) SectionName() string {
	return w.primary().Name
}

func (w *WrapMetadata) Get(key string) (string, bool) {
	for _, line := range w.primary().Lines {
		if line.Key == key {
			return line.Value, true
		}
	}
	return "", false
}

// Keys lists the primary section keys in document order.
func (w *WrapMetadata) Keys() []string {
	var keys []string
	for _, line := range w.primary().Lines {
		if line.IsEntry() {
			keys = append(keys, line.Key)
		}
	}
	return keys
}

// Set overwrites key in place or appends it after the last entry of
// the primary section.
func (w *WrapMetadata) Set(key string, value string) {
	section := w.primary()
	last := -1
	for i := range section.Lines {
		if section.Lines[i].Key == key {
			section.Lines[i].Value = value
			section.Lines[i].Dirty = true
			return
		}
		if section.Lines[i].IsEntry() {
			last = i
		}
	}
	line := WrapLine{Key: key, Value: value, Dirty: true}
	at := last + 1
	section.Lines = append(section.Lines, WrapLine{})
	copy(section.Lines[at+1:], section.Lines[at:])
	section.Lines[at] = line
}

// Remove deletes key from the primary section. Missing keys are ignored.
func (w *WrapMetadata) Remove(key string) {
	section := w.primary()
	for i := range section.Lines {
		if section.Lines[i].Key == key {
			section.Lines = append(section.Lines[:i], section.Lines[i+1:]...)
			return
		}
	}
}
