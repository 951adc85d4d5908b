package ingest

import (
	"regexp"
	"strings"
)

// MixEntry links a mix design / job name to its project code and display
// name, scoped to the tenant alias the reference sheet row carried.
type MixEntry struct {
	Code        string
	ProjectName string
	MixName     string
	AliasID     string
	AliasName   string
}

// MixReference holds the two lookup tables built from the reference sheet:
// project code → project name, and normalized mix name → entry. Keys carry
// the alias scope so two tenants can reuse the same mix name.
type MixReference struct {
	codeToProject map[string]string
	mixToEntry    map[string]MixEntry
	Entries       []MixEntry
}

var mixNamePunct = regexp.MustCompile(`[()\[\]{}.,:;'"#*]`)
var mixNameSeparators = regexp.MustCompile(`[\s\-_]+`)

// NormalizeMixName canonicalizes a mix/job name for lookup: lowercase, strip
// brackets and punctuation, collapse whitespace/hyphen/underscore runs, then
// uppercase the result.
func NormalizeMixName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = mixNamePunct.ReplaceAllString(s, "")
	s = mixNameSeparators.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

func scopeKey(aliasID, aliasName string) string {
	if aliasID != "" {
		return strings.ToLower(aliasID)
	}
	return strings.ToLower(strings.TrimSpace(aliasName))
}

// BuildMixReference builds the lookup tables from a resolved reference sheet.
// First write wins on duplicate keys within one import batch. A nil table
// yields an empty, usable reference.
func BuildMixReference(t *SheetTable) *MixReference {
	ref := &MixReference{
		codeToProject: make(map[string]string),
		mixToEntry:    make(map[string]MixEntry),
	}
	if t == nil {
		return ref
	}
	for _, row := range t.DataRows {
		entry := MixEntry{
			Code:        strings.ToUpper(t.Cell(row, FieldProjectCode)),
			ProjectName: t.Cell(row, FieldProjectName),
			MixName:     t.Cell(row, FieldMixName),
			AliasID:     t.Cell(row, FieldAliasID),
			AliasName:   t.Cell(row, FieldAliasName),
		}
		if entry.Code == "" && entry.MixName == "" {
			continue
		}
		ref.Entries = append(ref.Entries, entry)
		scope := scopeKey(entry.AliasID, entry.AliasName)
		if entry.Code != "" {
			key := scope + "|" + entry.Code
			if _, seen := ref.codeToProject[key]; !seen {
				ref.codeToProject[key] = entry.ProjectName
			}
		}
		if entry.MixName != "" {
			key := scope + "|" + NormalizeMixName(entry.MixName)
			if _, seen := ref.mixToEntry[key]; !seen {
				ref.mixToEntry[key] = entry
			}
		}
	}
	return ref
}

// ProjectName resolves a project code to its display name, preferring the
// row's alias scope and falling back to the unscoped table.
func (r *MixReference) ProjectName(aliasID, aliasName, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if name, ok := r.codeToProject[scopeKey(aliasID, aliasName)+"|"+code]; ok {
		return name
	}
	if name, ok := r.codeToProject["|"+code]; ok {
		return name
	}
	return ""
}

// ByMixName resolves a raw mix/job name to its entry.
func (r *MixReference) ByMixName(aliasID, aliasName, mixName string) (MixEntry, bool) {
	norm := NormalizeMixName(mixName)
	if norm == "" {
		return MixEntry{}, false
	}
	if e, ok := r.mixToEntry[scopeKey(aliasID, aliasName)+"|"+norm]; ok {
		return e, true
	}
	e, ok := r.mixToEntry["|"+norm]
	return e, ok
}
