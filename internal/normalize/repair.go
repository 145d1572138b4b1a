package normalize

import (
	"sort"
	"strings"
)

// Shape repairs for the documentation outline. The list is closed and
// explicit: repairs run in fixed order, and a value that still lacks the
// required fields afterwards is a parse failure. New synonyms are added to
// the tables, never to control flow.

// wrapperKeys are root keys the model is known to wrap the outline under.
var wrapperKeys = map[string]bool{
	"plan":               true,
	"documentation_plan": true,
	"outline":            true,
	"document":           true,
}

// titleSynonyms and sectionSynonyms map alternate field names the model
// emits onto the canonical ones.
var titleSynonyms = []string{"document_title", "doc_title", "name"}
var sectionSynonyms = []string{"outline", "chapters", "parts", "entries"}

// repair is one (predicate, transform) pair.
type repair struct {
	name    string
	applies func(map[string]any) bool
	apply   func(map[string]any) map[string]any
}

// outlineRepairs is the ordered repair table applied after a successful
// parse. Unwrap must run before the rename repairs so synonyms inside a
// wrapper are still found.
var outlineRepairs = []repair{
	{
		name: "unwrap-wrapper",
		applies: func(m map[string]any) bool {
			if len(m) != 1 {
				return false
			}
			for k, v := range m {
				if _, isObj := v.(map[string]any); isObj && wrapperKeys[k] {
					return true
				}
			}
			return false
		},
		apply: func(m map[string]any) map[string]any {
			for _, v := range m {
				return v.(map[string]any)
			}
			return m
		},
	},
	{
		name: "rename-title",
		applies: func(m map[string]any) bool {
			if _, ok := m["title"]; ok {
				return false
			}
			return hasAnyKey(m, titleSynonyms)
		},
		apply: func(m map[string]any) map[string]any {
			return renameFirst(m, titleSynonyms, "title")
		},
	},
	{
		name: "rename-sections",
		applies: func(m map[string]any) bool {
			if _, ok := m["sections"]; ok {
				return false
			}
			return hasAnyKey(m, sectionSynonyms)
		},
		apply: func(m map[string]any) map[string]any {
			return renameFirst(m, sectionSynonyms, "sections")
		},
	},
}

func hasAnyKey(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func renameFirst(m map[string]any, from []string, to string) map[string]any {
	for _, k := range from {
		if v, ok := m[k]; ok {
			m[to] = v
			delete(m, k)
			return m
		}
	}
	return m
}

// RepairOutline applies the ordered repair table to a parsed value and
// verifies the canonical outline fields are present. The input map may be
// mutated.
func RepairOutline(obj map[string]any) (map[string]any, error) {
	for _, r := range outlineRepairs {
		if r.applies(obj) {
			obj = r.apply(obj)
		}
	}

	if _, ok := obj["title"]; !ok {
		return nil, newParseError(shapeKeys(obj), errMissingField("title"))
	}
	if _, ok := obj["sections"]; !ok {
		return nil, newParseError(shapeKeys(obj), errMissingField("sections"))
	}
	return obj, nil
}

// ExtractOutline is the full path raw text takes to a canonical outline:
// fence strip, JSON parse, shape repair.
func ExtractOutline(raw string) (map[string]any, error) {
	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	return RepairOutline(obj)
}

type errMissingField string

func (e errMissingField) Error() string {
	return "missing required field " + string(e) + " after repairs"
}

func shapeKeys(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "keys: " + strings.Join(keys, ",")
}
