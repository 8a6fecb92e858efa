package jsonfix

import (
	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"

	"github.com/gnana997/ui5dts/pkg/apijson"
)

// memberLists are the symbol members merged by name and static flag instead
// of being replaced wholesale.
var memberLists = map[string]bool{
	"properties": true,
	"methods":    true,
	"events":     true,
}

// MergeOverlays deep-merges directive overlays into the symbols they name.
// Overlays without a matching symbol are appended as new symbols. A null
// overlay value deletes the member.
func MergeOverlays(doc *apijson.Document, overlays []map[string]any) error {
	if len(overlays) == 0 {
		return nil
	}
	positions := make(map[string]int, len(doc.Symbols))
	for i, sym := range doc.Symbols {
		positions[sym.Name] = i
	}

	for _, overlay := range overlays {
		name, _ := overlay["name"].(string)
		if name == "" {
			return errors.Newf("overlay without a name: %v", overlay)
		}

		pos, found := positions[name]
		base := map[string]any{}
		if found {
			var err error
			if base, err = toMap(doc.Symbols[pos]); err != nil {
				return errors.Wrapf(err, "overlay %s", name)
			}
		}
		mergeMaps(base, overlay)

		merged, err := fromMap(base)
		if err != nil {
			return errors.Wrapf(err, "overlay %s", name)
		}
		if found {
			doc.Symbols[pos] = merged
		} else {
			positions[name] = len(doc.Symbols)
			doc.Symbols = append(doc.Symbols, merged)
		}
	}
	return nil
}

func toMap(sym *apijson.Symbol) (map[string]any, error) {
	data, err := json.Marshal(sym)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (*apijson.Symbol, error) {
	data, err := json.Marshal(m, json.Deterministic(true))
	if err != nil {
		return nil, err
	}
	var sym apijson.Symbol
	if err := json.Unmarshal(data, &sym); err != nil {
		return nil, err
	}
	return &sym, nil
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		if value == nil {
			delete(dst, key)
			continue
		}
		if memberLists[key] {
			if dstList, ok := dst[key].([]any); ok {
				if srcList, ok := value.([]any); ok {
					dst[key] = mergeMembers(dstList, srcList)
					continue
				}
			}
		}
		if dstMap, ok := dst[key].(map[string]any); ok {
			if srcMap, ok := value.(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[key] = value
	}
}

// mergeMembers merges overlay members into members with the same name and
// static flag, appending the rest.
func mergeMembers(dst, src []any) []any {
	for _, item := range src {
		overlay, ok := item.(map[string]any)
		if !ok {
			continue
		}
		matched := false
		for _, existing := range dst {
			member, ok := existing.(map[string]any)
			if ok && sameMember(member, overlay) {
				mergeMaps(member, overlay)
				matched = true
				break
			}
		}
		if !matched {
			dst = append(dst, overlay)
		}
	}
	return dst
}

func sameMember(a, b map[string]any) bool {
	static := func(m map[string]any) bool {
		v, _ := m["static"].(bool)
		return v
	}
	return a["name"] == b["name"] && static(a) == static(b)
}
