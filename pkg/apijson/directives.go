package apijson

import (
	"maps"
)

// Directives steer generation for a set of libraries. They are read from
// .dtsgenrc files and merged before a generation run; a run treats them as
// immutable.
type Directives struct {
	// BadSymbols lists symbol names (or name prefixes ending in ".*") that are
	// dropped entirely.
	BadSymbols []string `json:"badSymbols,omitempty"`
	// BadMethods lists "Class#method" / "Class.method" entries that are dropped.
	BadMethods []string `json:"badMethods,omitempty"`
	// BadInterfaces lists interface names removed from implements clauses.
	BadInterfaces []string `json:"badInterfaces,omitempty"`
	// TypeTyposMap corrects misspelled type names.
	TypeTyposMap map[string]string `json:"typeTyposMap,omitempty"`
	// NamespacesToInterfaces maps namespace names to true (convert into an
	// interface) or any other truthy value (convert into a static object).
	NamespacesToInterfaces map[string]any `json:"namespacesToInterfaces,omitempty"`
	// ForwardDeclarations maps a library name to stub symbols injected into
	// that library's document.
	ForwardDeclarations map[string][]*Symbol `json:"forwardDeclarations,omitempty"`
	// FQNToIgnore maps names to a reason; the declaration gets a @ts-ignore.
	FQNToIgnore map[string]string `json:"fqnToIgnore,omitempty"`
	// Overlays maps a library name to partial symbols merged into its document.
	Overlays map[string][]map[string]any `json:"overlays,omitempty"`
	// DeprecatedEnumAliases maps an alias enum name to the enum it aliases.
	DeprecatedEnumAliases map[string]string `json:"deprecatedEnumAliases,omitempty"`
}

// NamespaceConversion is the target of a namespacesToInterfaces entry.
type NamespaceConversion int

const (
	ConvertNone NamespaceConversion = iota
	ConvertToInterface
	ConvertToObject
)

// NamespaceConversionFor looks up how a namespace is to be converted.
func (d *Directives) NamespaceConversionFor(name string) NamespaceConversion {
	if d == nil {
		return ConvertNone
	}
	v, ok := d.NamespacesToInterfaces[name]
	if !ok || v == nil {
		return ConvertNone
	}
	switch val := v.(type) {
	case bool:
		if val {
			return ConvertToInterface
		}
		return ConvertNone
	case string:
		if val == "" {
			return ConvertNone
		}
	case float64:
		if val == 0 {
			return ConvertNone
		}
	}
	return ConvertToObject
}

// MergeDirectives combines directive sets in order: arrays are concatenated,
// maps are merged per key with later values winning.
func MergeDirectives(all ...*Directives) *Directives {
	out := &Directives{
		TypeTyposMap:           map[string]string{},
		NamespacesToInterfaces: map[string]any{},
		ForwardDeclarations:    map[string][]*Symbol{},
		FQNToIgnore:            map[string]string{},
		Overlays:               map[string][]map[string]any{},
		DeprecatedEnumAliases:  map[string]string{},
	}
	for _, d := range all {
		if d == nil {
			continue
		}
		out.BadSymbols = append(out.BadSymbols, d.BadSymbols...)
		out.BadMethods = append(out.BadMethods, d.BadMethods...)
		out.BadInterfaces = append(out.BadInterfaces, d.BadInterfaces...)
		maps.Copy(out.TypeTyposMap, d.TypeTyposMap)
		maps.Copy(out.NamespacesToInterfaces, d.NamespacesToInterfaces)
		maps.Copy(out.ForwardDeclarations, d.ForwardDeclarations)
		maps.Copy(out.FQNToIgnore, d.FQNToIgnore)
		maps.Copy(out.Overlays, d.Overlays)
		maps.Copy(out.DeprecatedEnumAliases, d.DeprecatedEnumAliases)
	}
	return out
}
