package astbuild

import "strings"

const modulePrefix = "module:"

// knownGlobalPrefixes are roots of ambient declarations from other typings
// that references may use without a matching symbol.
var knownGlobalPrefixes = []string{"jQuery", "JQuery", "QUnit", "sinon", "Intl", "globalThis", "NodeJS"}

func parentName(name string) string {
	if strings.HasPrefix(name, modulePrefix) {
		return ""
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

func baseName(name string) string {
	name = strings.TrimPrefix(name, modulePrefix)
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isLibraryModule(module string) bool {
	return module == "library" || strings.HasSuffix(module, "/library")
}

// needsResolution reports whether a type name refers to an api.json symbol
// rather than a TypeScript built-in or a type parameter.
func needsResolution(name string) bool {
	return strings.Contains(name, ".") || strings.HasPrefix(name, modulePrefix)
}

func isKnownGlobal(name string) bool {
	first, _, _ := strings.Cut(name, ".")
	for _, prefix := range knownGlobalPrefixes {
		if first == prefix {
			return true
		}
	}
	return false
}
