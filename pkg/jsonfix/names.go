package jsonfix

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const modulePrefix = "module:"

// parentName returns the dotted prefix of a name ("sap.m" for "sap.m.Button").
func parentName(name string) string {
	if strings.HasPrefix(name, modulePrefix) {
		return ""
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// baseName returns the last segment of a dotted or module name.
func baseName(name string) string {
	name = strings.TrimPrefix(name, modulePrefix)
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// isLibraryModule reports whether a module is a library's entry module.
func isLibraryModule(module string) bool {
	return module == "library" || strings.HasSuffix(module, "/library")
}

// settingsName is the name of the constructor settings interface of a class.
func settingsName(class string) string {
	return join(parentName(class), "$"+baseName(class)+"Settings")
}

// eventParametersName is the name of the parameters interface of an event.
func eventParametersName(class, event string) string {
	return class + "$" + capitalize(event) + "EventParameters"
}

// eventName is the name of the event typedef of an event.
func eventName(class, event string) string {
	return class + "$" + capitalize(event) + "Event"
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
