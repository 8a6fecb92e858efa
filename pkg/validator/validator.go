// Package validator checks generated declaration files.
//
// The Checker interface is the compile-check collaborator of the generator
// CLI. SyntaxChecker implements it with a tree-sitter parse of the main file
// and its dependency files: it reports syntax errors and, across all files,
// duplicate ambient modules and imports of modules no file declares.
package validator

import (
	"context"
	"fmt"
	"strings"
)

// Severity levels of a Violation.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names of a Violation.
const (
	RuleSyntax            = "syntax"
	RuleMissingToken      = "missing-token"
	RuleDuplicateModule   = "duplicate-module"
	RuleUnresolvedImport  = "unresolved-import"
	RuleUnreadableFile    = "unreadable-file"
	RuleEmptyDeclarations = "empty-declarations"
)

// CheckRequest names the files of one check.
type CheckRequest struct {
	// MainFile is the declaration file under test.
	MainFile string
	// DependencyFiles are the declaration files of the libraries MainFile
	// depends on. Imports of their modules resolve.
	DependencyFiles []string
	// TSOptions are compiler options for checkers that run tsc. The syntax
	// checker ignores them.
	TSOptions map[string]any
	// ErrorOutputFile receives the human-readable report when set.
	ErrorOutputFile string
}

// CheckResult is the outcome of a check.
type CheckResult struct {
	// Success is false when any violation has error severity.
	Success    bool
	Violations []Violation
	// Report is the human-readable form of Violations.
	Report string
}

// Violation represents a single problem found in a file.
type Violation struct {
	File       string
	Rule       string
	Message    string
	Severity   string // "error", "warning"
	Line       int
	Column     int
	Suggestion string
}

// String formats v as file:line:col: severity: message [rule].
func (v Violation) String() string {
	var b strings.Builder
	b.WriteString(v.File)
	if v.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", v.Line, v.Column)
	}
	fmt.Fprintf(&b, ": %s: %s [%s]", v.Severity, v.Message, v.Rule)
	if v.Suggestion != "" {
		b.WriteString("\n    hint: ")
		b.WriteString(v.Suggestion)
	}
	return b.String()
}

// Checker verifies declaration files.
type Checker interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

// newResult derives Success and Report from violations.
func newResult(violations []Violation) *CheckResult {
	res := &CheckResult{Success: true, Violations: violations}
	errs, warnings := 0, 0
	var b strings.Builder
	for _, v := range violations {
		if v.Severity == SeverityError {
			res.Success = false
			errs++
		} else {
			warnings++
		}
		b.WriteString(v.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s)\n", errs, warnings)
	res.Report = b.String()
	return res
}
