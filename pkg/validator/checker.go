package validator

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/ui5dts/pkg/parser"
	"github.com/gnana997/ui5dts/pkg/util"
)

// SyntaxChecker checks declaration files with the tree-sitter TypeScript
// grammar. It catches malformed output, not type errors.
//
// **Thread Safety:** safe for concurrent use. Files of one request are parsed
// in parallel on the shared parser pool.
type SyntaxChecker struct {
	parsers *parser.ParserManager
	logger  *slog.Logger
}

var _ Checker = (*SyntaxChecker)(nil)

// NewSyntaxChecker creates a checker that parses with parsers.
func NewSyntaxChecker(parsers *parser.ParserManager, logger *slog.Logger) *SyntaxChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyntaxChecker{parsers: parsers, logger: logger}
}

// Check parses the main file and every dependency file. Errors are returned
// only for failures of the checker itself; problems in the files are
// violations.
func (c *SyntaxChecker) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if req.MainFile == "" {
		return nil, errors.New("check request without main file")
	}
	if len(req.TSOptions) > 0 {
		c.logger.Debug("compiler options are ignored by the syntax checker", "options", len(req.TSOptions))
	}

	files := append([]string{req.MainFile}, req.DependencyFiles...)
	summaries := make([]*FileSummary, len(files))
	violations := make([][]Violation, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(util.GetOptimalPoolSize())
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary, vs, err := c.checkFile(file)
			if err != nil {
				return err
			}
			summaries[i], violations[i] = summary, vs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Violation
	for _, vs := range violations {
		all = append(all, vs...)
	}
	if main := summaries[0]; main != nil && len(main.Modules) == 0 && len(main.Namespaces) == 0 {
		all = append(all, Violation{
			File:     req.MainFile,
			Rule:     RuleEmptyDeclarations,
			Message:  "file declares no module and no namespace",
			Severity: SeverityWarning,
		})
	}
	all = append(all, crossFileViolations(files, summaries, len(req.DependencyFiles) > 0)...)

	res := newResult(all)
	c.logger.Info("checked declarations",
		"file", req.MainFile,
		"dependencies", len(req.DependencyFiles),
		"violations", len(all),
		"success", res.Success)

	if req.ErrorOutputFile != "" {
		if err := os.WriteFile(req.ErrorOutputFile, []byte(res.Report), 0o644); err != nil {
			return res, errors.Wrapf(err, "writing check report to %s", req.ErrorOutputFile)
		}
	}
	return res, nil
}

// checkFile parses one file. An unreadable file is a violation, not an error.
func (c *SyntaxChecker) checkFile(file string) (*FileSummary, []Violation, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, []Violation{{
			File:       file,
			Rule:       RuleUnreadableFile,
			Message:    err.Error(),
			Severity:   SeverityError,
			Suggestion: "generate the library first or fix the path",
		}}, nil
	}

	tree, err := c.parsers.Parse(source)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", file)
	}
	defer tree.Close()

	summary := Summarize(tree, source)
	vs := make([]Violation, 0, len(summary.syntax))
	for _, v := range summary.syntax {
		v.File = file
		vs = append(vs, v)
	}
	c.logger.Debug("parsed declaration file",
		"file", file,
		"lines", summary.LineCount,
		"modules", len(summary.Modules),
		"syntax_errors", len(vs))
	return summary, vs, nil
}

// crossFileViolations reports modules declared more than once and, when
// resolveImports is set, imports of UI5 modules no file declares.
func crossFileViolations(files []string, summaries []*FileSummary, resolveImports bool) []Violation {
	declared := make(map[string]string)
	var out []Violation
	for i, s := range summaries {
		if s == nil {
			continue
		}
		for _, m := range s.Modules {
			if first, ok := declared[m.Name]; ok {
				out = append(out, Violation{
					File:     files[i],
					Rule:     RuleDuplicateModule,
					Message:  "module \"" + m.Name + "\" is also declared in " + first,
					Severity: SeverityWarning,
					Line:     m.Line,
					Column:   1,
				})
				continue
			}
			declared[m.Name] = files[i]
		}
	}
	if !resolveImports {
		return out
	}

	s := summaries[0]
	if s == nil {
		return out
	}
	for _, m := range s.Modules {
		for _, imp := range m.Imports {
			// Bare specifiers such as "jquery" belong to other packages.
			if !strings.Contains(imp.Source, "/") {
				continue
			}
			if _, ok := declared[imp.Source]; ok {
				continue
			}
			out = append(out, Violation{
				File:       files[0],
				Rule:       RuleUnresolvedImport,
				Message:    "module \"" + m.Name + "\" imports undeclared module \"" + imp.Source + "\"",
				Severity:   SeverityWarning,
				Line:       imp.Line,
				Column:     1,
				Suggestion: "add the declaration file of the library owning \"" + imp.Source + "\" as a dependency",
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}
