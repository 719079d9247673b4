package processors

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/taskdeck/taskdeck-api/internal/task"
)

// SourceOutlineType is the registered name of the Go source outline processor.
const SourceOutlineType = "source_outline"

// SourceOutline returns a provider that parses Go source text and reports the
// functions, methods and type declarations it finds, with line numbers. A
// payload that does not parse is not an execution failure; the parse error is
// reported back to the caller as the task result.
func SourceOutline() task.Provider {
	return task.NewProvider(SourceOutlineType, outlineSource)
}

func outlineSource(ctx context.Context, input string) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "input.go", input, parser.ParseComments)
	if err != nil {
		return fmt.Sprintf("Failed to parse source: %v", err), nil
	}

	var report []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			line := fset.Position(d.Pos()).Line
			if d.Recv != nil && len(d.Recv.List) > 0 {
				recv := receiverType(d.Recv.List[0].Type)
				report = append(report, fmt.Sprintf("Method: (%s) %s (line %d)", recv, d.Name.Name, line))
			} else {
				report = append(report, fmt.Sprintf("Function: %s (line %d)", d.Name.Name, line))
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				line := fset.Position(ts.Pos()).Line
				report = append(report, fmt.Sprintf("Type: %s (line %d)", ts.Name.Name, line))
			}
		}
	}

	if len(report) == 0 {
		return "No functions or types found.", nil
	}
	return "```\n" + strings.Join(report, "\n") + "\n```", nil
}

// receiverType renders a method receiver as it appears in source, without the
// parameter name. Handles value, pointer and generic receivers.
func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	default:
		return "?"
	}
}
