package shapelint

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const shapePkg = "github.com/deepankarm/structstream/pkg/structstream/shape"

// Analyzer reports shape declarations that would panic or misbehave at
// runtime: duplicate or empty field names in shape.Object and empty or
// duplicate values in shape.Enum.
var Analyzer = &analysis.Analyzer{
	Name:     "shapelint",
	Doc:      "checks shape.Object and shape.Enum declarations for duplicate and empty names",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	nolint := nolintLines(pass)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		// Calls like Enum(values...) cannot be checked statically
		if call.Ellipsis.IsValid() {
			return
		}

		switch shapeFunc(pass, call) {
		case "Object":
			if nolint[lineOf(pass, call.Pos())] {
				return
			}
			checkObject(pass, call)
		case "Enum":
			if nolint[lineOf(pass, call.Pos())] {
				return
			}
			checkEnum(pass, call)
		}
	})

	return nil, nil
}

// checkObject reports field names declared more than once and empty names.
func checkObject(pass *analysis.Pass, call *ast.CallExpr) {
	seen := make(map[string]bool)
	for _, arg := range call.Args {
		field, ok := ast.Unparen(arg).(*ast.CallExpr)
		if !ok || shapeFunc(pass, field) != "Field" || len(field.Args) == 0 {
			continue
		}

		name, ok := stringConstant(pass, field.Args[0])
		if !ok {
			continue
		}
		if name == "" {
			pass.Reportf(field.Args[0].Pos(), "shape.Field has an empty name")
			continue
		}
		if seen[name] {
			pass.Reportf(field.Args[0].Pos(), "duplicate field %q in shape.Object", name)
			continue
		}
		seen[name] = true
	}
}

// checkEnum reports an Enum without values and values declared more than once.
func checkEnum(pass *analysis.Pass, call *ast.CallExpr) {
	if len(call.Args) == 0 {
		pass.Reportf(call.Pos(), "shape.Enum requires at least one value")
		return
	}

	seen := make(map[string]bool)
	for _, arg := range call.Args {
		value, ok := stringConstant(pass, arg)
		if !ok {
			continue
		}
		if seen[value] {
			pass.Reportf(arg.Pos(), "duplicate enum value %q in shape.Enum", value)
			continue
		}
		seen[value] = true
	}
}

// shapeFunc returns the name of the shape package function call invokes,
// or "" if it calls something else.
func shapeFunc(pass *analysis.Pass, call *ast.CallExpr) string {
	var ident *ast.Ident
	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.SelectorExpr:
		ident = fun.Sel
	case *ast.Ident:
		ident = fun
	default:
		return ""
	}

	fn, ok := pass.TypesInfo.Uses[ident].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != shapePkg {
		return ""
	}
	// Methods such as (*Shape).Describe are not constructors
	if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
		return ""
	}
	return fn.Name()
}

// stringConstant returns the value of expr if it is a constant string.
func stringConstant(pass *analysis.Pass, expr ast.Expr) (string, bool) {
	tv, ok := pass.TypesInfo.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}
	return constant.StringVal(tv.Value), true
}

type fileLine struct {
	file string
	line int
}

func lineOf(pass *analysis.Pass, pos token.Pos) fileLine {
	p := pass.Fset.Position(pos)
	return fileLine{p.Filename, p.Line}
}

// nolintLines collects the lines carrying a nolint:shapelint directive. A
// directive applies to its own line and the line below it.
func nolintLines(pass *analysis.Pass) map[fileLine]bool {
	lines := make(map[fileLine]bool)
	for _, file := range pass.Files {
		for _, group := range file.Comments {
			for _, c := range group.List {
				if !strings.Contains(c.Text, "nolint:shapelint") && !strings.Contains(c.Text, "nolint:all") {
					continue
				}
				at := lineOf(pass, c.Pos())
				lines[at] = true
				lines[fileLine{at.file, at.line + 1}] = true
			}
		}
	}
	return lines
}
