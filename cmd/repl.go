package cmd

import (
	"ablac/ast"
	"ablac/build"
	"ablac/common"
	"ablac/depm"
	"ablac/report"
	"ablac/typing"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

// Repl is an interactive session.  Declarations entered into the session are
// kept and every other input is executed at compile time against them.
type Repl struct {
	ann *depm.Annotations
	svc *build.CompileService

	// decls are the declarations entered so far in source order.
	decls []string

	// counter numbers the functions wrapping evaluated expressions.
	counter int
}

// NewRepl creates a new, empty session.
func NewRepl() *Repl {
	ann := depm.NewAnnotations()

	return &Repl{
		ann: ann,
		svc: newCompileService(ann),
	}
}

// declPrefixes are the tokens which start a declaration.
var declPrefixes = []string{"fun", "class", "extern", "compiler"}

// isDecl returns whether an input line is a declaration.  Top level compiler
// calls count as declarations.
func isDecl(input string) bool {
	if strings.HasPrefix(input, "#") {
		return true
	}

	for _, prefix := range declPrefixes {
		if rest := strings.TrimPrefix(input, prefix); rest != input {
			if rest == "" || !isIdentChar(rest[0]) {
				return true
			}
		}
	}

	return false
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Eval evaluates one input.  Declarations are added to the session and
// produce no output.  Expressions produce their value.
func (r *Repl) Eval(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if isDecl(input) {
		if _, err := r.svc.CompileSource(ctx, r.session(input), false, nil); err != nil {
			return "", err
		}

		r.decls = append(r.decls, input)
		return "", nil
	}

	funcName := fmt.Sprintf("__repl%d", r.counter)
	r.counter++

	name, err := r.svc.CompileSource(ctx, r.session(fmt.Sprintf("fun %s() { #(%s) }", funcName, input)), false, nil)
	if err != nil {
		return "", err
	}

	cu, ok := r.svc.Unit(name)
	if !ok {
		return "", fmt.Errorf("unit `%s` was not installed", name)
	}

	node := findReplExec(cu.File, funcName)
	if node == nil {
		return "", fmt.Errorf("no function `%s` in unit `%s`", funcName, name)
	}

	cv, ok := r.ann.Consts.Get(node)
	if !ok {
		return "", fmt.Errorf("expression produced no value")
	}

	return formatConst(cv), nil
}

// session returns the source of the session followed by an input.
func (r *Repl) session(input string) string {
	return strings.Join(append(r.decls[:len(r.decls):len(r.decls)], input), "\n")
}

// findReplExec returns the compiler expression wrapped by a function.
func findReplExec(file *ast.File, funcName string) ast.ASTNode {
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name == funcName {
			return fd.Body.Stmts[0].(*ast.ExprStmt).Expr
		}
	}

	return nil
}

// formatConst formats a constant the way it would be written in source.
func formatConst(cv depm.ConstValue) string {
	switch cv.Type {
	case typing.PrimString:
		return strconv.Quote(cv.Str)
	case typing.PrimBool:
		return strconv.FormatBool(cv.Int != 0)
	default:
		return strconv.FormatInt(cv.Int, 10)
	}
}

// Run runs the session on the terminal until the user quits.
func (r *Repl) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	report.DisplayInfoMessage("Abla REPL", "v"+common.AblaVersion+" (enter :quit to exit)")

	for {
		input, err := line.Prompt("abla> ")
		if err != nil {
			// EOF or Ctrl-C
			return
		}

		if strings.TrimSpace(input) == ":quit" {
			return
		}

		line.AppendHistory(input)

		out, err := r.Eval(context.Background(), input)
		if err != nil {
			reportErrors(err)
		} else if out != "" {
			fmt.Println(out)
		}
	}
}
