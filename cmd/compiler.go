package cmd

import (
	"ablac/ast"
	"ablac/build"
	"ablac/common"
	"ablac/depm"
	"ablac/eval"
	"ablac/generate"
	"ablac/report"
	"ablac/syntax"
	"ablac/walk"
	"context"
)

// Compiler represents the state of one build.
type Compiler struct {
	// profile is the build profile of the compiler.
	profile *BuildProfile

	// ann holds the annotations of every unit compiled by the service.
	ann *depm.Annotations

	// svc is the compile service the units are compiled by.
	svc *build.CompileService
}

// NewCompiler creates a new compiler for the given profile.
func NewCompiler(profile *BuildProfile) *Compiler {
	ann := depm.NewAnnotations()

	return &Compiler{
		profile: profile,
		ann:     ann,
		svc:     newCompileService(ann),
	}
}

// newCompileService creates a compile service running the default phases:
// parsing, type gathering and compile-time execution.
func newCompileService(ann *depm.Annotations) *build.CompileService {
	return build.NewCompileService(syntax.NewFileParser(&ast.IDSource{}), walk.NewGatherer(ann), eval.New(ann))
}

// Compile runs the whole build.  It returns whether the build succeeded.
func (c *Compiler) Compile(ctx context.Context) bool {
	report.ReportCompileHeader(common.AblaVersion, c.profile.ProjectName)

	units, ok := c.Analyze(ctx)
	if ok {
		ok = c.Generate(units)
	}

	report.ReportCompilationFinished(len(units))
	return ok && !report.AnyErrors()
}

// Analyze compiles the entry units and everything they import.  It returns the
// compiled units sorted by name and whether analysis succeeded.
func (c *Compiler) Analyze(ctx context.Context) ([]*build.CompilationUnit, bool) {
	// unit errors are collected and reported once the service is drained
	for _, entry := range c.profile.Entries {
		c.svc.CompileFile(ctx, entry, c.profile.Parallel, nil)
	}

	if _, err := c.svc.Drain(); err != nil {
		reportErrors(err)
		return c.svc.Units(), false
	}

	return c.svc.Units(), true
}

// Generate generates the LLVM module for the compiled units and emits the
// build output.  It returns whether generation succeeded.
func (c *Compiler) Generate(units []*build.CompilationUnit) bool {
	prog := generate.NewProgram(c.ann)

	ok := true
	for _, cu := range units {
		if err := prog.DeclareUnit(cu.File); err != nil {
			report.ReportCompileError(err)
			ok = false
		}
	}

	if !ok {
		return false
	}

	// units are generated in order so the output is reproducible
	for _, cu := range units {
		if err := prog.GenerateUnit(cu.File); err != nil {
			report.ReportCompileError(err)
			ok = false
		}
	}

	if !ok {
		return false
	}

	if err := emitModule(prog.Module(), c.profile.OutputPath(), c.profile.OutputMode); err != nil {
		report.ReportCompileError(err)
		return false
	}

	return true
}

// reportErrors reports every error joined into err.
func reportErrors(err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			reportErrors(e)
		}
	} else {
		report.ReportCompileError(err)
	}
}
