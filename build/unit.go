package build

import (
	"ablac/ast"
	"context"
)

// CompilationUnit is a unit whose every phase succeeded.  It is immutable once
// installed.
type CompilationUnit struct {
	// FileName is the unit name: a cleaned path or a synthetic name.
	FileName string

	// File is the unit's AST.
	File *ast.File
}

// parseThunk produces the AST of a unit.  It is run exactly once by the unit's
// job.
type parseThunk func() (*ast.File, error)

// PendingCompilationUnit is a unit whose job is not yet terminal.
type PendingCompilationUnit struct {
	// FileName is the unit name.
	FileName string

	// parse is the deferred parse of the unit's source.
	parse parseThunk

	// file is the parsed AST.  It is nil until the parse phase succeeds and is
	// guarded by the service's mutex.
	file *ast.File

	// job is the unit's compilation job.
	job *job
}

// -----------------------------------------------------------------------------

// job is the terminal state of a single compilation attempt.
type job struct {
	done chan struct{}
	err  error
}

func newJob() *job {
	return &job{done: make(chan struct{})}
}

// finish marks the job terminal.  It must be called exactly once.
func (j *job) finish(err error) {
	j.err = err
	close(j.done)
}

// wait blocks until the job is terminal or ctx is cancelled.
func (j *job) wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
