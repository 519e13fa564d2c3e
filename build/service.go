// Package build implements the compilation orchestrator: a concurrency-safe
// service turning requests to compile files, sources and streams into a
// deduplicated, memoized set of compilation units.
package build

import (
	"ablac/ast"
	"ablac/report"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Parser parses the source of a unit.
type Parser interface {
	Parse(name string, r io.Reader) (*ast.File, error)
}

// Gatherer runs the type-gathering phase over a parsed unit.
type Gatherer interface {
	Gather(file *ast.File) error
}

// Executor runs the compile-time execution phase over a gathered unit.  Any
// nested compilation requests it issues must use contexts derived from cc.
type Executor interface {
	Execute(ctx context.Context, file *ast.File, cc *CompilationContext, svc *CompileService) error
}

// ErrServiceClosed is returned for top-level requests made after Drain.
var ErrServiceClosed = errors.New("compile service is draining")

// Summary is the outcome of a drained compile service.
type Summary struct {
	// Compiled is the number of successfully compiled units.
	Compiled int
}

// CompileService schedules and memoizes the compilation of units.
type CompileService struct {
	parser   Parser
	gatherer Gatherer
	executor Executor

	// locks holds the per-unit named locks.  The pending and compiled maps are
	// only changed while holding the lock for the affected unit.
	locks *NamedLock

	// m guards the maps below and the closed flag for concurrent readers.
	m        sync.Mutex
	compiled map[string]*CompilationUnit
	pending  map[string]*PendingCompilationUnit
	closed   bool

	// waits records which units' compile-time execution is blocked waiting on
	// which other units.  It is guarded by m.
	waits map[string]map[string]int

	// counter numbers synthetic unit names.
	counter atomic.Int64

	// ctx is the root context of every job.
	ctx    context.Context
	cancel context.CancelFunc

	// group tracks every running job and asynchronous join.
	group errgroup.Group

	// requests tracks top-level requests in flight so that Drain does not
	// start waiting while one of them may still add a job.
	requests sync.WaitGroup

	// errs holds the error of the latest attempt of every unit that failed.
	// A later successful attempt removes its unit's entry.
	errsMu sync.Mutex
	errs   map[string]error
}

// NewCompileService creates a new compile service.  The gatherer and executor
// may be nil in which case their phases are skipped.
func NewCompileService(parser Parser, gatherer Gatherer, executor Executor) *CompileService {
	ctx, cancel := context.WithCancel(context.Background())

	return &CompileService{
		parser:   parser,
		gatherer: gatherer,
		executor: executor,
		locks:    NewNamedLock(),
		compiled: make(map[string]*CompilationUnit),
		pending:  make(map[string]*PendingCompilationUnit),
		waits:    make(map[string]map[string]int),
		errs:     make(map[string]error),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// -----------------------------------------------------------------------------

// CompileFile requests the compilation of the file at path.  The unit name is
// the cleaned path.  In sequential mode, it returns once the unit is terminal
// with the unit's error.  In parallel mode, it returns once the request is
// registered: the outcome is delivered through cc.  cc may be nil.
func (s *CompileService) CompileFile(ctx context.Context, path string, parallel bool, cc *CompilationContext) error {
	name := filepath.Clean(path)

	return s.compile(ctx, name, func() (*ast.File, error) {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open `%s`: %w", name, err)
		}
		defer f.Close()

		return s.parser.Parse(name, f)
	}, parallel, cc)
}

// CompileSource requests the compilation of inline source text.  The unit is
// given a fresh synthetic name which is returned.
func (s *CompileService) CompileSource(ctx context.Context, text string, parallel bool, cc *CompilationContext) (string, error) {
	name := fmt.Sprintf("<source#%d>", s.counter.Add(1))

	return name, s.compile(ctx, name, func() (*ast.File, error) {
		return s.parser.Parse(name, strings.NewReader(text))
	}, parallel, cc)
}

// CompileStream requests the compilation of source read from r.  The stream is
// read when the unit is parsed.  The unit is given a fresh synthetic name which
// is returned.
func (s *CompileService) CompileStream(ctx context.Context, r io.Reader, parallel bool, cc *CompilationContext) (string, error) {
	name := fmt.Sprintf("<stream#%d>", s.counter.Add(1))

	return name, s.compile(ctx, name, func() (*ast.File, error) {
		return s.parser.Parse(name, r)
	}, parallel, cc)
}

// compile is the shared request routine.
func (s *CompileService) compile(ctx context.Context, name string, thunk parseThunk, parallel bool, cc *CompilationContext) error {
	if cc == nil {
		cc = NewCompilationContext()
	}

	if cc.IsTopLevel() {
		if !s.enterRequest() {
			cc.Complete(ErrServiceClosed)
			return ErrServiceClosed
		}
		defer s.requests.Done()
	}

	s.locks.Lock(name)

	s.m.Lock()
	_, compiled := s.compiled[name]
	pcu, pending := s.pending[name]
	s.m.Unlock()

	// already compiled: nothing to do
	if compiled {
		s.locks.Unlock(name)
		cc.Complete(nil)
		return nil
	}

	// being compiled: join the running job
	if pending {
		if !parallel && !s.beginWait(cc, name) {
			s.locks.Unlock(name)
			report.ReportCompileWarning(cc.Requester(), nil, "import cycle through `%s`", name)
			cc.Complete(nil)
			return nil
		}

		s.locks.Unlock(name)

		if parallel {
			s.group.Go(func() error {
				<-pcu.job.done
				cc.Complete(pcu.job.err)
				return nil
			})

			return nil
		}

		defer s.endWait(cc, name)
		err := pcu.job.wait(ctx)
		cc.Complete(err)
		return err
	}

	// new unit: register it and start its job outside of the lock
	pcu = &PendingCompilationUnit{FileName: name, parse: thunk, job: newJob()}

	s.m.Lock()
	s.pending[name] = pcu
	s.m.Unlock()

	if !parallel {
		s.beginWait(cc, name)
		defer s.endWait(cc, name)
	}

	s.locks.Unlock(name)

	s.group.Go(func() error {
		s.runJob(pcu, cc)
		return nil
	})

	if parallel {
		return nil
	}

	return pcu.job.wait(ctx)
}

// enterRequest registers a top-level request.  It returns false if the service
// is draining.
func (s *CompileService) enterRequest() bool {
	s.m.Lock()
	defer s.m.Unlock()

	if s.closed {
		return false
	}

	s.requests.Add(1)
	return true
}

// -----------------------------------------------------------------------------

// beginWait records that the requesting unit of cc is about to block on the
// job of name.  It returns false without recording anything if blocking would
// deadlock: that is, if name is itself, directly or transitively, waiting on
// the requesting unit.
func (s *CompileService) beginWait(cc *CompilationContext, name string) bool {
	requester := cc.Requester()
	if requester == "" {
		return true
	}

	if cc.RequestedBy(name) {
		return false
	}

	s.m.Lock()
	defer s.m.Unlock()

	if s.waitsReach(name, requester, make(map[string]struct{})) {
		return false
	}

	targets, ok := s.waits[requester]
	if !ok {
		targets = make(map[string]int)
		s.waits[requester] = targets
	}
	targets[name]++

	return true
}

// endWait removes a wait recorded by beginWait.
func (s *CompileService) endWait(cc *CompilationContext, name string) {
	requester := cc.Requester()
	if requester == "" {
		return
	}

	s.m.Lock()
	defer s.m.Unlock()

	if targets, ok := s.waits[requester]; ok {
		if targets[name]--; targets[name] <= 0 {
			delete(targets, name)
		}

		if len(targets) == 0 {
			delete(s.waits, requester)
		}
	}
}

// waitsReach returns whether from is, transitively, waiting on to.  It must be
// called with s.m held.
func (s *CompileService) waitsReach(from, to string, visited map[string]struct{}) bool {
	if from == to {
		return true
	}

	if _, ok := visited[from]; ok {
		return false
	}
	visited[from] = struct{}{}

	for next := range s.waits[from] {
		if s.waitsReach(next, to, visited) {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// runJob runs every phase of a pending unit, installs it on success, and
// completes the requesting context.
func (s *CompileService) runJob(pcu *PendingCompilationUnit, cc *CompilationContext) {
	name := pcu.FileName
	err := s.runPhases(pcu, cc)

	s.locks.Lock(name)
	s.m.Lock()

	if s.pending[name] != pcu {
		err = &report.CompileError{
			Kind:    report.KindInternalState,
			File:    name,
			Message: "pending unit vanished while its job was running",
		}
		report.ReportICE("%s: pending unit vanished while its job was running", name)
	} else {
		delete(s.pending, name)

		if err == nil && s.ctx.Err() != nil {
			err = s.cancelledError(name)
		}

		if err == nil {
			s.compiled[name] = &CompilationUnit{FileName: name, File: pcu.file}
		}
	}

	s.m.Unlock()

	// must be recorded under the named lock: a retry's outcome replaces this
	s.errsMu.Lock()
	if err != nil {
		s.errs[name] = err
	} else {
		delete(s.errs, name)
	}
	s.errsMu.Unlock()

	pcu.job.finish(err)
	s.locks.Unlock(name)

	cc.Complete(err)
}

// runPhases runs the phases of a unit in order: parse, type gathering and
// compile-time execution.
func (s *CompileService) runPhases(pcu *PendingCompilationUnit, cc *CompilationContext) error {
	name := pcu.FileName

	if s.ctx.Err() != nil {
		return s.cancelledError(name)
	}

	start := time.Now()
	file, err := pcu.parse()
	if err != nil {
		return err
	}
	report.ReportPhase(name, "parse", time.Since(start))

	s.m.Lock()
	pcu.file = file
	s.m.Unlock()

	if s.gatherer != nil {
		if s.ctx.Err() != nil {
			return s.cancelledError(name)
		}

		start = time.Now()
		if err := s.gatherer.Gather(file); err != nil {
			return err
		}
		report.ReportPhase(name, "gather", time.Since(start))
	}

	if s.executor != nil {
		if s.ctx.Err() != nil {
			return s.cancelledError(name)
		}

		start = time.Now()
		if err := s.executor.Execute(s.ctx, file, cc, s); err != nil {
			return err
		}
		report.ReportPhase(name, "execute", time.Since(start))
	}

	return nil
}

func (s *CompileService) cancelledError(name string) error {
	return fmt.Errorf("%s: compilation cancelled: %w", name, s.ctx.Err())
}

// -----------------------------------------------------------------------------

// Drain refuses new top-level requests and waits for every outstanding job,
// including jobs started during the wait by compile-time execution.  It
// returns a summary and the joined errors of every unit whose latest attempt
// failed, ordered by unit name.
func (s *CompileService) Drain() (Summary, error) {
	s.m.Lock()
	s.closed = true
	s.m.Unlock()

	s.requests.Wait()
	s.group.Wait()

	s.errsMu.Lock()
	names := make([]string, 0, len(s.errs))
	for name := range s.errs {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, len(names))
	for i, name := range names {
		errs[i] = s.errs[name]
	}
	s.errsMu.Unlock()

	return Summary{Compiled: s.Count()}, errors.Join(errs...)
}

// Cancel cancels every in-flight job.  Cancelled jobs are never installed.
func (s *CompileService) Cancel() {
	s.cancel()
}

// Unit returns the compiled unit by name.
func (s *CompileService) Unit(name string) (*CompilationUnit, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	cu, ok := s.compiled[name]
	return cu, ok
}

// Units returns every compiled unit sorted by name.
func (s *CompileService) Units() []*CompilationUnit {
	s.m.Lock()
	units := make([]*CompilationUnit, 0, len(s.compiled))
	for _, cu := range s.compiled {
		units = append(units, cu)
	}
	s.m.Unlock()

	sort.Slice(units, func(i, j int) bool {
		return units[i].FileName < units[j].FileName
	})

	return units
}

// Count returns the number of compiled units.
func (s *CompileService) Count() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.compiled)
}

// File returns the AST of a unit that is compiled or whose parse phase has
// finished.  Compile-time execution uses it to import from units that are
// still pending because of an import cycle.
func (s *CompileService) File(name string) (*ast.File, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	if cu, ok := s.compiled[name]; ok {
		return cu.File, true
	}

	if pcu, ok := s.pending[name]; ok && pcu.file != nil {
		return pcu.file, true
	}

	return nil, false
}
