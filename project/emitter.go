package project

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/avengerx/ilspy/fs"
	"github.com/avengerx/ilspy/pathsafe"
)

// Emitter writes one module's artifacts into a validated target filesystem.
// The planning phase is sequential; file contents are produced by a bounded
// pool of decompilation workers.
type Emitter struct {
	fsys      fs.Filesystem
	validator *pathsafe.Validator
	dec       Decompiler
	opts      Options
	plan      *planner
}

// NewEmitter creates an Emitter writing through fsys, with every path
// checked by validator first.
func NewEmitter(fsys fs.Filesystem, validator *pathsafe.Validator, dec Decompiler, opts ...Option) *Emitter {
	return newEmitter(fsys, validator, dec, newOptions(opts...))
}

func newEmitter(fsys fs.Filesystem, validator *pathsafe.Validator, dec Decompiler, o Options) *Emitter {
	return &Emitter{
		fsys:      fsys,
		validator: validator,
		dec:       dec,
		opts:      o,
		plan:      newPlanner(o),
	}
}

// EmitCode plans the module's type groups, creates their directories, and
// writes one source file per group plus the assembly-attribute file. Groups
// are emitted concurrently; the returned entries are in plan order
// regardless of which worker finished first.
//
// The first group failure aborts the run. Context cancellation surfaces
// unwrapped; any other group failure is wrapped in a GroupError naming the
// file that failed.
func (e *Emitter) EmitCode(ctx context.Context, module Module) ([]FileEntry, error) {
	groups := e.plan.groups(module.Types())

	// Directories are created up front so workers never race on MkdirAll.
	for _, dir := range e.plan.dirs.Paths() {
		if err := e.mkdir(dir); err != nil {
			return nil, err
		}
	}

	sink := newProgressSink(e.opts.Progress)
	defer sink.close()

	total := len(groups) + 1 // groups plus the assembly-attribute file
	var done atomic.Int64

	entries := make([]FileEntry, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxParallelism)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := e.writeGroup(gctx, grp); err != nil {
				return groupFailure(grp.Path, err)
			}
			entries[i] = FileEntry{Kind: Compile, Path: grp.Path}
			sink.report(Progress{Total: total, Done: int(done.Add(1)), Label: grp.Path})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := e.writeAssemblyInfo(ctx); err != nil {
		return nil, groupFailure(assemblyInfoPath, err)
	}
	entries = append(entries, FileEntry{Kind: Compile, Path: assemblyInfoPath})
	sink.report(Progress{Total: total, Done: int(done.Add(1)), Label: assemblyInfoPath})

	e.opts.Logger.Debug("code emission finished",
		"module", module.Name(), "groups", len(groups), "workers", e.opts.MaxParallelism)
	return entries, nil
}

// writeGroup decompiles one type group and renders it into its file.
func (e *Emitter) writeGroup(ctx context.Context, grp TypeGroup) error {
	if _, err := e.validator.FilePath(grp.Path); err != nil {
		return err
	}
	tree, err := e.dec.DecompileTypes(ctx, grp.Types)
	if err != nil {
		return err
	}
	return e.renderTo(grp.Path, tree)
}

func (e *Emitter) writeAssemblyInfo(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.mkdir(parentDir(assemblyInfoPath)); err != nil {
		return err
	}
	if _, err := e.validator.FilePath(assemblyInfoPath); err != nil {
		return err
	}
	tree, err := e.dec.DecompileModuleAndAssemblyAttributes(ctx)
	if err != nil {
		return err
	}
	return e.renderTo(assemblyInfoPath, tree)
}

// renderTo prints tree into the file at the root-relative path rel.
func (e *Emitter) renderTo(rel string, tree SyntaxTree) error {
	f, err := e.fsys.Create(filepath.FromSlash(rel))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := e.dec.Render(tree, w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// mkdir validates and creates the root-relative directory rel. The empty
// string is the target root itself and needs nothing.
func (e *Emitter) mkdir(rel string) error {
	if rel == "" {
		return nil
	}
	if _, err := e.validator.DirPath(rel); err != nil {
		return err
	}
	if err := e.fsys.MkdirAll(filepath.FromSlash(rel), 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", rel, err)
	}
	return nil
}

// groupFailure wraps err in a GroupError unless it is a cancellation, which
// must stay matchable as-is.
func groupFailure(label string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &GroupError{Label: label, Err: err}
}

// progressSink decouples progress consumers from emission workers: reports
// go through a buffered channel and are dropped when the consumer lags. A
// nil sink discards everything.
type progressSink struct {
	ch     chan Progress
	closed chan struct{}
}

func newProgressSink(fn ProgressFunc) *progressSink {
	if fn == nil {
		return nil
	}
	s := &progressSink{
		ch:     make(chan Progress, 64),
		closed: make(chan struct{}),
	}
	go func() {
		defer close(s.closed)
		for p := range s.ch {
			fn(p)
		}
	}()
	return s
}

func (s *progressSink) report(p Progress) {
	if s == nil {
		return
	}
	select {
	case s.ch <- p:
	default:
	}
}

// close stops the sink and waits for in-flight reports to be delivered.
func (s *progressSink) close() {
	if s == nil {
		return
	}
	close(s.ch)
	<-s.closed
}
