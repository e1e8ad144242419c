// Package project materializes a decompiled binary module into a project
// tree on disk: it decides where each reconstructed type lands, unpacks
// embedded resource containers back into editable form, reconstructs the
// application icon from native resource tables, and writes everything inside
// a sandboxed target directory.
//
// The decompiler itself, the syntax-tree printer, and the module reader are
// external collaborators reached through the Decompiler and Module
// interfaces; this package owns only the emission stage.
package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/avengerx/ilspy/fs"
	"github.com/avengerx/ilspy/pathsafe"
	"github.com/avengerx/ilspy/winres"
)

// sourceExt is the file extension of emitted source files.
const sourceExt = ".cs"

// assemblyInfoPath is where module and assembly level attributes land.
const assemblyInfoPath = "Properties/AssemblyInfo.cs"

// csharpProjectTypeGUID is the well-known project-type identifier for C#
// projects in generated build descriptors.
var csharpProjectTypeGUID = uuid.MustParse("FAE04EC0-301F-11D3-BF4B-00C04F79EFBC")

// FileKind classifies an emitted artifact for the project writer.
type FileKind int

const (
	// Compile marks a source file.
	Compile FileKind = iota

	// EmbeddedResource marks a resource artifact, whether raw, exploded,
	// or re-encoded.
	EmbeddedResource

	// ApplicationIcon marks the reconstructed app.ico.
	ApplicationIcon

	// ApplicationManifest marks the extracted app.manifest.
	ApplicationManifest

	// ApplicationConfig marks the copied app.config.
	ApplicationConfig
)

// String returns the MSBuild-style item name for the kind.
func (k FileKind) String() string {
	switch k {
	case Compile:
		return "Compile"
	case EmbeddedResource:
		return "EmbeddedResource"
	case ApplicationIcon:
		return "ApplicationIcon"
	case ApplicationManifest:
		return "ApplicationManifest"
	case ApplicationConfig:
		return "ApplicationConfig"
	default:
		return fmt.Sprintf("FileKind(%d)", int(k))
	}
}

// FileEntry describes one produced artifact: its kind and its path relative
// to the target root, slash-separated.
type FileEntry struct {
	Kind FileKind
	Path string
}

// TypeDef identifies one reconstructed top-level type. Name may carry a
// generic arity marker such as "List`1"; the marker is stripped before the
// name becomes a file name.
type TypeDef struct {
	Namespace string
	Name      string
}

// Resource is one embedded resource entry of a module.
type Resource struct {
	Name string
	Data []byte
}

// Module is the read-only view of the input binary module. Implementations
// are owned by the caller and never mutated here.
type Module interface {
	// Name returns the module's simple name, used for the project file.
	Name() string

	// Path returns the on-disk location of the input module, or "" when
	// the module is not file-backed. Used to find a sibling .config file.
	Path() string

	// PlatformName returns the module's target platform (e.g. "AnyCPU").
	PlatformName() string

	// Types returns the module's top-level type definitions in module
	// order.
	Types() []TypeDef

	// Resources returns the module's embedded resource entries.
	Resources() []Resource

	// NativeResources returns the module's native resource table, or nil
	// when the module carries none.
	NativeResources() *winres.Table
}

// SyntaxTree is an opaque decompilation result produced by a Decompiler and
// handed back to its Render.
type SyntaxTree any

// Decompiler reconstructs source text from a module. Implementations must
// be safe for concurrent use: one emission run invokes DecompileTypes from
// multiple workers.
type Decompiler interface {
	// DecompileTypes decompiles exactly the given group of types.
	DecompileTypes(ctx context.Context, types []TypeDef) (SyntaxTree, error)

	// DecompileModuleAndAssemblyAttributes decompiles the module and
	// assembly level attributes for the AssemblyInfo file.
	DecompileModuleAndAssemblyAttributes(ctx context.Context) (SyntaxTree, error)

	// Render pretty-prints a syntax tree into w.
	Render(tree SyntaxTree, w io.Writer) error
}

// ProjectID identifies an emitted project to the caller.
type ProjectID struct {
	PlatformName string
	GUID         uuid.UUID
	TypeGUID     uuid.UUID
}

// ProjectWriter serializes the emitted file list plus module metadata into a
// build-descriptor file.
type ProjectWriter interface {
	WriteProjectFile(w io.Writer, files []FileEntry, module Module, id ProjectID) error
}

// DecompileProject is the primary entry point: it creates and validates
// targetDir, emits all code files, resources, and application artifacts into
// it, and writes the project descriptor. On failure, partial output on disk
// is expected and left as-is.
func DecompileProject(ctx context.Context, module Module, dec Decompiler, targetDir string, opts ...Option) (ProjectID, error) {
	o := newOptions(opts...)

	abs, err := filepath.Abs(targetDir)
	if err != nil {
		return ProjectID{}, fmt.Errorf("project: resolve target directory %q: %w", targetDir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return ProjectID{}, fmt.Errorf("project: create target directory %q: %w", abs, err)
	}

	validator, err := pathsafe.NewValidator(abs, o.Settings, pathsafe.WithLogger(o.Logger))
	if err != nil {
		return ProjectID{}, fmt.Errorf("project: %w", err)
	}

	e := newEmitter(fs.NewOS(abs), validator, dec, o)

	files, err := e.EmitCode(ctx, module)
	if err != nil {
		return ProjectID{}, err
	}
	resFiles, err := e.EmitResources(module)
	if err != nil {
		return ProjectID{}, err
	}
	files = append(files, resFiles...)
	appFiles, err := e.EmitAppArtifacts(module)
	if err != nil {
		return ProjectID{}, err
	}
	files = append(files, appFiles...)

	id := ProjectID{
		PlatformName: module.PlatformName(),
		GUID:         uuid.New(),
		TypeGUID:     csharpProjectTypeGUID,
	}

	projRel := o.Naming.CleanFileName(module.Name()) + ".csproj"
	if _, err := validator.FilePath(projRel); err != nil {
		return ProjectID{}, err
	}
	f, err := e.fsys.Create(filepath.FromSlash(projRel))
	if err != nil {
		return ProjectID{}, fmt.Errorf("project: create project file: %w", err)
	}
	defer f.Close()
	if err := o.Writer.WriteProjectFile(f, files, module, id); err != nil {
		return ProjectID{}, fmt.Errorf("project: write project file: %w", err)
	}
	if err := f.Close(); err != nil {
		return ProjectID{}, fmt.Errorf("project: close project file: %w", err)
	}

	o.Logger.Info("project emitted",
		"module", module.Name(),
		"target", abs,
		"files", len(files),
		"project", projRel)
	return id, nil
}
