package project

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avengerx/ilspy/fs"
	"github.com/avengerx/ilspy/pathsafe"
	"github.com/avengerx/ilspy/platform"
	"github.com/avengerx/ilspy/winres"
)

type fakeModule struct {
	name      string
	path      string
	platform  string
	types     []TypeDef
	resources []Resource
	native    *winres.Table
}

func (m *fakeModule) Name() string                   { return m.name }
func (m *fakeModule) Path() string                   { return m.path }
func (m *fakeModule) PlatformName() string           { return m.platform }
func (m *fakeModule) Types() []TypeDef               { return m.types }
func (m *fakeModule) Resources() []Resource          { return m.resources }
func (m *fakeModule) NativeResources() *winres.Table { return m.native }

// fakeDecompiler renders each group as a one-line comment listing its type
// names, and can be told to fail on a specific type.
type fakeDecompiler struct {
	mu     sync.Mutex
	groups [][]TypeDef
	failOn string
}

func (d *fakeDecompiler) DecompileTypes(ctx context.Context, types []TypeDef) (SyntaxTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names := make([]string, len(types))
	for i, t := range types {
		if t.Name == d.failOn {
			return nil, errors.New("decompilation exploded")
		}
		names[i] = t.Name
	}
	d.mu.Lock()
	d.groups = append(d.groups, types)
	d.mu.Unlock()
	return "// " + strings.Join(names, ", ") + "\n", nil
}

func (d *fakeDecompiler) DecompileModuleAndAssemblyAttributes(ctx context.Context) (SyntaxTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return "// assembly attributes\n", nil
}

func (d *fakeDecompiler) Render(tree SyntaxTree, w io.Writer) error {
	_, err := io.WriteString(w, tree.(string))
	return err
}

func testPlatform() platform.Settings {
	return platform.Settings{LongPathsEnabled: true, MaxPathLength: 4096, MaxSegmentLength: 255}
}

// newTestEmitter builds an Emitter over an in-memory filesystem with a
// lexical validator, so tests never touch the OS.
func newTestEmitter(t *testing.T, dec Decompiler, opts ...Option) (*Emitter, fs.Filesystem) {
	t.Helper()
	v, err := pathsafe.NewValidator(string(filepath.Separator)+"out", testPlatform(),
		pathsafe.WithResolver(pathsafe.LexicalResolver))
	require.NoError(t, err)

	fsys := fs.NewMemory()
	opts = append([]Option{
		WithPlatformSettings(testPlatform()),
		WithNaming(pathsafe.UnixNaming()),
	}, opts...)
	return NewEmitter(fsys, v, dec, opts...), fsys
}

func readEmitted(t *testing.T, fsys fs.Filesystem, rel string) string {
	t.Helper()
	data, err := fsys.ReadFile(filepath.FromSlash(rel))
	require.NoError(t, err, "read %s", rel)
	return string(data)
}

func TestDecompileProject(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")

	module := &fakeModule{
		name:     "Sample.App",
		platform: "AnyCPU",
		types: []TypeDef{
			{Namespace: "Sample.App", Name: "Program"},
			{Namespace: "Sample.App.Util", Name: "Strings"},
			{Namespace: "", Name: "Globals"},
		},
		resources: []Resource{
			{Name: "Sample.App.logo.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		},
	}

	id, err := DecompileProject(context.Background(), module, &fakeDecompiler{}, target,
		WithRootNamespace("Sample.App"),
		WithNaming(pathsafe.UnixNaming()),
		WithPlatformSettings(testPlatform()))
	require.NoError(t, err)

	assert.Equal(t, "AnyCPU", id.PlatformName)
	assert.NotEqual(t, id.GUID, id.TypeGUID)
	assert.Equal(t, "fae04ec0-301f-11d3-bf4b-00c04f79efbc", id.TypeGUID.String())

	for _, rel := range []string{
		"Program.cs",
		"Util/Strings.cs",
		"Globals.cs",
		"Properties/AssemblyInfo.cs",
		"Sample.App.logo.png",
		"Sample.App.csproj",
	} {
		_, err := os.Stat(filepath.Join(target, filepath.FromSlash(rel)))
		assert.NoError(t, err, "expected %s", rel)
	}

	proj, err := os.ReadFile(filepath.Join(target, "Sample.App.csproj"))
	require.NoError(t, err)
	assert.Contains(t, string(proj), `Include="Util\Strings.cs"`)
	assert.Contains(t, string(proj), "<AssemblyName>Sample.App</AssemblyName>")
}

func TestDecompileProjectSurfacesGroupFailure(t *testing.T) {
	module := &fakeModule{
		name:  "Broken",
		types: []TypeDef{{Namespace: "", Name: "Widget"}},
	}

	_, err := DecompileProject(context.Background(), module,
		&fakeDecompiler{failOn: "Widget"}, filepath.Join(t.TempDir(), "out"),
		WithNaming(pathsafe.UnixNaming()),
		WithPlatformSettings(testPlatform()))

	var ge *GroupError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Widget.cs", ge.Label)
}
