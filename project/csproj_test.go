package project

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSharpProjectWriter(t *testing.T) {
	files := []FileEntry{
		{Kind: Compile, Path: "N2/Foo.cs"},
		{Kind: Compile, Path: "Properties/AssemblyInfo.cs"},
		{Kind: EmbeddedResource, Path: "App/logo.png"},
		{Kind: ApplicationIcon, Path: "app.ico"},
		{Kind: ApplicationManifest, Path: "app.manifest"},
		{Kind: ApplicationConfig, Path: "app.config"},
	}
	id := ProjectID{
		PlatformName: "AnyCPU",
		GUID:         uuid.MustParse("12345678-1234-1234-1234-1234567890ab"),
		TypeGUID:     csharpProjectTypeGUID,
	}

	var buf bytes.Buffer
	err := NewCSharpProjectWriter().WriteProjectFile(&buf, files, &fakeModule{name: "Sample"}, id)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, `xmlns="http://schemas.microsoft.com/developer/msbuild/2003"`)
	assert.Contains(t, out, "<AssemblyName>Sample</AssemblyName>")
	assert.Contains(t, out, "<ProjectGuid>{12345678-1234-1234-1234-1234567890AB}</ProjectGuid>")
	assert.Contains(t, out, "<PlatformTarget>AnyCPU</PlatformTarget>")
	assert.Contains(t, out, "<ApplicationIcon>app.ico</ApplicationIcon>")
	assert.Contains(t, out, "<ApplicationManifest>app.manifest</ApplicationManifest>")

	// Paths use backslashes, the convention of the format.
	assert.Contains(t, out, `<Compile Include="N2\Foo.cs"`)
	assert.Contains(t, out, `<Compile Include="Properties\AssemblyInfo.cs"`)
	assert.Contains(t, out, `<EmbeddedResource Include="App\logo.png"`)
	assert.Contains(t, out, `<None Include="app.config"`)
}

func TestCSharpProjectWriterEmptyFileList(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSharpProjectWriter().WriteProjectFile(&buf, nil, &fakeModule{name: "Empty"}, ProjectID{
		GUID:     uuid.New(),
		TypeGUID: csharpProjectTypeGUID,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<AssemblyName>Empty</AssemblyName>")
	assert.NotContains(t, buf.String(), "<ItemGroup>")
}
