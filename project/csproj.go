package project

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// msbuildNamespace is the schema every classic project file declares.
const msbuildNamespace = "http://schemas.microsoft.com/developer/msbuild/2003"

// CSharpProjectWriter writes a classic (non-SDK) MSBuild C# project file
// listing every emitted artifact, so the output tree loads into an IDE
// as-is.
type CSharpProjectWriter struct{}

// NewCSharpProjectWriter creates the default ProjectWriter.
func NewCSharpProjectWriter() *CSharpProjectWriter {
	return &CSharpProjectWriter{}
}

type csprojItem struct {
	XMLName xml.Name
	Include string `xml:"Include,attr"`
}

type csprojItemGroup struct {
	XMLName xml.Name `xml:"ItemGroup"`
	Items   []csprojItem
}

type csprojProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type csprojPropertyGroup struct {
	XMLName    xml.Name `xml:"PropertyGroup"`
	Properties []csprojProperty
}

type csprojFile struct {
	XMLName        xml.Name `xml:"Project"`
	Xmlns          string   `xml:"xmlns,attr"`
	ToolsVersion   string   `xml:"ToolsVersion,attr"`
	PropertyGroups []csprojPropertyGroup
	ItemGroups     []csprojItemGroup
}

// WriteProjectFile implements ProjectWriter.
func (cw *CSharpProjectWriter) WriteProjectFile(w io.Writer, files []FileEntry, module Module, id ProjectID) error {
	props := []csprojProperty{
		property("AssemblyName", module.Name()),
		property("ProjectGuid", "{"+strings.ToUpper(id.GUID.String())+"}"),
		property("ProjectTypeGuids", "{"+strings.ToUpper(id.TypeGUID.String())+"}"),
	}
	if id.PlatformName != "" {
		props = append(props, property("PlatformTarget", id.PlatformName))
	}
	for _, f := range files {
		switch f.Kind {
		case ApplicationIcon:
			props = append(props, property("ApplicationIcon", projectPath(f.Path)))
		case ApplicationManifest:
			props = append(props, property("ApplicationManifest", projectPath(f.Path)))
		}
	}

	doc := csprojFile{
		Xmlns:          msbuildNamespace,
		ToolsVersion:   "4.0",
		PropertyGroups: []csprojPropertyGroup{{Properties: props}},
		ItemGroups:     itemGroups(files),
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write project header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode project file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush project file: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// itemGroups buckets the emitted files into one ItemGroup per MSBuild item
// name, each sorted by path. Icon and manifest are referenced from
// properties, and the configuration file rides along as None.
func itemGroups(files []FileEntry) []csprojItemGroup {
	buckets := make(map[string][]string)
	for _, f := range files {
		var item string
		switch f.Kind {
		case Compile, EmbeddedResource:
			item = f.Kind.String()
		case ApplicationConfig:
			item = "None"
		default:
			continue
		}
		buckets[item] = append(buckets[item], projectPath(f.Path))
	}

	var groups []csprojItemGroup
	for _, item := range []string{"Compile", "EmbeddedResource", "None"} {
		paths := buckets[item]
		if len(paths) == 0 {
			continue
		}
		sort.Strings(paths)
		items := make([]csprojItem, len(paths))
		for i, p := range paths {
			items[i] = csprojItem{XMLName: xml.Name{Local: item}, Include: p}
		}
		groups = append(groups, csprojItemGroup{Items: items})
	}
	return groups
}

func property(name, value string) csprojProperty {
	return csprojProperty{XMLName: xml.Name{Local: name}, Value: value}
}

// projectPath rewrites a root-relative slash path into the backslash form
// project files conventionally use.
func projectPath(rel string) string {
	return strings.ReplaceAll(rel, "/", `\`)
}
