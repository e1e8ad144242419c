package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/avengerx/ilspy/resfmt"
)

// resourcesExt marks serialized resource containers among a module's
// embedded resources.
const resourcesExt = ".resources"

// resxExt is the extension of the editable sibling produced next to an
// exploded container.
const resxExt = ".resx"

// EmitResources writes the module's embedded resources into the target tree.
// Plain resources are copied verbatim. Containers (".resources") whose
// entries are all byte streams are exploded into one file per entry plus a
// best-effort ".resx" sibling; containers that cannot be decoded fall back
// to a verbatim copy and never fail the run. I/O errors do fail the run.
func (e *Emitter) EmitResources(module Module) ([]FileEntry, error) {
	resources := module.Resources()
	if len(resources) == 0 {
		return nil, nil
	}

	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = r.Name
	}
	for _, dir := range e.plan.preplanResourceDirs(names) {
		if err := e.mkdir(dir); err != nil {
			return nil, err
		}
	}

	var entries []FileEntry
	for _, res := range resources {
		if !strings.HasSuffix(res.Name, resourcesExt) {
			rel, err := e.writeResourceBlob(res.Name, res.Data)
			if err != nil {
				return nil, err
			}
			entries = append(entries, FileEntry{Kind: EmbeddedResource, Path: rel})
			continue
		}

		sub, err := resfmt.Read(res.Data)
		if err != nil {
			// Containers we cannot decode are still worth keeping verbatim.
			e.opts.Logger.Debug("resource container kept verbatim",
				"name", res.Name, "reason", err)
			rel, werr := e.writeResourceBlob(res.Name, res.Data)
			if werr != nil {
				return nil, werr
			}
			entries = append(entries, FileEntry{Kind: EmbeddedResource, Path: rel})
			continue
		}

		exploded, err := e.explodeContainer(res.Name, sub)
		if err != nil {
			return nil, err
		}
		entries = append(entries, exploded...)
	}
	return entries, nil
}

// explodeContainer writes each container entry as its own file and, when at
// least one entry survives XML encoding, a ".resx" document alongside.
func (e *Emitter) explodeContainer(name string, sub []resfmt.Entry) ([]FileEntry, error) {
	entries := make([]FileEntry, 0, len(sub)+1)
	for _, s := range sub {
		rel, err := e.writeResourceBlob(s.Name, s.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, FileEntry{Kind: EmbeddedResource, Path: rel})
	}

	doc, skipped, err := resfmt.EncodeResx(sub)
	if err != nil {
		e.opts.Logger.Debug("resx encoding skipped", "name", name, "reason", err)
		return entries, nil
	}
	if len(skipped) == len(sub) && len(sub) > 0 {
		return entries, nil
	}
	for _, s := range skipped {
		e.opts.Logger.Debug("resource entry left out of resx", "container", name, "entry", s.Name)
	}

	resxName := strings.TrimSuffix(name, resourcesExt) + resxExt
	rel, err := e.writeResourceBlob(resxName, doc)
	if err != nil {
		return nil, err
	}
	return append(entries, FileEntry{Kind: EmbeddedResource, Path: rel}), nil
}

// writeResourceBlob places one resource by its dotted name and writes its
// bytes, returning the root-relative path used.
func (e *Emitter) writeResourceBlob(name string, data []byte) (string, error) {
	rel := e.plan.resourcePath(name)
	if _, err := e.validator.FilePath(rel); err != nil {
		return "", err
	}
	if err := e.fsys.WriteFile(filepath.FromSlash(rel), data, 0o644); err != nil {
		return "", fmt.Errorf("write resource %q: %w", name, err)
	}
	return rel, nil
}
