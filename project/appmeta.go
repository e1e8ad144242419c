package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avengerx/ilspy/winres"
)

// Output names of application-level artifacts.
const (
	appIconPath     = "app.ico"
	appManifestPath = "app.manifest"
	appConfigPath   = "app.config"
)

// defaultManifestBody is the boilerplate manifest toolchains stamp into
// binaries that declare nothing of their own. Extracting it would only add
// noise, so a matching manifest is skipped.
const defaultManifestBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<assembly xmlns="urn:schemas-microsoft-com:asm.v1" manifestVersion="1.0">
  <trustInfo xmlns="urn:schemas-microsoft-com:asm.v3">
    <security>
      <requestedPrivileges xmlns="urn:schemas-microsoft-com:asm.v3">
        <requestedExecutionLevel level="asInvoker" uiAccess="false"/>
      </requestedPrivileges>
    </security>
  </trustInfo>
</assembly>`

// EmitAppArtifacts extracts application-level artifacts: the reconstructed
// icon and a non-default manifest from the native resource table, and the
// module's sibling configuration file when one exists on disk. Each artifact
// is optional; only write failures fail the run.
func (e *Emitter) EmitAppArtifacts(module Module) ([]FileEntry, error) {
	var entries []FileEntry

	if tbl := module.NativeResources(); tbl != nil {
		ico, err := winres.ReconstructIcon(tbl)
		switch {
		case err == nil:
			if err := e.writeArtifact(appIconPath, ico); err != nil {
				return nil, err
			}
			entries = append(entries, FileEntry{Kind: ApplicationIcon, Path: appIconPath})
		case errors.Is(err, winres.ErrNoIcon):
			// Nothing to reconstruct.
		default:
			e.opts.Logger.Debug("icon reconstruction skipped", "module", module.Name(), "reason", err)
		}

		if manifest, ok := tbl.First(winres.TypeManifest); ok && !isDefaultManifest(manifest) {
			if err := e.writeArtifact(appManifestPath, manifest); err != nil {
				return nil, err
			}
			entries = append(entries, FileEntry{Kind: ApplicationManifest, Path: appManifestPath})
		}
	}

	if cfg, ok := e.readModuleConfig(module); ok {
		if err := e.writeArtifact(appConfigPath, cfg); err != nil {
			return nil, err
		}
		entries = append(entries, FileEntry{Kind: ApplicationConfig, Path: appConfigPath})
	}
	return entries, nil
}

// readModuleConfig loads the "<module>.config" sibling of the input binary,
// when the module is file-backed and the sibling exists.
func (e *Emitter) readModuleConfig(module Module) ([]byte, bool) {
	p := module.Path()
	if p == "" {
		return nil, false
	}
	data, err := os.ReadFile(p + ".config")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.opts.Logger.Debug("module configuration unreadable", "path", p+".config", "reason", err)
		}
		return nil, false
	}
	return data, true
}

func (e *Emitter) writeArtifact(rel string, data []byte) error {
	if _, err := e.validator.FilePath(rel); err != nil {
		return err
	}
	if err := e.fsys.WriteFile(filepath.FromSlash(rel), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// isDefaultManifest reports whether data is the toolchain's boilerplate
// manifest, ignoring a byte-order mark and whitespace differences.
func isDefaultManifest(data []byte) bool {
	return normalizeManifest(string(data)) == normalizeManifest(defaultManifestBody)
}

func normalizeManifest(s string) string {
	s = strings.TrimPrefix(s, "\xef\xbb\xbf")
	return strings.Join(strings.Fields(s), " ")
}
