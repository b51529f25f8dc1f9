// installed.go: installed packages manifest and library version arbitration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// InstalledManifest lists the packages installed in one vendor directory.
//
// Example YAML:
//
//	versions:
//	  agilira/plugin-commons:
//	    version: 1.4.0
//	    install_path: ../agilira/plugin-commons
type InstalledManifest struct {
	Versions map[string]InstalledPackage `json:"versions" yaml:"versions"`

	path string
}

// InstalledPackage is one manifest entry. A relative InstallPath is resolved
// against the directory holding the manifest.
type InstalledPackage struct {
	Version     string `json:"version" yaml:"version"`
	InstallPath string `json:"install_path,omitempty" yaml:"install_path,omitempty"`
}

// LibraryCopy is one installed copy of a library.
type LibraryCopy struct {
	Package string
	Version string
	Root    string
}

// LoadInstalledManifest reads a JSON or YAML installed packages manifest.
func LoadInstalledManifest(path string) (*InstalledManifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewManifestNotFoundError(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, NewManifestNotFoundError(path, fmt.Errorf("manifest path is not a regular file"))
	}
	if info.Size() > maxConfigFileSize {
		return nil, NewManifestParseError(path, fmt.Errorf("manifest too large: %d bytes", info.Size()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewManifestNotFoundError(path, err)
	}

	var manifest InstalledManifest
	if err := decodeConfigFile(path, data, &manifest); err != nil {
		return nil, NewManifestParseError(path, err)
	}
	if manifest.Versions == nil {
		manifest.Versions = make(map[string]InstalledPackage)
	}
	manifest.path = path
	return &manifest, nil
}

// Copy returns the installed copy of pkg described by the manifest.
func (m *InstalledManifest) Copy(pkg string) (LibraryCopy, error) {
	entry, ok := m.Versions[pkg]
	if !ok {
		return LibraryCopy{}, NewPackageNotInstalledError(pkg, m.path)
	}

	root := entry.InstallPath
	if root != "" && !filepath.IsAbs(root) && m.path != "" {
		root = filepath.Join(filepath.Dir(m.path), root)
	}
	return LibraryCopy{Package: pkg, Version: entry.Version, Root: root}, nil
}

// NewestCopy returns the copy with the highest version. An empty version ranks
// below every valid one; on a tie the earlier copy wins.
func NewestCopy(copies ...LibraryCopy) (LibraryCopy, error) {
	if len(copies) == 0 {
		return LibraryCopy{}, NewInvalidArgumentError("copies", 0, "at least one library copy is required")
	}

	for _, c := range copies {
		if c.Version == "" {
			continue
		}
		if _, err := parseLibraryVersion(c.Version); err != nil {
			return LibraryCopy{}, NewInvalidLibraryVersionError(c.Package, c.Version, err)
		}
	}

	best := copies[0]
	for _, candidate := range copies[1:] {
		// versions were validated above
		if newer, _ := IsNewerVersion(candidate.Version, best.Version); newer {
			best = candidate
		}
	}
	if best.Version == "" {
		return LibraryCopy{}, NewInvalidLibraryVersionError(best.Package, best.Version, fmt.Errorf("no copy has a version"))
	}
	return best, nil
}

// IsNewerVersion reports whether candidate is strictly newer than current.
// An empty current version is older than any valid candidate; an empty
// candidate is never newer.
func IsNewerVersion(candidate, current string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	c, err := parseLibraryVersion(candidate)
	if err != nil {
		return false, err
	}
	if current == "" {
		return true, nil
	}
	cur, err := parseLibraryVersion(current)
	if err != nil {
		return false, err
	}
	return c.GreaterThan(cur), nil
}

// parseLibraryVersion accepts semantic versions as well as the four component
// form written by package managers ("1.4.0.0") when the fourth component is zero.
func parseLibraryVersion(version string) (*semver.Version, error) {
	if version == "" {
		return nil, fmt.Errorf("empty version")
	}

	core, suffix := version, ""
	if i := strings.IndexAny(version, "-+"); i >= 0 {
		core, suffix = version[:i], version[i:]
	}
	if parts := strings.Split(core, "."); len(parts) == 4 {
		if parts[3] != "0" {
			return nil, fmt.Errorf("unsupported four component version %q", version)
		}
		core = strings.Join(parts[:3], ".")
	}
	return semver.NewVersion(core + suffix)
}
