// autoload.go: namespace class loader and newest-copy library bootstrap
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

const (
	// DefaultLibraryPackage is the package name of this library in installed manifests.
	DefaultLibraryPackage = "agilira/plugin-commons"

	// DefaultInstalledManifest is the manifest location relative to the vendor directory.
	DefaultInstalledManifest = "composer/installed.yaml"

	// DefaultNamespaceRoot is the namespace prefix under which the library's
	// sub-namespaces are registered.
	DefaultNamespaceRoot = `AGILira\PluginCommons\`

	// NamespaceSeparator separates namespace segments in class names.
	NamespaceSeparator = `\`
)

// DefaultNamespaces returns the library sub-namespaces registered by Bootstrap.
func DefaultNamespaces() []string {
	return []string{"Helpers", "Internationalization", "Log"}
}

// NamespaceMapping maps a namespace prefix to a directory.
type NamespaceMapping struct {
	Prefix string
	Dir    string
}

// ClassLoader resolves class names to files through namespace prefixes.
//
// The longest matching prefix wins; directories added for the same prefix are
// tried in insertion order by ResolveAll.
type ClassLoader struct {
	mu        sync.RWMutex
	mappings  map[string][]string
	extension string
}

// NewClassLoader creates a loader that appends extension to resolved paths.
func NewClassLoader(extension string) *ClassLoader {
	return &ClassLoader{
		mappings:  make(map[string][]string),
		extension: extension,
	}
}

// AddPrefix maps prefix to dir. A missing trailing separator is added.
func (l *ClassLoader) AddPrefix(prefix, dir string) {
	if prefix != "" && !strings.HasSuffix(prefix, NamespaceSeparator) {
		prefix += NamespaceSeparator
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mappings[prefix] = append(l.mappings[prefix], dir)
}

// Mappings returns every prefix mapping, sorted by prefix.
func (l *ClassLoader) Mappings() []NamespaceMapping {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []NamespaceMapping
	for prefix, dirs := range l.mappings {
		for _, dir := range dirs {
			out = append(out, NamespaceMapping{Prefix: prefix, Dir: dir})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// Resolve returns the file for name under the first directory of the longest
// matching prefix.
func (l *ClassLoader) Resolve(name string) (string, bool) {
	paths := l.ResolveAll(name)
	if len(paths) == 0 {
		return "", false
	}
	return paths[0], true
}

// ResolveAll returns every candidate file for name, best match first.
func (l *ClassLoader) ResolveAll(name string) []string {
	name = strings.TrimPrefix(name, NamespaceSeparator)

	l.mu.RLock()
	defer l.mu.RUnlock()

	prefixes := make([]string, 0, len(l.mappings))
	for prefix := range l.mappings {
		if strings.HasPrefix(name, prefix) {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })

	var paths []string
	for _, prefix := range prefixes {
		rest := strings.ReplaceAll(strings.TrimPrefix(name, prefix), NamespaceSeparator, "/")
		if rest == "" {
			continue
		}
		for _, dir := range l.mappings[prefix] {
			paths = append(paths, filepath.Join(dir, filepath.FromSlash(rest))+l.extension)
		}
	}
	return paths
}

// Register adds the loader to chain, in front of existing loaders when prepend is set.
func (l *ClassLoader) Register(chain *LoaderChain, prepend bool) {
	chain.add(l, prepend)
}

// LoaderChain is the ordered set of class loaders known to the host.
type LoaderChain struct {
	mu      sync.RWMutex
	loaders []*ClassLoader
}

// NewLoaderChain creates an empty chain.
func NewLoaderChain() *LoaderChain {
	return &LoaderChain{}
}

func (c *LoaderChain) add(l *ClassLoader, prepend bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.loaders {
		if existing == l {
			return
		}
	}
	if prepend {
		c.loaders = append([]*ClassLoader{l}, c.loaders...)
		return
	}
	c.loaders = append(c.loaders, l)
}

// Len returns the number of registered loaders.
func (c *LoaderChain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.loaders)
}

// Resolve asks each loader in order and returns the first match.
func (c *LoaderChain) Resolve(name string) (string, bool) {
	c.mu.RLock()
	loaders := make([]*ClassLoader, len(c.loaders))
	copy(loaders, c.loaders)
	c.mu.RUnlock()

	for _, l := range loaders {
		if path, ok := l.Resolve(name); ok {
			return path, true
		}
	}
	return "", false
}

// ActiveVersionFunc reports the version of pkg the host currently resolves.
// An error, or a version that cannot be parsed, means no version is active.
type ActiveVersionFunc func(pkg string) (string, error)

// BootstrapOptions configures Bootstrap.
type BootstrapOptions struct {
	// Package name in the installed manifest (default DefaultLibraryPackage)
	Package string

	// VendorDir holding this copy of the library
	VendorDir string

	// ManifestPath overrides VendorDir/DefaultInstalledManifest
	ManifestPath string

	// NamespaceRoot is prepended to each namespace (default DefaultNamespaceRoot)
	NamespaceRoot string

	// Namespaces to register (default DefaultNamespaces)
	Namespaces []string

	// Extension appended to resolved class files
	Extension string

	// ActiveVersion returns the currently active library version
	ActiveVersion ActiveVersionFunc

	// Chain receives the loader when this copy wins
	Chain *LoaderChain

	// Logger for bootstrap diagnostics (nil for silent)
	Logger any
}

// BootstrapResult describes the outcome of Bootstrap.
type BootstrapResult struct {
	Package       string
	LocalVersion  string
	ActiveVersion string
	Registered    bool
	Loader        *ClassLoader
	CheckedAt     time.Time
}

// Bootstrap registers this copy of the library when it is strictly newer than
// the active one.
//
// Several plugins may each ship their own copy of the library; whichever
// plugin loads first, the newest installed copy ends up resolved first.
//
// The local version is read from the installed manifest. When it is newer,
// every namespace is mapped to a sub-directory of the local install and the
// loader is prepended to the chain so it takes priority over older copies.
// Otherwise nothing is registered.
func Bootstrap(opts BootstrapOptions) (*BootstrapResult, error) {
	logger := NewLogger(opts.Logger)
	if opts.Chain == nil {
		return nil, NewInvalidArgumentError("chain", nil, "a loader chain is required")
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = DefaultLibraryPackage
	}

	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = filepath.Join(opts.VendorDir, filepath.FromSlash(DefaultInstalledManifest))
	}
	manifest, err := LoadInstalledManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	local, err := manifest.Copy(pkg)
	if err != nil {
		return nil, err
	}
	if local.Root == "" {
		local.Root = filepath.Join(opts.VendorDir, filepath.FromSlash(pkg))
	}

	active := ""
	if opts.ActiveVersion != nil {
		v, err := opts.ActiveVersion(pkg)
		switch {
		case err != nil:
			logger.Debug("No active library version", "package", pkg, "error", err)
		case v == "":
			// nothing active
		default:
			if _, perr := parseLibraryVersion(v); perr != nil {
				// Branch aliases such as dev-main cannot be ordered.
				logger.Debug("Active library version is not comparable, treating it as absent",
					"package", pkg, "active_version", v, "error", perr)
			} else {
				active = v
			}
		}
	}

	result := &BootstrapResult{
		Package:       pkg,
		LocalVersion:  local.Version,
		ActiveVersion: active,
		CheckedAt:     timecache.CachedTime(),
	}

	newer, err := IsNewerVersion(local.Version, active)
	if err != nil {
		return nil, NewInvalidLibraryVersionError(pkg, local.Version, err)
	}
	if !newer {
		logger.Debug("Active library copy is current, skipping registration",
			"package", pkg, "local_version", local.Version, "active_version", active)
		return result, nil
	}

	root := opts.NamespaceRoot
	if root == "" {
		root = DefaultNamespaceRoot
	}
	namespaces := opts.Namespaces
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces()
	}

	loader := NewClassLoader(opts.Extension)
	for _, ns := range namespaces {
		loader.AddPrefix(root+ns, filepath.Join(local.Root, ns))
	}
	loader.Register(opts.Chain, true)

	result.Registered = true
	result.Loader = loader
	logger.Info("Registered newer library copy",
		"package", pkg,
		"local_version", local.Version,
		"active_version", active,
		"root", local.Root)
	return result, nil
}

// BootstrapFromConfig runs Bootstrap with the autoload section of a LibraryConfig.
func BootstrapFromConfig(config AutoloadConfig, chain *LoaderChain, active ActiveVersionFunc, logger any) (*BootstrapResult, error) {
	manifest := config.InstalledManifest
	if manifest != "" && !filepath.IsAbs(manifest) {
		manifest = filepath.Join(config.VendorDir, filepath.FromSlash(manifest))
	}
	return Bootstrap(BootstrapOptions{
		Package:       config.Package,
		VendorDir:     config.VendorDir,
		ManifestPath:  manifest,
		Namespaces:    config.Namespaces,
		ActiveVersion: active,
		Chain:         chain,
		Logger:        logger,
	})
}
