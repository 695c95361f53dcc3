package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"go.uber.org/zap"
)

// fileLoader is the implementation of the FileLoader interface.
type fileLoader struct {
	mu sync.Mutex

	log      *zap.Logger
	fetcher  Fetcher
	registry *ExtensionRegistry
	legacy   LegacyLoaderFactory

	extensions       []Extension
	customExtensions bool
	pool             worker.DynamicWorkerPool

	workers     int
	queueSize   int
	idleTimeout time.Duration

	computeMissingNormals bool
	convertToLeftHanded   bool
	autoStartAnimations   bool
	disabledExtensions    []string

	disposed bool
}

// FileLoader is the entry point for loading glTF assets. It recognizes text and binary
// input, selects a loader for the asset's major version and runs it. A FileLoader may run
// any number of loads, concurrently; each load uses a fresh versioned loader.
type FileLoader interface {
	// Name returns the loader name, "gltf".
	//
	// Returns:
	//   - string: the loader name
	Name() string

	// FileExtensions returns the handled file extensions mapped to whether they are binary.
	//
	// Returns:
	//   - map[string]bool: ".gltf" (text) and ".glb" (binary)
	FileExtensions() map[string]bool

	// CanDirectLoad reports whether text looks like a glTF document.
	//
	// Parameters:
	//   - text: the candidate content
	//
	// Returns:
	//   - bool: true if text mentions both "scene" and "node"
	CanDirectLoad(text string) bool

	// Parse recognizes data as JSON text (first non-blank byte is '{') or as a binary
	// container, and reads the asset version.
	//
	// Parameters:
	//   - data: the raw asset bytes
	//
	// Returns:
	//   - *LoaderData: the JSON and optional binary chunk
	//   - Version: the asset version
	//   - error: MalformedContainerError, ParseError or UnsupportedVersionError
	Parse(data []byte) (*LoaderData, Version, error)

	// ImportMeshAsync parses data and imports the named nodes (all when names is empty).
	// Parse and version errors are reported through onError before the call returns;
	// otherwise a callback runs on another goroutine once the load has settled.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - names: node names to import, nil or empty for everything
	//   - target: the scene receiving the created objects
	//   - data: the raw asset bytes
	//   - rootURL: the base URL relative resource URIs are resolved against
	//   - onSuccess: called with the import result when no error occurred
	//   - onError: called with the aggregated error otherwise
	ImportMeshAsync(ctx context.Context, names []string, target TargetScene, data []byte, rootURL string, onSuccess func(*ImportResult), onError func(error))

	// LoadAsync parses data and loads the whole default scene. Callbacks behave as for
	// ImportMeshAsync.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - target: the scene receiving the created objects
	//   - data: the raw asset bytes
	//   - rootURL: the base URL relative resource URIs are resolved against
	//   - onSuccess: called when the load completed without error
	//   - onError: called with the aggregated error otherwise
	LoadAsync(ctx context.Context, target TargetScene, data []byte, rootURL string, onSuccess func(), onError func(error))

	// ImportMesh is the blocking form of ImportMeshAsync. The result is returned even when
	// the error is non-nil, listing what was added before the failures.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - names: node names to import, nil or empty for everything
	//   - target: the scene receiving the created objects
	//   - data: the raw asset bytes
	//   - rootURL: the base URL relative resource URIs are resolved against
	//
	// Returns:
	//   - *ImportResult: the import result, nil if the load did not start
	//   - error: the aggregated error
	ImportMesh(ctx context.Context, names []string, target TargetScene, data []byte, rootURL string) (*ImportResult, error)

	// Load is the blocking form of LoadAsync.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - target: the scene receiving the created objects
	//   - data: the raw asset bytes
	//   - rootURL: the base URL relative resource URIs are resolved against
	//
	// Returns:
	//   - error: the aggregated error
	Load(ctx context.Context, target TargetScene, data []byte, rootURL string) error

	// LoadFile reads a .gltf or .glb file through the fetcher and loads it, resolving
	// relative resources against the file's directory.
	//
	// Parameters:
	//   - ctx: the context bounding resource fetches
	//   - target: the scene receiving the created objects
	//   - filePath: a filesystem path or URL
	//
	// Returns:
	//   - error: error if the format is not handled or the load fails
	LoadFile(ctx context.Context, target TargetScene, filePath string) error

	// ExtensionRegistry returns the registry consulted by every load.
	//
	// Returns:
	//   - *ExtensionRegistry: the registry
	ExtensionRegistry() *ExtensionRegistry

	// Dispose stops the worker pool. The FileLoader must not be used afterwards.
	Dispose()
}

var _ FileLoader = &fileLoader{}

// NewFileLoader creates a FileLoader with the provided options applied.
// By default it logs nothing, fetches through NewDefaultFetcher, registers the built-in
// extensions, computes missing normals and starts animations once loaded.
//
// Parameters:
//   - options: a variadic list of FileLoaderBuilderOption functions to configure the loader
//
// Returns:
//   - FileLoader: the new loader
func NewFileLoader(options ...FileLoaderBuilderOption) FileLoader {
	l := &fileLoader{
		log:                   zap.NewNop(),
		workers:               runtime.NumCPU(),
		queueSize:             256,
		idleTimeout:           time.Second,
		computeMissingNormals: true,
		autoStartAnimations:   true,
	}

	for _, option := range options {
		option(l)
	}

	if l.fetcher == nil {
		l.fetcher = NewDefaultFetcher(0)
	}
	if l.customExtensions {
		l.registry = NewExtensionRegistry(l.log, l.extensions...)
	} else {
		l.registry = NewExtensionRegistry(l.log, DefaultExtensions()...)
	}
	for _, name := range l.disabledExtensions {
		if !l.registry.SetEnabled(name, false) {
			l.log.Warn("Cannot disable unknown extension", zap.String("extension", name))
		}
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, l.idleTimeout)
	return l
}

func (l *fileLoader) Name() string {
	return "gltf"
}

func (l *fileLoader) FileExtensions() map[string]bool {
	return map[string]bool{
		".gltf": false,
		".glb":  true,
	}
}

func (l *fileLoader) CanDirectLoad(text string) bool {
	return strings.Contains(text, "scene") && strings.Contains(text, "node")
}

// assetProbe decodes only the version fields of a document.
type assetProbe struct {
	Asset struct {
		Version    string `json:"version"`
		MinVersion string `json:"minVersion"`
	} `json:"asset"`
}

func (l *fileLoader) Parse(data []byte) (*LoaderData, Version, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")

	var (
		raw              json.RawMessage
		bin              []byte
		containerVersion uint32
	)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		raw = trimmed
	} else {
		c, err := ReadContainer(data)
		if err != nil {
			return nil, Version{}, err
		}
		for _, w := range c.Warnings {
			l.log.Warn(w)
		}
		raw, bin = c.JSON, c.Bin
		containerVersion = c.Version
	}

	var probe assetProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, Version{}, &ParseError{Reason: "failed to decode JSON", Err: err}
	}

	v, err := resolveVersion(probe.Asset.Version, probe.Asset.MinVersion, containerVersion)
	if err != nil {
		return nil, Version{}, err
	}
	return &LoaderData{JSON: raw, Bin: bin}, v, nil
}

// versionedLoader returns a fresh loader for the major version of v.
func (l *fileLoader) versionedLoader(v Version) (VersionedLoader, error) {
	l.mu.Lock()
	disposed := l.disposed
	l.mu.Unlock()
	if disposed {
		return nil, fmt.Errorf("file loader is disposed")
	}

	switch v.Major {
	case 1:
		if l.legacy == nil {
			return nil, &UnsupportedVersionError{Version: v.String(), Reason: "no legacy loader registered for glTF 1.x"}
		}
		return l.legacy(), nil
	case 2:
		return newGLTFLoader(loaderOptions{
			log:                   l.log,
			fetcher:               l.fetcher,
			registry:              l.registry,
			pool:                  l.pool,
			computeMissingNormals: l.computeMissingNormals,
			convertToLeftHanded:   l.convertToLeftHanded,
			autoStartAnimations:   l.autoStartAnimations,
		}), nil
	default:
		return nil, &UnsupportedVersionError{Version: v.String(), Reason: "unsupported major version"}
	}
}

// prepare parses data and selects the loader for it.
func (l *fileLoader) prepare(data []byte) (VersionedLoader, *LoaderData, error) {
	loaderData, v, err := l.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	vl, err := l.versionedLoader(v)
	if err != nil {
		return nil, nil, err
	}
	l.log.Debug("loading glTF asset", zap.Stringer("version", v))
	return vl, loaderData, nil
}

func (l *fileLoader) ImportMeshAsync(ctx context.Context, names []string, target TargetScene, data []byte, rootURL string, onSuccess func(*ImportResult), onError func(error)) {
	vl, loaderData, err := l.prepare(data)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	vl.ImportMeshAsync(ctx, names, target, loaderData, rootURL, onSuccess, onError)
}

func (l *fileLoader) LoadAsync(ctx context.Context, target TargetScene, data []byte, rootURL string, onSuccess func(), onError func(error)) {
	vl, loaderData, err := l.prepare(data)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	vl.LoadAsync(ctx, target, loaderData, rootURL, onSuccess, onError)
}

func (l *fileLoader) ImportMesh(ctx context.Context, names []string, target TargetScene, data []byte, rootURL string) (*ImportResult, error) {
	vl, loaderData, err := l.prepare(data)
	if err != nil {
		return nil, err
	}

	// the core loader reports partial results alongside errors
	if gl, ok := vl.(*gltfLoader); ok {
		return gl.load(ctx, names, target, loaderData, rootURL)
	}

	type outcome struct {
		result *ImportResult
		err    error
	}
	done := make(chan outcome, 1)
	vl.ImportMeshAsync(ctx, names, target, loaderData, rootURL,
		func(r *ImportResult) { done <- outcome{result: r} },
		func(err error) { done <- outcome{err: err} },
	)
	o := <-done
	return o.result, o.err
}

func (l *fileLoader) Load(ctx context.Context, target TargetScene, data []byte, rootURL string) error {
	done := make(chan error, 1)
	l.LoadAsync(ctx, target, data, rootURL,
		func() { done <- nil },
		func(err error) { done <- err },
	)
	return <-done
}

func (l *fileLoader) LoadFile(ctx context.Context, target TargetScene, filePath string) error {
	ext := strings.ToLower(path.Ext(filePath))
	if _, ok := l.FileExtensions()[ext]; !ok {
		return fmt.Errorf("unsupported model format: %s", ext)
	}

	data, err := l.fetcher.Fetch(ctx, filePath)
	if err != nil {
		return &ResourceLoadError{URI: filePath, Err: err}
	}

	if err := l.Load(ctx, target, data, rootURLOf(filePath)); err != nil {
		return fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	return nil
}

func (l *fileLoader) ExtensionRegistry() *ExtensionRegistry {
	return l.registry
}

func (l *fileLoader) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.disposed = true
	l.pool.Stop()
}

// rootURLOf returns the directory part of a path or URL, with a trailing separator.
func rootURLOf(filePath string) string {
	if strings.Contains(filePath, "://") {
		i := strings.LastIndex(filePath, "/")
		return filePath[:i+1]
	}
	dir := filepath.Dir(filePath)
	if dir == "." {
		return ""
	}
	return dir + string(filepath.Separator)
}
