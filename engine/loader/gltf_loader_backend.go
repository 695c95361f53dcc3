package loader

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gltf/engine/light"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// loaderOptions is the configuration a FileLoader hands to every versioned loader it creates.
type loaderOptions struct {
	log      *zap.Logger
	fetcher  Fetcher
	registry *ExtensionRegistry
	pool     worker.DynamicWorkerPool

	computeMissingNormals bool
	convertToLeftHanded   bool
	autoStartAnimations   bool
}

// gltfLoader loads a single glTF 2.0 asset. Everything it builds is tracked in per-load slot
// arrays indexed like the document arrays, so every record is built at most once.
//
// Scheduling (barrier.Go) and graph construction happen on the goroutine running load;
// barrier tasks only resolve data and fill in objects that already exist.
type gltfLoader struct {
	opts loaderOptions
	used atomic.Bool

	doc      *Document
	rootURL  string
	target   TargetScene
	resolver *resourceResolver
	barrier  *loadBarrier
	log      *zap.Logger
	parents  []int

	root      *model.Node
	nodes     []*model.Node
	visited   []bool
	meshes    []*model.Mesh
	skins     []*model.Skeleton
	cameras   []*model.Camera
	built     []*model.Node
	meshNodes []*model.Node
	groups    []*model.AnimationGroup

	mu              sync.Mutex
	materials       []material.Material
	textures        map[textureKey]*material.Texture
	images          []*imageSlot
	defaultMaterial material.Material
}

var _ VersionedLoader = &gltfLoader{}
var _ MaterialContext = &gltfLoader{}
var _ NodeContext = &gltfLoader{}

// newGLTFLoader creates a single-use glTF 2.0 loader.
func newGLTFLoader(opts loaderOptions) *gltfLoader {
	if opts.log == nil {
		opts.log = zap.NewNop()
	}
	if opts.registry == nil {
		opts.registry = NewExtensionRegistry(opts.log, DefaultExtensions()...)
	}
	if opts.fetcher == nil {
		opts.fetcher = NewDefaultFetcher(0)
	}
	return &gltfLoader{
		opts: opts,
		log:  opts.log,
	}
}

func (l *gltfLoader) ImportMeshAsync(ctx context.Context, names []string, target TargetScene, data *LoaderData, rootURL string, onSuccess func(*ImportResult), onError func(error)) {
	go func() {
		result, err := l.load(ctx, names, target, data, rootURL)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(result)
		}
	}()
}

func (l *gltfLoader) LoadAsync(ctx context.Context, target TargetScene, data *LoaderData, rootURL string, onSuccess func(), onError func(error)) {
	go func() {
		if _, err := l.load(ctx, nil, target, data, rootURL); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess()
		}
	}()
}

func (l *gltfLoader) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.doc = nil
	l.resolver = nil
	l.nodes = nil
	l.visited = nil
	l.meshes = nil
	l.skins = nil
	l.cameras = nil
	l.materials = nil
	l.textures = nil
	l.images = nil
}

// load runs one complete load and returns once every scheduled task has settled.
func (l *gltfLoader) load(ctx context.Context, names []string, target TargetScene, data *LoaderData, rootURL string) (*ImportResult, error) {
	if !l.used.CompareAndSwap(false, true) {
		return nil, errLoaderReused
	}
	if data == nil {
		return nil, parseErrorf("missing loader data")
	}

	doc, err := documentFromJSON(data.JSON)
	if err != nil {
		return nil, err
	}
	if err := l.checkRequiredExtensions(doc); err != nil {
		return nil, err
	}

	l.setup(ctx, doc, target, data.Bin, rootURL)
	defer l.Dispose()

	l.loadScene(names)
	l.loadSkins()
	l.loadAnimations()

	err = l.barrier.Wait()
	l.showMeshes()
	l.startAnimations()

	result := &ImportResult{
		Nodes:           l.built,
		MeshNodes:       l.meshNodes,
		Skeletons:       l.loadedSkeletons(),
		AnimationGroups: l.groups,
	}
	if err != nil {
		for _, e := range multierr.Errors(err) {
			l.log.Error("glTF load error", zap.Error(e))
		}
		return result, err
	}
	return result, nil
}

// checkRequiredExtensions rejects documents requiring an extension the registry cannot serve.
func (l *gltfLoader) checkRequiredExtensions(doc *Document) error {
	for _, name := range doc.ExtensionsRequired {
		if !l.opts.registry.Supports(name) {
			return parseErrorf("required extension %s is not available", name)
		}
	}
	return nil
}

func (l *gltfLoader) setup(ctx context.Context, doc *Document, target TargetScene, bin []byte, rootURL string) {
	l.doc = doc
	l.rootURL = rootURL
	l.target = target
	l.resolver = newResourceResolver(doc, rootURL, l.opts.fetcher, bin, l.log)
	l.barrier = newLoadBarrier(ctx, l.opts.pool, l.log)
	l.parents = doc.parentIndices()

	l.nodes = make([]*model.Node, len(doc.Nodes))
	l.visited = make([]bool, len(doc.Nodes))
	l.meshes = make([]*model.Mesh, len(doc.Meshes))
	l.skins = make([]*model.Skeleton, len(doc.Skins))
	l.cameras = make([]*model.Camera, len(doc.Cameras))
	l.materials = make([]material.Material, len(doc.Materials))
	l.textures = make(map[textureKey]*material.Texture)
	l.images = make([]*imageSlot, len(doc.Images))
}

// showMeshes enables every node created by the load.
func (l *gltfLoader) showMeshes() {
	for _, n := range l.built {
		n.SetEnabled(true)
	}
}

func (l *gltfLoader) startAnimations() {
	if !l.opts.autoStartAnimations {
		return
	}
	for _, g := range l.groups {
		g.Start(true)
	}
}

func (l *gltfLoader) loadedSkeletons() []*model.Skeleton {
	var out []*model.Skeleton
	for _, s := range l.skins {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// --- MaterialContext / NodeContext ---

func (l *gltfLoader) Document() *Document {
	return l.doc
}

func (l *gltfLoader) Logger() *zap.Logger {
	return l.log
}

func (l *gltfLoader) AddLight(lt light.Light) {
	l.target.AddLight(lt)
}
