package loader

import (
	"time"

	"go.uber.org/zap"
)

// FileLoaderBuilderOption is a functional option for configuring a FileLoader via NewFileLoader.
type FileLoaderBuilderOption func(*fileLoader)

// WithLogger is an option builder that sets the logger used by the FileLoader and every load it runs.
//
// Parameters:
//   - log: the logger, nil keeps the no-op default
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(log *zap.Logger) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithFetcher is an option builder that sets the Fetcher used for external resources.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f Fetcher) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.fetcher = f
	}
}

// WithExtensions is an option builder that replaces the default extensions with exts,
// registered in the given order.
//
// Parameters:
//   - exts: the extensions to register
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the extensions option to a loader
func WithExtensions(exts ...Extension) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.extensions = exts
		l.customExtensions = true
	}
}

// WithLegacyLoader is an option builder that registers the factory used for glTF 1.x assets.
//
// Parameters:
//   - factory: creates a fresh legacy loader per load
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the legacy loader option to a loader
func WithLegacyLoader(factory LegacyLoaderFactory) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.legacy = factory
	}
}

// WithWorkers is an option builder that sets the number of workers resolving resources.
//
// Parameters:
//   - n: the worker count, ignored when not positive
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithQueueSize is an option builder that sets the task queue capacity of the worker pool.
//
// Parameters:
//   - n: the queue capacity, ignored when not positive
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the queue option to a loader
func WithQueueSize(n int) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithIdleTimeout is an option builder that sets the idle timeout of the worker pool.
//
// Parameters:
//   - d: the idle timeout
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the timeout option to a loader
func WithIdleTimeout(d time.Duration) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		if d > 0 {
			l.idleTimeout = d
		}
	}
}

// WithComputeMissingNormals is an option builder that toggles normal generation for
// triangle primitives without a NORMAL attribute.
func WithComputeMissingNormals(enabled bool) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.computeMissingNormals = enabled
	}
}

// WithConvertToLeftHanded is an option builder that toggles the right- to left-handed
// conversion applied through the root node.
func WithConvertToLeftHanded(enabled bool) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.convertToLeftHanded = enabled
	}
}

// WithAutoStartAnimations is an option builder that toggles starting animation groups once a load completes.
func WithAutoStartAnimations(enabled bool) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.autoStartAnimations = enabled
	}
}

// WithDisabledExtensions is an option builder that disables registered extensions by name.
//
// Parameters:
//   - names: the extension names to disable
//
// Returns:
//   - FileLoaderBuilderOption: a function that applies the option to a loader
func WithDisabledExtensions(names ...string) FileLoaderBuilderOption {
	return func(l *fileLoader) {
		l.disabledExtensions = append(l.disabledExtensions, names...)
	}
}
