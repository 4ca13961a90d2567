package texture

import "io/fs"

// CacheBuilderOption is a functional option applied to a texture cache during construction via NewCache.
type CacheBuilderOption func(*cache)

// WithFS makes the cache read texture files from fsys instead of the host filesystem.
//
// Parameters:
//   - fsys: the filesystem texture paths are resolved in
//
// Returns:
//   - CacheBuilderOption: a function that applies the filesystem option to a cache
func WithFS(fsys fs.FS) CacheBuilderOption {
	return func(c *cache) {
		c.fsys = fsys
	}
}

// WithPreloadWorkers sets the number of goroutines used by Preload. Defaults to NumCPU-1, at least 1.
//
// Parameters:
//   - n: the number of decode workers
//
// Returns:
//   - CacheBuilderOption: a function that applies the worker count option to a cache
func WithPreloadWorkers(n int) CacheBuilderOption {
	return func(c *cache) {
		if n > 0 {
			c.workers = n
		}
	}
}
