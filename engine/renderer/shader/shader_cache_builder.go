package shader

import "io/fs"

// CacheBuilderOption is a functional option applied to a shader cache during construction via NewCache.
type CacheBuilderOption func(*cache)

// WithCompiler replaces the naga compiler used for WGSL source.
//
// Parameters:
//   - compiler: the compiler to use
//
// Returns:
//   - CacheBuilderOption: a function that applies the compiler option to a cache
func WithCompiler(compiler Compiler) CacheBuilderOption {
	return func(c *cache) {
		if compiler != nil {
			c.compiler = compiler
		}
	}
}

// WithDebug asks the compiler for debug output.
//
// Parameters:
//   - debug: whether compile requests are flagged as debug builds
//
// Returns:
//   - CacheBuilderOption: a function that applies the debug option to a cache
func WithDebug(debug bool) CacheBuilderOption {
	return func(c *cache) {
		c.debug = debug
	}
}

// WithFS makes the cache read shader files from fsys instead of the host filesystem.
//
// Parameters:
//   - fsys: the filesystem shader paths are resolved in
//
// Returns:
//   - CacheBuilderOption: a function that applies the filesystem option to a cache
func WithFS(fsys fs.FS) CacheBuilderOption {
	return func(c *cache) {
		c.fsys = fsys
	}
}
