// Package texture caches GPU textures and their samplers by texture ID.
package texture

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/transfer"
)

var (
	// ErrMissingID is returned for a texture with neither an ID nor a path.
	ErrMissingID = errors.New("texture has no id or path")

	// ErrNoPixels is returned for a texture with neither pixel data nor a path.
	ErrNoPixels = errors.New("texture has no pixel data or path")
)

// Error reports a failure to create a cached texture.
type Error struct {
	ID  string
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("texture %q: %s: %v", e.ID, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CachedTexture is a GPU texture and the sampler it is read with. The zero value is the empty entry returned
// for unknown IDs.
type CachedTexture struct {
	Texture device.Texture
	Sampler device.Sampler
}

// IsEmpty reports whether the entry holds no sampler, i.e. nothing can be bound from it.
func (c CachedTexture) IsEmpty() bool {
	return c.Sampler == nil
}

type cache struct {
	dev     device.Device
	fsys    fs.FS
	entries map[string]CachedTexture

	workers int
	pool    worker.DynamicWorkerPool

	// decoded holds pixels produced by Preload, waiting for their upload on the render thread
	mu      *sync.Mutex
	decoded map[string]Pixels
}

// Cache maps texture IDs to GPU textures and samplers. Inserting is idempotent: the first creation of an ID
// wins and later requests return the existing entry unchanged. The filter and wrap of a later request for a
// known ID are ignored.
//
// Every method must be called from the render thread. Only the decoding started by Preload runs in parallel.
type Cache interface {
	// GetOrCreate returns the entry for the texture's ID, creating and uploading it on a miss.
	//
	// Parameters:
	//   - cmd: the command buffer the upload is recorded into; no pass may be open on it
	//   - tex: the texture descriptor
	//
	// Returns:
	//   - CachedTexture: the cached entry
	//   - error: a *Error when the texture could not be created; nothing is cached in that case
	GetOrCreate(cmd device.CommandBuffer, tex draw.Texture) (CachedTexture, error)

	// Get returns the entry for an ID, or the empty entry when the ID is unknown.
	//
	// Parameters:
	//   - id: the texture ID
	//
	// Returns:
	//   - CachedTexture: the cached entry or the empty entry
	Get(id string) CachedTexture

	// Preload decodes file-backed textures in parallel on a worker pool. The decoded pixels are uploaded by
	// the next GetOrCreate for the same ID. Textures already cached, already decoded or not file-backed are
	// skipped.
	//
	// Parameters:
	//   - textures: the textures to decode
	//
	// Returns:
	//   - error: the joined decode errors, nil when every file decoded
	Preload(textures ...draw.Texture) error

	// Len returns the number of cached entries.
	Len() int

	// ReleaseAll releases every cached texture and sampler and empties the cache.
	ReleaseAll()
}

var _ Cache = &cache{}

// NewCache creates an empty texture cache on the given device.
//
// Parameters:
//   - dev: the device textures and samplers are created on
//   - options: CacheBuilderOption functions to configure the cache
//
// Returns:
//   - Cache: the created cache
func NewCache(dev device.Device, options ...CacheBuilderOption) Cache {
	c := &cache{
		dev:     dev,
		entries: make(map[string]CachedTexture),
		workers: max(runtime.NumCPU()-1, 1),
		mu:      &sync.Mutex{},
		decoded: make(map[string]Pixels),
	}
	for _, opt := range options {
		opt(c)
	}
	c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	return c
}

func (c *cache) GetOrCreate(cmd device.CommandBuffer, tex draw.Texture) (CachedTexture, error) {
	id := tex.Key()
	if id == "" {
		return CachedTexture{}, &Error{Op: "resolve", Err: ErrMissingID}
	}
	if entry, ok := c.entries[id]; ok {
		common.Logger().Debug("texture cache hit", "id", id)
		return entry, nil
	}

	px, err := c.pixels(id, tex)
	if err != nil {
		return CachedTexture{}, &Error{ID: id, Op: "load", Err: err}
	}

	gpuTex, err := c.dev.CreateTexture(&device.TextureDescriptor{
		Label:     id,
		Format:    device.TextureFormatRGBA8Unorm,
		Usage:     device.TextureUsageSampler,
		Width:     px.Width,
		Height:    px.Height,
		NumLevels: 1,
	})
	if err != nil {
		return CachedTexture{}, &Error{ID: id, Op: "create texture", Err: err}
	}

	if err := transfer.UploadTexture(c.dev, cmd, gpuTex, px.Data, px.Width, px.Height); err != nil {
		gpuTex.Release()
		return CachedTexture{}, &Error{ID: id, Op: "upload", Err: err}
	}

	addressMode := addressModeFromWrap(tex.Wrap)
	filter := filterFromTextureFilter(tex.Filter)
	sampler, err := c.dev.CreateSampler(&device.SamplerDescriptor{
		Label:        id + " Sampler",
		MinFilter:    filter,
		MagFilter:    filter,
		MipmapMode:   device.SamplerMipmapModeLinear,
		AddressModeU: addressMode,
		AddressModeV: addressMode,
		AddressModeW: addressMode,
	})
	if err != nil {
		gpuTex.Release()
		return CachedTexture{}, &Error{ID: id, Op: "create sampler", Err: err}
	}

	entry := CachedTexture{Texture: gpuTex, Sampler: sampler}
	c.entries[id] = entry
	common.Logger().Debug("texture cached", "id", id, "width", px.Width, "height", px.Height)
	return entry, nil
}

// pixels returns the RGBA8 data of a texture, preferring preloaded pixels for file-backed textures.
func (c *cache) pixels(id string, tex draw.Texture) (Pixels, error) {
	if len(tex.Pixels) > 0 {
		return Normalize(tex.Pixels, tex.Width, tex.Height, tex.Format)
	}
	if tex.Path == "" {
		return Pixels{}, ErrNoPixels
	}

	c.mu.Lock()
	px, ok := c.decoded[id]
	delete(c.decoded, id)
	c.mu.Unlock()
	if ok {
		return px, nil
	}
	return LoadFile(c.fsys, tex.Path)
}

func (c *cache) Get(id string) CachedTexture {
	return c.entries[id]
}

func (c *cache) Preload(textures ...draw.Texture) error {
	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)

	taskID := 0
	queued := make(map[string]bool)
	for _, tex := range textures {
		id := tex.Key()
		if tex.Path == "" || len(tex.Pixels) > 0 || id == "" || queued[id] {
			continue
		}
		if _, ok := c.entries[id]; ok {
			continue
		}
		c.mu.Lock()
		_, ok := c.decoded[id]
		c.mu.Unlock()
		if ok {
			continue
		}
		queued[id] = true

		wg.Add(1)
		path := tex.Path
		taskID++
		c.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()

				px, err := LoadFile(c.fsys, path)
				if err != nil {
					errMu.Lock()
					errs = append(errs, &Error{ID: id, Op: "preload", Err: err})
					errMu.Unlock()
					return nil, err
				}
				c.mu.Lock()
				c.decoded[id] = px
				c.mu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()

	common.Logger().Debug("textures preloaded", "count", len(queued), "failed", len(errs))
	return errors.Join(errs...)
}

func (c *cache) Len() int {
	return len(c.entries)
}

func (c *cache) ReleaseAll() {
	for id, entry := range c.entries {
		if entry.Sampler != nil {
			entry.Sampler.Release()
		}
		if entry.Texture != nil {
			entry.Texture.Release()
		}
		delete(c.entries, id)
	}

	c.mu.Lock()
	clear(c.decoded)
	c.mu.Unlock()
}

func filterFromTextureFilter(f common.TextureFilter) device.Filter {
	if f == common.TextureFilterNearest {
		return device.FilterNearest
	}
	return device.FilterLinear
}

func addressModeFromWrap(w common.TextureWrap) device.SamplerAddressMode {
	switch w {
	case common.TextureWrapMirroredRepeat:
		return device.SamplerAddressModeMirroredRepeat
	case common.TextureWrapRepeat:
		return device.SamplerAddressModeRepeat
	default:
		return device.SamplerAddressModeClampToEdge
	}
}
