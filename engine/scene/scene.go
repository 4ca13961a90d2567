package scene

import (
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

// Scene manages a registry of GameObjects and records them into frame command lists.
// Objects are drawn in ID order. Every object starts with its material: CompileMaterial the first time the
// scene records that material, SetMaterial afterwards. Selecting the material again drops the previous
// object's uniforms, so each draw pushes only its own.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering. An inactive scene records nothing.
	SetActive(active bool)

	// Background returns the color the scene clears its frame to.
	//
	// Returns:
	//   - common.Color: the background color
	//   - bool: false when the scene leaves the renderer's clear color in place
	Background() (common.Color, bool)

	// SetBackground makes every recorded frame start with a Clear to c.
	SetBackground(c common.Color)

	// Count returns the number of persisted GameObjects in the scene's registry. Does not include ephemeral objects.
	//
	// Returns:
	//   - int: count of non-ephemeral GameObjects in the registry
	Count() int

	// CountEphemeral returns the number of ephemeral GameObjects waiting for the next recorded frame.
	//
	// Returns:
	//   - int: count of pending ephemeral GameObjects
	CountEphemeral() int

	// Add adds a GameObject to the scene. Objects without an ID are assigned the next free one. Ephemeral
	// objects are drawn by the next recorded frame only and are never persisted in the registry.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the ID of the object
	Add(obj game_object.GameObject) uint64

	// Get returns the persisted GameObject with the given ID, or nil.
	//
	// Parameters:
	//   - id: the ID of the object
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil if not found
	Get(id uint64) game_object.GameObject

	// Remove removes the persisted GameObject with the given ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the ID of the object to remove
	Remove(id uint64)

	// Clear removes every object, ephemeral ones included.
	Clear()

	// Update advances every persisted object by deltaTime.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// Record appends the commands drawing the scene to fb. Disabled objects and objects whose material has
	// no shaders are skipped.
	//
	// Parameters:
	//   - fb: the frame to append to
	Record(fb *draw.FrameBuffer)

	// Frame runs Update then Record into a buffer owned by the scene, which is reused by the next call. It can
	// be used directly as an engine frame source.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - draw.FrameBuffer: the recorded frame
	Frame(deltaTime float32) draw.FrameBuffer
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	background    common.Color
	hasBackground bool

	registry  map[uint64]game_object.GameObject // non-ephemeral objects by ID
	ephemeral []game_object.GameObject
	nextID    uint64

	// compiled holds the keys of the materials already sent with CompileMaterial
	compiled map[string]bool

	// frame is reused by Frame to avoid per-frame allocations
	frame draw.FrameBuffer
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new, inactive Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
		compiled: make(map[string]bool),
	}

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Background() (common.Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background, s.hasBackground
}

func (s *scene) SetBackground(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = c
	s.hasBackground = true
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) CountEphemeral() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ephemeral)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add registers obj. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
	}
	s.nextID = max(s.nextID, obj.ID()+1)

	if obj.Ephemeral() {
		s.ephemeral = append(s.ephemeral, obj)
		return obj.ID()
	}
	s.registry[obj.ID()] = obj
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]game_object.GameObject)
	s.ephemeral = nil
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.registry {
		obj.Update(deltaTime)
	}
}

func (s *scene) Record(fb *draw.FrameBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fb)
}

// record appends the scene's commands to fb and drops the ephemeral objects. Caller must hold s.mu write lock.
func (s *scene) record(fb *draw.FrameBuffer) {
	if !s.active {
		return
	}
	if s.hasBackground {
		fb.Add(draw.Clear{Color: s.background})
	}

	ids := make([]uint64, 0, len(s.registry))
	for id := range s.registry {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	objects := make([]game_object.GameObject, 0, len(ids)+len(s.ephemeral))
	for _, id := range ids {
		objects = append(objects, s.registry[id])
	}
	objects = append(objects, s.ephemeral...)
	s.ephemeral = s.ephemeral[:0]

	for _, obj := range objects {
		if !obj.Enabled() {
			continue
		}
		m := obj.Material()
		if m.Shader.Vertex.Key() == "" || m.Shader.Fragment.Key() == "" {
			continue
		}

		if key := materialKey(m); s.compiled[key] {
			fb.Add(draw.SetMaterial{Material: m})
		} else {
			fb.Add(draw.CompileMaterial{Material: m})
			s.compiled[key] = true
		}

		for _, data := range obj.Uniforms() {
			fb.Add(draw.UploadShaderData{Data: data})
		}
		fb.Add(draw.DrawMesh{Mesh: obj.Mesh()})
	}
}

func (s *scene) Frame(deltaTime float32) draw.FrameBuffer {
	s.Update(deltaTime)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Reset()
	s.record(&s.frame)
	return s.frame
}

// materialKey identifies a material by its shader and texture keys.
func materialKey(m draw.Material) string {
	var b strings.Builder
	b.WriteString(m.Shader.Vertex.Key())
	b.WriteByte('|')
	b.WriteString(m.Shader.Fragment.Key())
	for _, t := range m.Textures {
		b.WriteByte('|')
		b.WriteString(t.Key())
	}
	return b.String()
}
