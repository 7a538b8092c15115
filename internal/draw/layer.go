package draw

import (
	"sync"
	"time"

	"github.com/oledock/oledock/internal/bitmap"
)

// LayerID identifies a layer for the lifetime of a DrawDevice. Ids are
// monotonically increasing and never reused.
type LayerID uint64

// NoLayer is the reserved "no layer" id.
const NoLayer LayerID = 0

// Frame is one step of an animation: a bitmap plus an optional display
// delay (zero means unspecified).
type Frame struct {
	Bitmap *bitmap.Bitmap
	Delay  time.Duration
}

// Layer is a drawable composited onto the screen each tick. It is one of
// ImageLayer, AnimationLayer or ScrollLayer.
type Layer interface {
	drawLayer()
}

// ImageLayer is a static bitmap at a fixed position.
type ImageLayer struct {
	Bitmap *bitmap.Bitmap
	X, Y   int
}

// AnimationLayer cycles through a frame sequence. With FollowFPS the
// animation advances one frame per render tick, otherwise each frame's own
// delay drives the schedule.
type AnimationLayer struct {
	Frames    []Frame
	X, Y      int
	FollowFPS bool
}

// ScrollLayer scrolls a bitmap horizontally with tiled repetition. The x
// position is owned by the render thread.
type ScrollLayer struct {
	Bitmap *bitmap.Bitmap
	Y      int
}

func (ImageLayer) drawLayer()     {}
func (AnimationLayer) drawLayer() {}
func (ScrollLayer) drawLayer()    {}

// Per-layer render state, mutated only by the render thread.
type animState struct {
	ticks      int
	nextUpdate time.Time
}

type scrollState struct {
	x int
}

type layerEntry struct {
	id     LayerID
	layer  Layer
	anim   animState
	scroll scrollState
}

// layerStore is the ordered layer collection shared between the producer
// and the render thread. Iteration order equals insertion order: later
// layers composite on top of earlier ones.
type layerStore struct {
	lock    sync.Mutex
	entries []*layerEntry
	lastID  LayerID
}

func (s *layerStore) add(layer Layer) LayerID {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addLocked(layer)
}

func (s *layerStore) addLocked(layer Layer) LayerID {
	s.lastID++
	s.entries = append(s.entries, &layerEntry{
		id:    s.lastID,
		layer: layer,
	})
	return s.lastID
}

func (s *layerStore) remove(id LayerID) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.removeLocked(id)
}

func (s *layerStore) removeLocked(id LayerID) {
	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *layerStore) removeMany(ids []LayerID) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, id := range ids {
		s.removeLocked(id)
	}
}

func (s *layerStore) clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.entries = nil
}

// replace performs a remove-then-add edit under a single lock hold, so the
// render thread can never observe the intermediate state.
func (s *layerStore) replace(removeIDs []LayerID, add []Layer) []LayerID {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, id := range removeIDs {
		s.removeLocked(id)
	}
	ids := make([]LayerID, 0, len(add))
	for _, layer := range add {
		ids = append(ids, s.addLocked(layer))
	}
	return ids
}
