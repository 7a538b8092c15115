package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oledock/oledock/internal/bitmap"
)

func storeIDs(s *layerStore) []LayerID {
	s.lock.Lock()
	defer s.lock.Unlock()
	ids := make([]LayerID, 0, len(s.entries))
	for _, e := range s.entries {
		ids = append(ids, e.id)
	}
	return ids
}

func TestLayerStoreIDsMonotonic(t *testing.T) {
	s := &layerStore{}
	bm := bitmap.New(1, 1, true)

	a := s.add(ImageLayer{Bitmap: bm})
	b := s.add(ImageLayer{Bitmap: bm})
	assert.Greater(t, a, NoLayer)
	assert.Greater(t, b, a)

	s.remove(a)
	c := s.add(ImageLayer{Bitmap: bm})
	assert.Greater(t, c, b, "ids are never reused after removal")
	assert.Equal(t, []LayerID{b, c}, storeIDs(s))
}

func TestLayerStoreRemove(t *testing.T) {
	s := &layerStore{}
	bm := bitmap.New(1, 1, true)
	a := s.add(ImageLayer{Bitmap: bm})
	b := s.add(ImageLayer{Bitmap: bm})
	c := s.add(ImageLayer{Bitmap: bm})

	s.remove(b)
	assert.Equal(t, []LayerID{a, c}, storeIDs(s))

	// Unknown and already-removed ids are silent no-ops.
	s.remove(b)
	s.remove(LayerID(999))
	assert.Equal(t, []LayerID{a, c}, storeIDs(s))

	s.removeMany([]LayerID{a, c})
	assert.Empty(t, storeIDs(s))
}

func TestLayerStoreClear(t *testing.T) {
	s := &layerStore{}
	bm := bitmap.New(1, 1, true)
	s.add(ImageLayer{Bitmap: bm})
	s.add(ScrollLayer{Bitmap: bm})
	s.clear()
	assert.Empty(t, storeIDs(s))

	// Adding after clear keeps counting from where it left off.
	id := s.add(ImageLayer{Bitmap: bm})
	assert.Equal(t, LayerID(3), id)
}

func TestLayerStoreReplace(t *testing.T) {
	s := &layerStore{}
	bm := bitmap.New(1, 1, true)
	a := s.add(ImageLayer{Bitmap: bm})
	b := s.add(ImageLayer{Bitmap: bm})

	ids := s.replace([]LayerID{a}, []Layer{
		ImageLayer{Bitmap: bm},
		ScrollLayer{Bitmap: bm},
	})
	require.Len(t, ids, 2)
	assert.Equal(t, []LayerID{b, ids[0], ids[1]}, storeIDs(s))
}
