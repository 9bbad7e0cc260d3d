package media

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingResource is returned when a resource id has no loaded asset.
var ErrMissingResource = errors.New("missing resource")

// Holder stores loaded resources by symbolic identifier.
type Holder[ID comparable, R any] struct {
	resources map[ID]R
}

func NewHolder[ID comparable, R any]() *Holder[ID, R] {
	return &Holder[ID, R]{resources: make(map[ID]R)}
}

// Load resolves path with loader and stores the result under id.
func (h *Holder[ID, R]) Load(id ID, path string, loader func(string) (R, error)) error {
	r, err := loader(path)
	if err != nil {
		return fmt.Errorf("load %v from %s: %w", id, path, err)
	}
	h.resources[id] = r
	return nil
}

// Get returns the resource for id or ErrMissingResource.
func (h *Holder[ID, R]) Get(id ID) (R, error) {
	r, ok := h.resources[id]
	if !ok {
		var zero R
		return zero, fmt.Errorf("%w: %v", ErrMissingResource, id)
	}
	return r, nil
}

func (h *Holder[ID, R]) Len() int {
	return len(h.resources)
}

// Texture is the headless view of a texture asset: the simulation only needs
// to know that it exists.
type Texture struct {
	ID   TextureID
	Path string
	Size int64
}

// Textures resolves texture ids.
type Textures interface {
	Texture(id TextureID) (Texture, error)
}

// TextureHolder is a Holder of Textures that satisfies Textures.
type TextureHolder struct {
	*Holder[TextureID, Texture]
}

func NewTextureHolder() *TextureHolder {
	return &TextureHolder{Holder: NewHolder[TextureID, Texture]()}
}

func (h *TextureHolder) Texture(id TextureID) (Texture, error) {
	return h.Get(id)
}

// LoadFile registers a texture after checking the file is present.
func (h *TextureHolder) LoadFile(id TextureID, path string) error {
	return h.Load(id, path, func(p string) (Texture, error) {
		fi, err := os.Stat(p)
		if err != nil {
			return Texture{}, err
		}
		if fi.IsDir() {
			return Texture{}, fmt.Errorf("%s is a directory", p)
		}
		return Texture{ID: id, Path: p, Size: fi.Size()}, nil
	})
}
