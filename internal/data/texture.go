package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skyraid/server/internal/media"
)

type textureFile struct {
	Textures map[string]string `yaml:"textures"`
}

// TextureManifest maps every texture id to a file path relative to the asset directory.
type TextureManifest struct {
	paths map[media.TextureID]string
}

// LoadTextureManifest loads textures.yaml. Unknown names and missing ids are errors.
func LoadTextureManifest(path string) (*TextureManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture manifest: %w", err)
	}
	var f textureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse texture manifest: %w", err)
	}
	m := &TextureManifest{paths: make(map[media.TextureID]string, len(f.Textures))}
	for name, p := range f.Textures {
		id, err := media.ParseTextureID(name)
		if err != nil {
			return nil, fmt.Errorf("texture manifest: %w", err)
		}
		m.paths[id] = p
	}
	for _, id := range media.AllTextures() {
		if _, ok := m.paths[id]; !ok {
			return nil, fmt.Errorf("texture manifest: %w: %s", media.ErrMissingResource, id)
		}
	}
	return m, nil
}

// Path returns the manifest entry of id.
func (m *TextureManifest) Path(id media.TextureID) string {
	return m.paths[id]
}

// Count returns the number of manifest entries.
func (m *TextureManifest) Count() int {
	return len(m.paths)
}

// LoadInto registers every texture file under dir with h.
func (m *TextureManifest) LoadInto(h *media.TextureHolder, dir string) error {
	for _, id := range media.AllTextures() {
		if err := h.LoadFile(id, filepath.Join(dir, m.paths[id])); err != nil {
			return err
		}
	}
	return nil
}
