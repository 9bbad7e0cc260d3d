// Package media declares the collaborators the simulation talks to but does
// not implement: texture resources, a render target and an audio player.
package media

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// TextureID names a texture resource.
type TextureID int

const (
	TextureEntities TextureID = iota
	TextureJungle
	TextureExplosion
	TextureParticle
	TextureFinishLine
	textureCount
)

var textureNames = [textureCount]string{"entities", "jungle", "explosion", "particle", "finish_line"}

func (t TextureID) String() string {
	if t < 0 || t >= textureCount {
		return fmt.Sprintf("texture(%d)", int(t))
	}
	return textureNames[t]
}

// ParseTextureID resolves a manifest name to its TextureID.
func ParseTextureID(name string) (TextureID, error) {
	for i, n := range textureNames {
		if n == name {
			return TextureID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: texture %q", ErrMissingResource, name)
}

// AllTextures lists every texture the simulation may request.
func AllTextures() []TextureID {
	out := make([]TextureID, 0, textureCount)
	for t := TextureID(0); t < textureCount; t++ {
		out = append(out, t)
	}
	return out
}

// TextureRect is a sub-rectangle of a texture, in pixels.
type TextureRect struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Target receives draw requests from the scene graph. The world transform maps
// the sprite's local space (origin at the sprite centre) to world space. A zero
// rect selects the whole texture.
type Target interface {
	DrawSprite(tex TextureID, rect TextureRect, world mgl64.Mat3)
}

// SoundEffect identifies a one-shot sound.
type SoundEffect int

const (
	SoundAlliedGunfire SoundEffect = iota
	SoundEnemyGunfire
	SoundExplosion1
	SoundExplosion2
	SoundLaunchMissile
	SoundCollectPickup
	SoundButton
)

// Audio plays fire-and-forget effects. The player owns playback lifetime;
// RemoveStoppedSounds is called once per frame as maintenance.
type Audio interface {
	Play(effect SoundEffect, position mgl64.Vec2)
	SetListenerPosition(position mgl64.Vec2)
	RemoveStoppedSounds()
}

// NopAudio discards every request. Used by the headless server.
type NopAudio struct{}

func (NopAudio) Play(SoundEffect, mgl64.Vec2)    {}
func (NopAudio) SetListenerPosition(mgl64.Vec2) {}
func (NopAudio) RemoveStoppedSounds()           {}
