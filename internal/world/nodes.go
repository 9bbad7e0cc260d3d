package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyraid/server/internal/core/category"
	"github.com/skyraid/server/internal/core/command"
	"github.com/skyraid/server/internal/media"
	"github.com/skyraid/server/internal/scene"
)

// SoundNode forwards PlaySound commands to the audio player.
type SoundNode struct {
	scene.Base
	audio media.Audio
}

func (s *SoundNode) Category() category.Type { return category.SoundEffect }

func (s *SoundNode) PlaySound(effect media.SoundEffect, pos mgl64.Vec2) {
	s.audio.Play(effect, pos)
}

// NetworkNode collects game actions for the network layer, in order.
type NetworkNode struct {
	scene.Base
	pending []command.GameAction
}

func (nn *NetworkNode) Category() category.Type { return category.Network }

func (nn *NetworkNode) NotifyGameAction(a command.GameAction) {
	nn.pending = append(nn.pending, a)
}

// PollGameAction pops the oldest pending action.
func (nn *NetworkNode) PollGameAction() (command.GameAction, bool) {
	if len(nn.pending) == 0 {
		return command.GameAction{}, false
	}
	a := nn.pending[0]
	nn.pending = nn.pending[1:]
	return a, true
}

// SpriteNode draws a fixed texture region with its top-left corner at the
// node origin.
type SpriteNode struct {
	scene.Base
	texture media.TextureID
	rect    media.TextureRect
}

func (s *SpriteNode) DrawCurrent(t media.Target, world mgl64.Mat3) {
	centre := mgl64.Translate2D(float64(s.rect.Width)/2, float64(s.rect.Height)/2)
	t.DrawSprite(s.texture, s.rect, world.Mul3(centre))
}
