package player

// Key is an opaque key code supplied by the input backend.
type Key int32

// Key codes used by the default bindings.
const (
	KeyUnknown Key = iota - 1
	KeyA
	KeyD
	KeyF
	KeyR
	KeyS
	KeyW
	KeyM
	KeySpace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// KeyState reports which keys are held right now.
type KeyState interface {
	IsKeyPressed(k Key) bool
}

// KeyBinding maps keys to actions for one local player.
type KeyBinding struct {
	keys map[Key]Action
}

// DefaultKeyBinding returns the binding of local player 1 (arrows, space, M)
// or, for any other index, player 2 (WASD, F, R).
func DefaultKeyBinding(localIndex int) *KeyBinding {
	b := &KeyBinding{keys: make(map[Key]Action, ActionCount)}
	if localIndex == 1 {
		b.AssignKey(MoveLeft, KeyLeft)
		b.AssignKey(MoveRight, KeyRight)
		b.AssignKey(MoveUp, KeyUp)
		b.AssignKey(MoveDown, KeyDown)
		b.AssignKey(Fire, KeySpace)
		b.AssignKey(LaunchMissile, KeyM)
		return b
	}
	b.AssignKey(MoveLeft, KeyA)
	b.AssignKey(MoveRight, KeyD)
	b.AssignKey(MoveUp, KeyW)
	b.AssignKey(MoveDown, KeyS)
	b.AssignKey(Fire, KeyF)
	b.AssignKey(LaunchMissile, KeyR)
	return b
}

// AssignKey binds key to action, dropping any other key bound to it.
func (b *KeyBinding) AssignKey(action Action, key Key) {
	for k, a := range b.keys {
		if a == action {
			delete(b.keys, k)
		}
	}
	b.keys[key] = action
}

// AssignedKey returns the key bound to action, or KeyUnknown.
func (b *KeyBinding) AssignedKey(action Action) Key {
	for k, a := range b.keys {
		if a == action {
			return k
		}
	}
	return KeyUnknown
}

// CheckAction resolves key to its action.
func (b *KeyBinding) CheckAction(key Key) (Action, bool) {
	a, ok := b.keys[key]
	return a, ok
}

// RealtimeActions lists the realtime actions whose keys are held, in action order.
func (b *KeyBinding) RealtimeActions(state KeyState) []Action {
	var out []Action
	for a := Action(0); a < ActionCount; a++ {
		if !a.IsRealtime() {
			continue
		}
		if k := b.AssignedKey(a); k != KeyUnknown && state.IsKeyPressed(k) {
			out = append(out, a)
		}
	}
	return out
}
