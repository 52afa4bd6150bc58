package app

import (
	"math"

	"vulkan_engine/model"
	vm "vulkan_engine/vector_math"

	"github.com/veandco/go-sdl2/sdl"
)

// KeyState is SDL's scancode indexed keyboard table, non-zero for pressed keys (see sdl.GetKeyboardState).
type KeyState []uint8

func (k KeyState) Pressed(code sdl.Scancode) bool {
	return int(code) < len(k) && k[code] != 0
}

type KeyMappings struct {
	MoveLeft     sdl.Scancode
	MoveRight    sdl.Scancode
	MoveForward  sdl.Scancode
	MoveBackward sdl.Scancode
	MoveUp       sdl.Scancode
	MoveDown     sdl.Scancode
	LookLeft     sdl.Scancode
	LookRight    sdl.Scancode
	LookUp       sdl.Scancode
	LookDown     sdl.Scancode
}

func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		MoveLeft:     sdl.SCANCODE_A,
		MoveRight:    sdl.SCANCODE_D,
		MoveForward:  sdl.SCANCODE_W,
		MoveBackward: sdl.SCANCODE_S,
		MoveUp:       sdl.SCANCODE_E,
		MoveDown:     sdl.SCANCODE_Q,
		LookLeft:     sdl.SCANCODE_LEFT,
		LookRight:    sdl.SCANCODE_RIGHT,
		LookUp:       sdl.SCANCODE_UP,
		LookDown:     sdl.SCANCODE_DOWN,
	}
}

const maxPitch = 1.5

// KeyboardMovementController moves a game object, usually the camera's viewer object, in the xz plane.
type KeyboardMovementController struct {
	Keys      KeyMappings
	MoveSpeed float32
	LookSpeed float32
}

func NewKeyboardMovementController() *KeyboardMovementController {
	return &KeyboardMovementController{
		Keys:      DefaultKeyMappings(),
		MoveSpeed: 3,
		LookSpeed: 1.5,
	}
}

func axis(keys KeyState, pos sdl.Scancode, neg sdl.Scancode) float32 {
	var v float32
	if keys.Pressed(pos) {
		v++
	}
	if keys.Pressed(neg) {
		v--
	}
	return v
}

// MoveInPlaneXZ turns obj by the look keys and moves it along its yaw by the move keys, both scaled by dt.
// Pitch is clamped to +-1.5 rad and yaw is wrapped into [0, 2pi).
func (c *KeyboardMovementController) MoveInPlaneXZ(keys KeyState, dt float32, obj *model.GameObject) {
	rotate := vm.Vec3{
		X: axis(keys, c.Keys.LookUp, c.Keys.LookDown),
		Y: axis(keys, c.Keys.LookRight, c.Keys.LookLeft),
	}
	if rotate.Dot(rotate) > math.SmallestNonzeroFloat32 {
		obj.Transform.Rotation = obj.Transform.Rotation.Add(rotate.Norm().ScalarMul(c.LookSpeed * dt))
	}

	rot := &obj.Transform.Rotation
	rot.X = float32(math.Max(-maxPitch, math.Min(maxPitch, float64(rot.X))))
	yaw := math.Mod(float64(rot.Y), 2*math.Pi)
	if yaw < 0 {
		yaw += 2 * math.Pi
	}
	rot.Y = float32(yaw)

	forward := vm.Vec3{X: float32(math.Sin(yaw)), Z: float32(math.Cos(yaw))}
	right := vm.Vec3{X: forward.Z, Z: -forward.X}
	up := vm.Vec3{Y: -1}

	move := forward.ScalarMul(axis(keys, c.Keys.MoveForward, c.Keys.MoveBackward)).
		Add(right.ScalarMul(axis(keys, c.Keys.MoveRight, c.Keys.MoveLeft))).
		Add(up.ScalarMul(axis(keys, c.Keys.MoveUp, c.Keys.MoveDown)))
	if move.Dot(move) > math.SmallestNonzeroFloat32 {
		obj.Transform.Translation = obj.Transform.Translation.Add(move.Norm().ScalarMul(c.MoveSpeed * dt))
	}
}
