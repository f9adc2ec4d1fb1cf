package model

import "math"

// Tile is an integer cell coordinate into the height field and every per-tile overlay.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (t Tile) Array() [2]int { return [2]int{t.X, t.Y} }

// Vec2 is a continuous world-space position (map centred on the origin).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Array() [2]float64    { return [2]float64{v.X, v.Y} }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector in v's direction, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}
