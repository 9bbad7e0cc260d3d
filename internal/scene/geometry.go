package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rect is an axis-aligned rectangle. Y grows downward.
type Rect struct {
	Left, Top, Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Center() mgl64.Vec2 {
	return mgl64.Vec2{r.Left + r.Width/2, r.Top + r.Height/2}
}

// Contains reports whether p lies inside r (right/bottom edges exclusive).
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p[0] >= r.Left && p[0] < r.Right() && p[1] >= r.Top && p[1] < r.Bottom()
}

// Intersects reports a positive-area overlap. Empty rectangles never intersect.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	left := math.Max(r.Left, o.Left)
	top := math.Max(r.Top, o.Top)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	return left < right && top < bottom
}

// TransformRect maps r through m and returns the axis-aligned bounds of the result.
func TransformRect(m mgl64.Mat3, r Rect) Rect {
	corners := [4]mgl64.Vec2{
		{r.Left, r.Top},
		{r.Right(), r.Top},
		{r.Left, r.Bottom()},
		{r.Right(), r.Bottom()},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := TransformPoint(m, c)
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	return Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// TransformPoint applies the affine transform m to p.
func TransformPoint(m mgl64.Mat3, p mgl64.Vec2) mgl64.Vec2 {
	return m.Mul3x1(p.Vec3(1)).Vec2()
}

// CenteredRect returns a w×h rectangle centred on the origin.
func CenteredRect(w, h float64) Rect {
	return Rect{Left: -w / 2, Top: -h / 2, Width: w, Height: h}
}

// Transform is a node's local position, rotation (degrees, clockwise on a
// y-down screen) and scale.
type Transform struct {
	Position mgl64.Vec2
	Rotation float64
	Scale    mgl64.Vec2
}

func identityTransform() Transform {
	return Transform{Scale: mgl64.Vec2{1, 1}}
}

// Matrix composes translate · rotate · scale.
func (t Transform) Matrix() mgl64.Mat3 {
	m := mgl64.Translate2D(t.Position[0], t.Position[1])
	if t.Rotation != 0 {
		m = m.Mul3(mgl64.HomogRotate2D(mgl64.DegToRad(t.Rotation)))
	}
	if t.Scale != (mgl64.Vec2{1, 1}) {
		m = m.Mul3(mgl64.Scale2D(t.Scale[0], t.Scale[1]))
	}
	return m
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b mgl64.Vec2) float64 {
	return b.Sub(a).Len()
}

// UnitVector returns v scaled to length 1, or the zero vector for zero input.
func UnitVector(v mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec2{}
	}
	return v.Mul(1 / l)
}
