package math

/**
 * @brief An axis-aligned rectangle stored as its minimum corner and size.
 */
type Rect struct {
	/** @brief The minimum (bottom-left) corner. */
	Min Vec2
	/** @brief Width and height. */
	Size Vec2
}

/**
 * @brief Creates a rectangle of the given size centered on center.
 */
func NewRectCentered(center, size Vec2) Rect {
	return Rect{Min: center.Sub(size.MulScalar(0.5)), Size: size}
}

func (r Rect) Max() Vec2 {
	return r.Min.Add(r.Size)
}

func (r Rect) Center() Vec2 {
	return r.Min.Add(r.Size.MulScalar(0.5))
}

func (r Rect) Width() float32 {
	return r.Size.X
}

func (r Rect) Height() float32 {
	return r.Size.Y
}

// SetXMin moves the left edge, keeping the right edge in place.
func (r *Rect) SetXMin(x float32) {
	max := r.Max()
	r.Min.X = x
	r.Size.X = max.X - x
}

// SetXMax moves the right edge, keeping the left edge in place.
func (r *Rect) SetXMax(x float32) {
	r.Size.X = x - r.Min.X
}

// SetYMin moves the bottom edge, keeping the top edge in place.
func (r *Rect) SetYMin(y float32) {
	max := r.Max()
	r.Min.Y = y
	r.Size.Y = max.Y - y
}

// SetYMax moves the top edge, keeping the bottom edge in place.
func (r *Rect) SetYMax(y float32) {
	r.Size.Y = y - r.Min.Y
}
