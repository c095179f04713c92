package view

// Carousel tracks the active slide of a multi-image listing. The index is
// always in [0, N) and exactly one indicator is active.
type Carousel struct {
	n     int
	index int
}

// NewCarousel creates a carousel over n slides starting at the first.
func NewCarousel(n int) *Carousel {
	if n < 0 {
		n = 0
	}
	return &Carousel{n: n}
}

// Len returns the number of slides.
func (c *Carousel) Len() int { return c.n }

// Index returns the active slide.
func (c *Carousel) Index() int { return c.index }

// Move advances by delta slides, wrapping at either end.
func (c *Carousel) Move(delta int) {
	if c.n == 0 {
		return
	}
	c.index = ((c.index+delta)%c.n + c.n) % c.n
}

// GoTo jumps to slide i. Out-of-range values are ignored.
func (c *Carousel) GoTo(i int) {
	if i < 0 || i >= c.n {
		return
	}
	c.index = i
}

// Indicators returns one flag per slide, set only for the active one.
func (c *Carousel) Indicators() []bool {
	out := make([]bool, c.n)
	if c.n > 0 {
		out[c.index] = true
	}
	return out
}
