package review

// StarPicker tracks the star rating control: hovering previews a rating,
// clicking commits it, and leaving the control restores the committed value.
type StarPicker struct {
	committed int
	hovered   int
	hovering  bool
}

// Hover previews a rating up to star n (1-based).
func (p *StarPicker) Hover(n int) {
	if !ValidRating(n) {
		return
	}
	p.hovered = n
	p.hovering = true
}

// Leave ends the preview.
func (p *StarPicker) Leave() {
	p.hovering = false
	p.hovered = 0
}

// Click commits a rating. It persists until another click or Reset.
func (p *StarPicker) Click(n int) {
	if !ValidRating(n) {
		return
	}
	p.committed = n
}

// Reset clears the committed rating.
func (p *StarPicker) Reset() {
	p.committed = 0
	p.Leave()
}

// Value returns the committed rating, 0 if none.
func (p *StarPicker) Value() int {
	return p.committed
}

// Display returns how many stars are currently highlighted.
func (p *StarPicker) Display() int {
	if p.hovering {
		return p.hovered
	}
	return p.committed
}

// Previewing reports whether the highlight is a hover preview.
func (p *StarPicker) Previewing() bool {
	return p.hovering
}

// Active returns the highlight state of each star.
func (p *StarPicker) Active() [MaxRating]bool {
	var out [MaxRating]bool
	n := p.Display()
	for i := range out {
		out[i] = i < n
	}
	return out
}

// String renders the highlighted stars.
func (p *StarPicker) String() string {
	return Stars(p.Display())
}
