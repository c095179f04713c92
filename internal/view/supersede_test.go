package view

import "testing"

func TestSupersede(t *testing.T) {
	var s Supersede

	first := s.Begin("detail")
	second := s.Begin("detail")
	other := s.Begin("reviews")

	if s.IsCurrent("detail", first) {
		t.Error("first request should be superseded")
	}
	if !s.IsCurrent("detail", second) {
		t.Error("second request should be current")
	}
	if !s.IsCurrent("reviews", other) {
		t.Error("targets are independent")
	}
	if s.IsCurrent("unknown", 1) {
		t.Error("unknown target has no current request")
	}
}
