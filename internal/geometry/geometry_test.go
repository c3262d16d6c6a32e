package geometry

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRecompute(t *testing.T) {
	tests := []struct {
		name          string
		w, h, r, th   int
		expectError   bool
		wantPerimeter int
	}{
		{name: "Success - 300x300 r20", w: 300, h: 300, r: 20, th: 3, wantPerimeter: 1166},
		{name: "Success - Non-square Bounds", w: 400, h: 200, r: 10, th: 2, wantPerimeter: 1183},
		{name: "Success - Thickness Equals Radius", w: 100, h: 100, r: 8, th: 8, wantPerimeter: 386},
		{name: "Error - Zero Radius", w: 100, h: 100, r: 0, th: 1, expectError: true},
		{name: "Error - Zero Thickness", w: 100, h: 100, r: 10, th: 0, expectError: true},
		{name: "Error - Thickness Exceeds Radius", w: 100, h: 100, r: 10, th: 11, expectError: true},
		{name: "Error - Width Below Diameter", w: 30, h: 100, r: 20, th: 3, expectError: true},
		{name: "Error - Height Equals Diameter", w: 100, h: 40, r: 20, th: 3, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Recompute(tt.w, tt.h, tt.r, tt.th)
			if tt.expectError {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("expected ErrInvalid, got %v", err)
				}
				if !g.IsZero() {
					t.Errorf("expected degenerate geometry, got %+v", g)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Perimeter != tt.wantPerimeter {
				t.Errorf("perimeter: want %d, got %d", tt.wantPerimeter, g.Perimeter)
			}
			if g.CornerDiameter != 2*tt.r {
				t.Errorf("diameter: want %d, got %d", 2*tt.r, g.CornerDiameter)
			}
			for s := CornerNE; s < SegmentCount; s++ {
				if g.Boundaries[s] <= g.Boundaries[s-1] {
					t.Errorf("boundaries not strictly increasing at %v: %v", s, g.Boundaries)
				}
			}
			if g.Boundaries[TopLeftHalf] != float64(g.Perimeter) {
				t.Errorf("last boundary %v != perimeter %d", g.Boundaries[TopLeftHalf], g.Perimeter)
			}
		})
	}
}

func TestRecompute_Boundaries(t *testing.T) {
	g, err := Recompute(300, 300, 20, 3)
	if err != nil {
		t.Fatal(err)
	}
	arc := math.Pi / 2 * 20
	want := [SegmentCount]float64{
		130,
		130 + arc,
		390 + arc,
		390 + 2*arc,
		650 + 2*arc,
		650 + 3*arc,
		910 + 3*arc,
		910 + 4*arc,
		1166,
	}
	if diff := cmp.Diff(want, g.Boundaries, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("boundaries mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionAt(t *testing.T) {
	g, err := Recompute(300, 300, 20, 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		length float64
		want   Segment
		ok     bool
	}{
		{0, TopRightHalf, true},
		{130, TopRightHalf, true},
		{131, CornerNE, true},
		{300, RightSide, true},
		{0.5 * 1166, Bottom, true},
		{720, CornerSW, true},
		{1000, LeftSide, true},
		{1020, CornerNW, true},
		{1166, TopLeftHalf, true},
		{-1, 0, false},
		{1167, 0, false},
		{math.NaN(), 0, false},
	}

	for _, tt := range tests {
		got, ok := g.SectionAt(tt.length)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("SectionAt(%v): want (%v,%v), got (%v,%v)", tt.length, tt.want, tt.ok, got, ok)
		}
	}
}

func TestSectionAt_ZeroGeometry(t *testing.T) {
	var g Geometry
	if _, ok := g.SectionAt(0); ok {
		t.Error("zero geometry must not resolve sections")
	}
}

func TestBarRect(t *testing.T) {
	g, err := Recompute(300, 300, 20, 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		seg      Segment
		from, to float64
		want     image.Rectangle
	}{
		{"Top Right Half", TopRightHalf, 0, 130, image.Rect(150, 0, 280, 3)},
		{"Right Side Partial", RightSide, 10, 20, image.Rect(297, 30, 300, 40)},
		{"Bottom Runs Leftwards", Bottom, 0, 60, image.Rect(220, 297, 280, 300)},
		{"Left Runs Upwards", LeftSide, 0, 260, image.Rect(0, 20, 3, 280)},
		{"Top Left Half", TopLeftHalf, 0, 5, image.Rect(20, 0, 25, 3)},
		{"Swapped Bounds", RightSide, 20, 10, image.Rect(297, 30, 300, 40)},
		{"Corner Has No Bar", CornerNE, 0, 10, image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.BarRect(tt.seg, tt.from, tt.to); got != tt.want {
				t.Errorf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCornerPlacement(t *testing.T) {
	g, err := Recompute(300, 200, 20, 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		seg    Segment
		block  image.Rectangle
		center image.Point
	}{
		{CornerNE, image.Rect(280, 0, 300, 20), image.Pt(280, 20)},
		{CornerSE, image.Rect(280, 180, 300, 200), image.Pt(280, 180)},
		{CornerSW, image.Rect(0, 180, 20, 200), image.Pt(20, 180)},
		{CornerNW, image.Rect(0, 0, 20, 20), image.Pt(20, 20)},
	}

	for _, tt := range tests {
		if got := g.CornerBlock(tt.seg); got != tt.block {
			t.Errorf("%v block: want %v, got %v", tt.seg, tt.block, got)
		}
		if got := g.CornerCenter(tt.seg); got != tt.center {
			t.Errorf("%v center: want %v, got %v", tt.seg, tt.center, got)
		}
	}
}

func TestSegmentClassification(t *testing.T) {
	for s := TopRightHalf; s < SegmentCount; s++ {
		isCorner := s.Corner() != NoQuadrant
		if isCorner != (s.Kind() == KindCorner) {
			t.Errorf("%v: kind %v disagrees with quadrant %v", s, s.Kind(), s.Corner())
		}
		if isCorner == (s.Edge() != NoEdge) {
			t.Errorf("%v: corners must have no edge and bars must have one", s)
		}
	}
	if Segment(12).Valid() || Segment(12).String() != "invalid" {
		t.Error("out of range segment must be invalid")
	}
}
