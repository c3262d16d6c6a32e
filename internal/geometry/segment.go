package geometry

// Segment names one of the nine perimeter sections in clockwise order
type Segment int

const (
	TopRightHalf Segment = iota
	CornerNE
	RightSide
	CornerSE
	Bottom
	CornerSW
	LeftSide
	CornerNW
	TopLeftHalf

	// SegmentCount is the number of sections on the perimeter
	SegmentCount
)

// Kind is the draw strategy of a section
type Kind int

const (
	KindBar Kind = iota
	KindCorner
)

// Quadrant identifies a corner of the panel
type Quadrant int

const (
	NoQuadrant Quadrant = iota
	NE
	SE
	SW
	NW
)

// Edge identifies the panel side a bar runs along
type Edge int

const (
	NoEdge Edge = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	EdgeLeft
)

var segmentNames = [SegmentCount]string{
	"top-right-half", "ne-corner", "right", "se-corner", "bottom",
	"sw-corner", "left", "nw-corner", "top-left-half",
}

func (s Segment) String() string {
	if !s.Valid() {
		return "invalid"
	}
	return segmentNames[s]
}

// Valid reports whether s is one of the nine sections
func (s Segment) Valid() bool {
	return s >= TopRightHalf && s < SegmentCount
}

// Kind returns whether s is drawn as a straight bar or a corner arc
func (s Segment) Kind() Kind {
	if s.Corner() != NoQuadrant {
		return KindCorner
	}
	return KindBar
}

// Corner returns the quadrant of a corner section
func (s Segment) Corner() Quadrant {
	switch s {
	case CornerNE:
		return NE
	case CornerSE:
		return SE
	case CornerSW:
		return SW
	case CornerNW:
		return NW
	}
	return NoQuadrant
}

// Edge returns the side a bar section runs along
func (s Segment) Edge() Edge {
	switch s {
	case TopRightHalf, TopLeftHalf:
		return EdgeTop
	case RightSide:
		return EdgeRight
	case Bottom:
		return EdgeBottom
	case LeftSide:
		return EdgeLeft
	}
	return NoEdge
}

// Turns returns how many clockwise quarter turns map the NE corner onto q
func (q Quadrant) Turns() int {
	switch q {
	case SE:
		return 1
	case SW:
		return 2
	case NW:
		return 3
	}
	return 0
}
