package sim

// Direction is a horizontal heading. The formation only ever uses Left
// and Right; player intent may also be None.
type Direction int8

const (
	DirNone Direction = iota
	DirLeft
	DirRight
)

// Sign returns -1, 0 or +1 for use as a velocity multiplier.
func (d Direction) Sign() float64 {
	switch d {
	case DirLeft:
		return -1
	case DirRight:
		return 1
	default:
		return 0
	}
}

// Flip returns the opposite heading. None stays None.
func (d Direction) Flip() Direction {
	switch d {
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Intent is the already-polled input for one tick.
// Move and Fire drive the Running simulation; Start, Retry, Exit and Pause
// are consumed only by the state controller.
type Intent struct {
	Move  Direction
	Fire  bool
	Start bool
	Retry bool
	Exit  bool
	Pause bool
}
