package circuit

import "errors"

// PortKind is the declared role of a port inside its module.
type PortKind int

const (
	Undeclared PortKind = iota
	Input
	Output
	Wire
	Power
)

// String returns the name used for the kind in the output document.
func (k PortKind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	case Wire:
		return "wire"
	case Power:
		return "power"
	default:
		return "unknown"
	}
}

// IsIO reports whether the port takes part in positional instance binding.
func (k PortKind) IsIO() bool {
	return k == Input || k == Output
}

// Direction is the orientation of a connection, seen from the net.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// MosType selects the transistor variant.
type MosType int

const (
	NMOS MosType = iota
	PMOS
)

func (t MosType) String() string {
	if t == PMOS {
		return "pmos"
	}
	return "nmos"
}

// prefix is the letter used for auto-generated instance names (n1, p1, ...).
func (t MosType) prefix() string {
	if t == PMOS {
		return "p"
	}
	return "n"
}

// ComponentKind tags the variant held by a Component.
type ComponentKind int

const (
	KindTransistor ComponentKind = iota
	KindInstance
)

// PortID is a stable handle to a port inside its module's arena.
type PortID int

// ComponentID is a stable handle to a component inside its module's arena.
type ComponentID int

// Reserved power rails seeded into every module.
const (
	VCC = "VCC"
	GND = "GND"
	CLK = "CLK"
)

// PowerPorts lists the reserved rails in seeding order.
var PowerPorts = []string{VCC, GND, CLK}

var (
	// ErrDuplicatePort is returned when a port name is already taken in a module.
	ErrDuplicatePort = errors.New("circuit: duplicate port")
	// ErrUnknownPort is returned when a referenced port does not exist.
	ErrUnknownPort = errors.New("circuit: unknown port")
	// ErrDuplicateComponent is returned when a component name is already taken in a module.
	ErrDuplicateComponent = errors.New("circuit: duplicate component")
	// ErrDuplicateModule is returned when a registry already holds a different module of the same name.
	ErrDuplicateModule = errors.New("circuit: duplicate module")
	// ErrModuleClosed is returned when a finalized module is mutated.
	ErrModuleClosed = errors.New("circuit: module is closed")
)
