package circuit

import "fmt"

// Connection is an edge between a port and one terminal of a component.
type Connection struct {
	Component ComponentID
	Direction Direction
	Terminal  string
}

// Port is a named terminal of a module. Wires are ports of kind Wire.
type Port struct {
	ID          PortID
	Name        string
	Kind        PortKind
	Connections []Connection

	dropped bool
}

// Connected reports whether at least one component uses the port.
func (p *Port) Connected() bool {
	return len(p.Connections) > 0
}

// Transistor is a pmos or nmos primitive bound to three ports of its module.
type Transistor struct {
	Type   MosType
	Drain  PortID
	Source PortID
	Gate   PortID
}

// Instance is a sub-module instantiation. InNetMap and OutNetMap map callee
// port names to the caller port (net) bound to them.
type Instance struct {
	Module    string
	InNetMap  map[string]string
	OutNetMap map[string]string
}

// Component is a tagged union over transistors and sub-module instances.
// Exactly one of Transistor or Instance is set, as selected by Kind.
type Component struct {
	ID         ComponentID
	Kind       ComponentKind
	Name       string
	Transistor *Transistor
	Instance   *Instance
}

// Type returns the component type written to the output document: the
// transistor variant or the callee module name.
func (c *Component) Type() string {
	switch c.Kind {
	case KindTransistor:
		return c.Transistor.Type.String()
	case KindInstance:
		return c.Instance.Module
	default:
		return "unknown"
	}
}

// Module is a named container of ports and components. Ports and components
// live in per-module arenas and refer to each other by handle, so the graph
// has no pointer cycles.
type Module struct {
	Name   string
	IsAtom bool

	ports      []*Port
	portIndex  map[string]PortID
	components []*Component
	compIndex  map[string]ComponentID
	mosCount   map[MosType]int
	closed     bool
}

// NewModule creates a module seeded with the VCC, GND and CLK power ports.
func NewModule(name string, isAtom bool) *Module {
	m := &Module{
		Name:      name,
		IsAtom:    isAtom,
		portIndex: make(map[string]PortID),
		compIndex: make(map[string]ComponentID),
		mosCount:  make(map[MosType]int),
	}
	for _, name := range PowerPorts {
		m.addPort(name, Power)
	}
	return m
}

func (m *Module) addPort(name string, kind PortKind) PortID {
	id := PortID(len(m.ports))
	m.ports = append(m.ports, &Port{ID: id, Name: name, Kind: kind})
	m.portIndex[name] = id
	return id
}

// AddPort appends a port. Port names are unique within a module.
func (m *Module) AddPort(name string, kind PortKind) (PortID, error) {
	if m.closed {
		return 0, ErrModuleClosed
	}
	if _, ok := m.portIndex[name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicatePort, name)
	}
	return m.addPort(name, kind), nil
}

// SetKind types an existing port. Power ports can never be retyped.
func (m *Module) SetKind(name string, kind PortKind) error {
	p, ok := m.Port(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPort, name)
	}
	if p.Kind == Power {
		return fmt.Errorf("circuit: power port %s cannot be retyped", name)
	}
	p.Kind = kind
	return nil
}

// Port looks up a live port by name.
func (m *Module) Port(name string) (*Port, bool) {
	id, ok := m.portIndex[name]
	if !ok {
		return nil, false
	}
	p := m.ports[id]
	if p.dropped {
		return nil, false
	}
	return p, true
}

// PortByID returns the port behind a handle, including ports dropped by Close.
func (m *Module) PortByID(id PortID) *Port {
	return m.ports[id]
}

// Ports returns the live ports in declaration order.
func (m *Module) Ports() []*Port {
	out := make([]*Port, 0, len(m.ports))
	for _, p := range m.ports {
		if !p.dropped {
			out = append(out, p)
		}
	}
	return out
}

// IOPorts returns the Input and Output ports in declaration order. This is
// the positional signature used when the module is instantiated.
func (m *Module) IOPorts() []*Port {
	var out []*Port
	for _, p := range m.Ports() {
		if p.Kind.IsIO() {
			out = append(out, p)
		}
	}
	return out
}

// Components returns the components in instantiation order.
func (m *Module) Components() []*Component {
	return m.components
}

// Component returns the component behind a handle.
func (m *Module) Component(id ComponentID) *Component {
	return m.components[id]
}

// ComponentByName looks up a component by its instance name.
func (m *Module) ComponentByName(name string) (*Component, bool) {
	id, ok := m.compIndex[name]
	if !ok {
		return nil, false
	}
	return m.components[id], true
}

// Closed reports whether Close has run.
func (m *Module) Closed() bool {
	return m.closed
}

func (m *Module) addComponent(c *Component) ComponentID {
	c.ID = ComponentID(len(m.components))
	m.components = append(m.components, c)
	m.compIndex[c.Name] = c.ID
	return c.ID
}

func (m *Module) connect(port *Port, comp ComponentID, dir Direction, terminal string) {
	port.Connections = append(port.Connections, Connection{
		Component: comp,
		Direction: dir,
		Terminal:  terminal,
	})
}

// AddTransistor instantiates a transistor on three existing ports and names
// it p<N> or n<N>, counting per module and variant. The drain connection is
// recorded as In, source and gate as Out.
func (m *Module) AddTransistor(typ MosType, drain, source, gate string) (*Component, error) {
	if m.closed {
		return nil, ErrModuleClosed
	}
	d, dok := m.Port(drain)
	s, sok := m.Port(source)
	g, gok := m.Port(gate)
	if !dok || !sok || !gok {
		var missing string
		switch {
		case !dok:
			missing = drain
		case !sok:
			missing = source
		default:
			missing = gate
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownPort, missing)
	}

	name := fmt.Sprintf("%s%d", typ.prefix(), m.mosCount[typ]+1)
	if _, taken := m.compIndex[name]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}
	m.mosCount[typ]++
	c := &Component{
		Kind: KindTransistor,
		Name: name,
		Transistor: &Transistor{
			Type:   typ,
			Drain:  d.ID,
			Source: s.ID,
			Gate:   g.ID,
		},
	}
	id := m.addComponent(c)
	m.connect(d, id, In, "drain")
	m.connect(s, id, Out, "source")
	m.connect(g, id, Out, "gate")
	return c, nil
}

// AddInstance appends an unbound instance of the named module.
func (m *Module) AddInstance(name, module string) (*Component, error) {
	if m.closed {
		return nil, ErrModuleClosed
	}
	if _, taken := m.compIndex[name]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}
	c := &Component{
		Kind: KindInstance,
		Name: name,
		Instance: &Instance{
			Module:    module,
			InNetMap:  make(map[string]string),
			OutNetMap: make(map[string]string),
		},
	}
	m.addComponent(c)
	return c, nil
}

// Bind attaches the caller net to one callee port of an instance. An Input
// callee port is recorded in InNetMap and shows up as an Out connection on
// the net; an Output callee port goes to OutNetMap as an In connection.
func (m *Module) Bind(inst *Component, callee *Port, net string) error {
	if inst.Kind != KindInstance {
		return fmt.Errorf("circuit: %s is not a module instance", inst.Name)
	}
	p, ok := m.Port(net)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPort, net)
	}
	switch callee.Kind {
	case Input:
		inst.Instance.InNetMap[callee.Name] = p.Name
		m.connect(p, inst.ID, Out, callee.Name)
	case Output:
		inst.Instance.OutNetMap[callee.Name] = p.Name
		m.connect(p, inst.ID, In, callee.Name)
	default:
		return fmt.Errorf("circuit: port %s of %s is not an input or output", callee.Name, inst.Instance.Module)
	}
	return nil
}

// Close finalizes the module: every non-power port without connections is
// dropped. It returns the names of the dropped ports. Calling Close again is
// a no-op.
func (m *Module) Close() []string {
	if m.closed {
		return nil
	}
	m.closed = true

	var dropped []string
	for _, p := range m.ports {
		if p.Kind == Power || p.Connected() {
			continue
		}
		p.dropped = true
		dropped = append(dropped, p.Name)
	}
	return dropped
}
