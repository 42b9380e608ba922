package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// member is one key of an object rendered in insertion order.
type member struct {
	key   string
	value interface{}
}

// object is a JSON object that keeps its keys in the order they were added.
// Modules and ports are written in declaration order, which a plain map
// would lose.
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("circuit: encoding %q: %w", m.key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalDocument renders the registry as the connectivity document, one
// entry per module keyed by module name.
func MarshalDocument(r *Registry) ([]byte, error) {
	doc := make(object, 0, r.Len())
	for _, m := range r.Modules() {
		doc = append(doc, member{m.Name, moduleObject(m)})
	}
	return json.MarshalIndent(doc, "", "    ")
}

// MarshalJSON renders a single module entry.
func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(moduleObject(m))
}

func moduleObject(m *Module) object {
	ports := make(object, 0, len(m.ports))
	for _, p := range m.Ports() {
		ports = append(ports, member{p.Name, portObject(m, p)})
	}

	components := make(object, 0, len(m.components))
	for _, c := range m.components {
		components = append(components, member{c.Name, componentObject(m, c)})
	}

	return object{
		{"ports", ports},
		{"components", components},
		{"isAtom", m.IsAtom},
	}
}

// portObject lists connections grouped by direction. A direction with no
// connections is left out.
func portObject(m *Module, p *Port) object {
	var in, out []map[string]string
	for _, conn := range p.Connections {
		edge := map[string]string{m.Component(conn.Component).Name: conn.Terminal}
		if conn.Direction == In {
			in = append(in, edge)
		} else {
			out = append(out, edge)
		}
	}

	connections := object{}
	if len(in) > 0 {
		connections = append(connections, member{"in", in})
	}
	if len(out) > 0 {
		connections = append(connections, member{"out", out})
	}

	return object{
		{"type", p.Kind.String()},
		{"connections", connections},
	}
}

func componentObject(m *Module, c *Component) object {
	switch c.Kind {
	case KindTransistor:
		t := c.Transistor
		return object{
			{"type", t.Type.String()},
			{"in", object{
				{"gate", m.PortByID(t.Gate).Name},
				{"source", m.PortByID(t.Source).Name},
			}},
			{"out", object{
				{"drain", m.PortByID(t.Drain).Name},
			}},
		}
	default:
		// encoding/json sorts map keys, so bindings come out by callee port name.
		return object{
			{"type", c.Instance.Module},
			{"in", c.Instance.InNetMap},
			{"out", c.Instance.OutNetMap},
		}
	}
}
