// Package circuit holds the hierarchical connectivity graph produced by the
// HDL compiler: modules, their ports, and the transistor and sub-module
// components wired to those ports.
//
// # Model
//
// A Module owns two arenas, one of ports and one of components. Connections
// on a port refer to components by ComponentID, and transistors refer back
// to ports by PortID, so the graph is bidirectional without pointer cycles.
//
// Every module starts with three power ports (VCC, GND, CLK). Ports declared
// in the module header start as Undeclared and are typed by input/output
// declarations; wires are ports of kind Wire.
//
// # Lifecycle
//
//	m := circuit.NewModule("inv", false)
//	m.AddPort("a", circuit.Undeclared)
//	m.SetKind("a", circuit.Input)
//	m.AddTransistor(circuit.PMOS, "y", "VCC", "a")
//	dropped := m.Close() // unused non-power ports are removed
//	reg.Add(m)
//
// # Export Formats
//
//   - MarshalDocument: the JSON connectivity document consumed by simulators.
//   - ExportKiCad: a KiCad-style netlist, one net per connected port.
package circuit
