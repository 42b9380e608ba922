// Package hdl compiles the transistor-level netlist language into a
// circuit.Registry.
//
// The language describes modules built from ports, wires, pmos/nmos
// primitives and instances of previously defined modules:
//
//	include "cells.v";
//
//	module inv(a, y);
//	    input a;
//	    output y;
//	    pmos(y, VCC, a);
//	    nmos(y, GND, a);
//	endmodule
//
//	module buf(a, y);
//	    input a; output y;
//	    wire t;
//	    inv i1(a, t);
//	    inv i2(t, y);
//	endmodule
//
// Tokenizing, parsing and semantic checks run in a single pass. Every
// failure is a *Error tagged with file, line and ErrorKind; warnings go to
// the Compiler's slog.Logger.
package hdl
