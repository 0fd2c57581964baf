/*
Package traj evaluates measurement trajectories.

A trajectory is a relaxed-JSON (or YAML) document that describes a
sequence of instrument measurement points.  The top-level keys are
directives processed in order:

	trajName, descr      evaluated strings
	neverWrite           names that are never recorded
	alwaysWrite          names that are always recorded
	init                 constants, assigned in order
	fileGroup            expressions that decide how points are
	filePrefix           grouped into files and what the files and
	fileName             entries are called
	entryName
	loops                nested loops that generate points

Each loop has a "vary" (an ordered object or a list of [name, spec]
pairs) and optional inner "loops".  A vary spec is one of

	{range: ...}         linear range
	{logrange: ...}      logarithmic range
	[a, b, c]            literal list, padded with its last element
	{list: {value: [...], cyclic: true}}
	"expression"         evaluated at every step
	{field: "expr"}      sets name.field at every step

The first item of a vary decides how many steps the loop takes.  At
each innermost step the file policy runs, a Point (a snapshot of all
bindings) is emitted, and the point counters advance.

Expressions are evaluated by an Interpreter.  Import
interpreters/ecmascript to register the default one.
*/
package traj
