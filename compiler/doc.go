/*

Process of compilation

Module Description (yaml) ->
	front ->
Graph Module (ir) ->
	gen-weight ->
Weight Buffer + Weight Artifact (raw bytes) ->
	assign-weight-offset ->
Module with weight addresses

Weight artifact

Every weight or const operand referenced by an instruction is lowered by
the backend exactly once, at its first reference in instruction order.
The artifact is the plain concatenation of those ranges.

*/
package compiler
