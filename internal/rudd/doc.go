// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package rudd defines a concrete type for Binary Decision Diagrams (BDD), a data
structure used to efficiently represent Boolean functions over a fixed set of
variables.

Each BDD has a fixed number of variables, Varnum, declared when it is
initialized (using the method New) and each variable is represented by an
(integer) index in the interval [0..Varnum), called a level. Most operations
over a BDD return a Node, a pointer to a vertex in the unique table; by
convention 1 (respectively 0) is the address of the constant function True
(respectively False).

This package started as the general-purpose BDD engine of the same name,
adapted here into a single opaque-atom boolean satisfiability engine for
internal/expr's SolverBackend (backend_bdd.go): every non-boolean-connective
subexpression the oracle asserts is allocated one BDD variable, and
BoolAnd/BoolOr/BoolNot/Ite are composed with real Apply/Ite operations instead
of re-deriving a bespoke refutation procedure per connective. Only the
operations that consumer needs are kept: Ithvar/NIthvar, Not, Apply, Ite and
the terminal queries. Existential quantification, variable-set scanning,
model counting, satisfying-assignment enumeration and dot rendering are not
carried forward; nothing in this repository quantifies over or counts
solutions to a propositional formula, only asks whether one exists.

The manual reference-counting garbage collector of the original package is
not carried forward either: callers here build one BDD per Oracle query (see
backend_bdd.go), so the whole unique table becomes unreachable, and ordinary
collectible by the Go runtime, the moment the caller drops it.
*/
package rudd
