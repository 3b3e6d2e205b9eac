// Package serial implements the line-oriented BDD text format of
// spec.md §6.2: Write/Read for the six sections (kQuery, symbols, init,
// nodes, edges, root), round-trip stable per spec.md §8 invariant 6.
//
// Grounded on the teacher's own stdio.go: rudd dumps a deterministic,
// sorted textual form of a Set via Allnodes (print_set/PrintDot) built
// on tabwriter-formatted fmt.Fprintf calls. This package generalizes
// that "print for humans" shape into "round-trip serialize for the file
// format" — every Write here is paired with a Read that inverts it,
// which rudd's own dump never needed since it was output-only.
package serial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/synapse-nf/synbdd/internal/expr"
)

// writeExpr renders e in the stable prefix form the format uses
// (spec.md §6.2 never names an exact expression grammar, so this
// package defines one: "kind(operand,operand,...)", parenthesised
// fully, with constants as "const:<width>:<value>" and reads as
// "read:<array>:<index>"). arrays collects every array name
// encountered, so kQuery's array declarations can be reconstructed.
func writeExpr(e *expr.Expr, arrays map[string]*expr.SymbolicArray) string {
	if e == nil {
		return "-"
	}
	switch e.Kind() {
	case expr.KindConst:
		v, _ := e.AsConstant()
		return fmt.Sprintf("const:%d:%d", e.Width(), v)
	case expr.KindRead:
		arr, idx, _ := e.AsRead()
		arrays[arr.Name] = arr
		return fmt.Sprintf("read:%s:%s", arr.Name, writeExpr(idx, arrays))
	case expr.KindExtract:
		operand, offset, _ := e.AsExtract()
		return fmt.Sprintf("extract(%s,%d,%d)", writeExpr(operand, arrays), offset, e.Width())
	case expr.KindConcat:
		hi, lo, _ := e.AsConcat()
		return fmt.Sprintf("concat(%s,%s)", writeExpr(hi, arrays), writeExpr(lo, arrays))
	default:
		kids := e.Children()
		parts := make([]string, len(kids))
		for i, k := range kids {
			parts[i] = writeExpr(k, arrays)
		}
		return fmt.Sprintf("%s(%d,%s)", kindName(e.Kind()), e.Width(), strings.Join(parts, ","))
	}
}

func kindName(k expr.Kind) string {
	switch k {
	case expr.KindAdd:
		return "add"
	case expr.KindSub:
		return "sub"
	case expr.KindMul:
		return "mul"
	case expr.KindUDiv:
		return "udiv"
	case expr.KindURem:
		return "urem"
	case expr.KindAnd:
		return "and"
	case expr.KindOr:
		return "or"
	case expr.KindXor:
		return "xor"
	case expr.KindNot:
		return "not"
	case expr.KindShl:
		return "shl"
	case expr.KindLShr:
		return "lshr"
	case expr.KindEq:
		return "eq"
	case expr.KindUlt:
		return "ult"
	case expr.KindUle:
		return "ule"
	case expr.KindBoolAnd:
		return "booland"
	case expr.KindBoolOr:
		return "boolor"
	case expr.KindBoolNot:
		return "boolnot"
	case expr.KindIte:
		return "ite"
	default:
		return "unknown"
	}
}

// readExpr parses the form writeExpr produces, looking up array objects
// by name in arrays (populated from the symbols/kQuery sections before
// any node is parsed, per the format's section order).
func readExpr(s string, arrays map[string]*expr.SymbolicArray) (*expr.Expr, error) {
	s = strings.TrimSpace(s)
	if s == "-" || s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "const:") {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) != 3 {
			return nil, errors.Errorf("serial: malformed const expr %q", s)
		}
		width, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "serial: const width in %q", s)
		}
		value, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "serial: const value in %q", s)
		}
		return expr.Const(value, width), nil
	}
	if strings.HasPrefix(s, "read:") {
		rest := s[len("read:"):]
		name, idxStr, ok := splitFirst(rest, ':')
		if !ok {
			return nil, errors.Errorf("serial: malformed read expr %q", s)
		}
		arr, ok := arrays[name]
		if !ok {
			return nil, errors.Errorf("serial: read of undeclared array %q", name)
		}
		idx, err := readExpr(idxStr, arrays)
		if err != nil {
			return nil, err
		}
		return expr.Read(arr, idx), nil
	}
	name, argsStr, ok := parseCall(s)
	if !ok {
		return nil, errors.Errorf("serial: unrecognised expression %q", s)
	}
	args := splitArgs(argsStr)
	switch name {
	case "extract":
		if len(args) != 3 {
			return nil, errors.Errorf("serial: extract needs 3 args, got %q", s)
		}
		a, err := readExpr(args[0], arrays)
		if err != nil {
			return nil, err
		}
		offset, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, errors.Wrapf(err, "serial: extract offset in %q", s)
		}
		width, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, errors.Wrapf(err, "serial: extract width in %q", s)
		}
		return expr.Extract(a, offset, width), nil
	case "concat":
		if len(args) != 2 {
			return nil, errors.Errorf("serial: concat needs 2 args, got %q", s)
		}
		hi, err := readExpr(args[0], arrays)
		if err != nil {
			return nil, err
		}
		lo, err := readExpr(args[1], arrays)
		if err != nil {
			return nil, err
		}
		return expr.Concat(hi, lo), nil
	}
	// Every other kind is "name(width,operand[,operand...])".
	if len(args) < 1 {
		return nil, errors.Errorf("serial: %s needs a width, got %q", name, s)
	}
	operands := make([]*expr.Expr, 0, len(args)-1)
	for _, a := range args[1:] {
		e, err := readExpr(a, arrays)
		if err != nil {
			return nil, err
		}
		operands = append(operands, e)
	}
	return buildByName(name, operands)
}

func buildByName(name string, ops []*expr.Expr) (*expr.Expr, error) {
	one := func() *expr.Expr { return ops[0] }
	two := func() (*expr.Expr, *expr.Expr) { return ops[0], ops[1] }
	three := func() (*expr.Expr, *expr.Expr, *expr.Expr) { return ops[0], ops[1], ops[2] }
	switch name {
	case "add":
		a, b := two()
		return expr.Add(a, b), nil
	case "sub":
		a, b := two()
		return expr.Sub(a, b), nil
	case "mul":
		a, b := two()
		return expr.Mul(a, b), nil
	case "udiv":
		a, b := two()
		return expr.UDiv(a, b), nil
	case "urem":
		a, b := two()
		return expr.URem(a, b), nil
	case "and":
		a, b := two()
		return expr.And(a, b), nil
	case "or":
		a, b := two()
		return expr.Or(a, b), nil
	case "xor":
		a, b := two()
		return expr.Xor(a, b), nil
	case "not":
		return expr.Not(one()), nil
	case "shl":
		a, b := two()
		return expr.Shl(a, b), nil
	case "lshr":
		a, b := two()
		return expr.LShr(a, b), nil
	case "eq":
		a, b := two()
		return expr.Eq(a, b), nil
	case "ult":
		a, b := two()
		return expr.Ult(a, b), nil
	case "ule":
		a, b := two()
		return expr.Ule(a, b), nil
	case "booland":
		a, b := two()
		return expr.BoolAnd(a, b), nil
	case "boolor":
		a, b := two()
		return expr.BoolOr(a, b), nil
	case "boolnot":
		return expr.BoolNot(one()), nil
	case "ite":
		c, t, f := three()
		return expr.Ite(c, t, f), nil
	default:
		return nil, errors.Errorf("serial: unknown expression kind %q", name)
	}
}
