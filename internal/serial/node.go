package serial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// writeConstraints renders a node's constraint set as
// "N:c1|c2|...|cN" (spec.md §6.2's "n_constraints" count, followed by
// the constraints themselves — the format names the count but the
// constraints must also round-trip, so this package carries them
// alongside it).
func writeConstraints(cs *expr.ConstraintSet, arrays map[string]*expr.SymbolicArray) string {
	exprs := cs.Exprs()
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = writeExpr(e, arrays)
	}
	return fmt.Sprintf("%d:%s", len(exprs), strings.Join(parts, "|"))
}

func readConstraints(s string, arrays map[string]*expr.SymbolicArray) (*expr.ConstraintSet, error) {
	n, rest, ok := splitFirst(s, ':')
	if !ok {
		return nil, errors.Errorf("serial: malformed constraint count in %q", s)
	}
	count, err := strconv.Atoi(n)
	if err != nil {
		return nil, errors.Wrapf(err, "serial: constraint count in %q", s)
	}
	cs := expr.NewConstraintSet()
	if count == 0 {
		return cs, nil
	}
	for _, part := range strings.Split(rest, "|") {
		e, err := readExpr(part, arrays)
		if err != nil {
			return nil, err
		}
		cs.Add(e)
	}
	if len(cs.Exprs()) != count {
		return nil, errors.Errorf("serial: constraint count mismatch in %q: declared %d, got %d", s, count, len(cs.Exprs()))
	}
	return cs, nil
}

// writeNode renders one nodes-section line (without its "id:" prefix,
// added by the caller): "(N:constraints KIND payload)" per spec.md
// §6.2.
func writeNode(n *bddgraph.Node, arrays map[string]*expr.SymbolicArray) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(writeConstraints(n.Constraint, arrays))
	b.WriteByte(' ')
	switch n.Kind {
	case bddgraph.KindCall:
		b.WriteString("CALL ")
		b.WriteString(writeCall(n.Call, arrays))
		b.WriteString("=><{")
		for i, sym := range n.GeneratedSymbol {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s:%s", sym.BaseTag, writeExpr(sym.Read, arrays))
		}
		b.WriteString("}>")
	case bddgraph.KindBranch:
		b.WriteString("BRANCH ")
		b.WriteString(writeExpr(n.Condition, arrays))
	case bddgraph.KindRoute:
		b.WriteString("ROUTE ")
		switch n.Route.Op {
		case bddgraph.RouteFWD:
			fmt.Fprintf(&b, "FWD %d", n.Route.DstPort)
		case bddgraph.RouteDrop:
			b.WriteString("DROP")
		case bddgraph.RouteBcast:
			b.WriteString("BCAST")
		}
	}
	b.WriteByte(')')
	return b.String()
}

// readNode parses one writeNode payload (without its id).
func readNode(id bddgraph.NodeID, s string, arrays map[string]*expr.SymbolicArray) (*bddgraph.Node, error) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, errors.Errorf("serial: malformed node %q", s)
	}
	body := s[1 : len(s)-1]
	constraintsStr, rest, ok := splitFirst(body, ' ')
	if !ok {
		return nil, errors.Errorf("serial: node missing payload in %q", s)
	}
	cs, err := readConstraints(constraintsStr, arrays)
	if err != nil {
		return nil, err
	}
	kind, payload, ok := splitFirst(rest, ' ')
	if !ok {
		kind, payload = rest, ""
	}

	n := &bddgraph.Node{ID: id, Constraint: cs}
	switch kind {
	case "CALL":
		callStr, symStr, ok := splitOnce(payload, "=><{")
		if !ok || !strings.HasSuffix(symStr, "}>") {
			return nil, errors.Errorf("serial: malformed CALL node %q", s)
		}
		call, err := readCall(callStr, arrays)
		if err != nil {
			return nil, err
		}
		n.Kind = bddgraph.KindCall
		n.Call = call
		symBody := symStr[:len(symStr)-len("}>")]
		for _, entry := range splitArgs(symBody) {
			if entry == "" {
				continue
			}
			tag, readStr, ok := splitFirst(entry, ':')
			if !ok {
				return nil, errors.Errorf("serial: malformed generated symbol %q", entry)
			}
			readExprVal, err := readExpr(readStr, arrays)
			if err != nil {
				return nil, err
			}
			n.GeneratedSymbol = append(n.GeneratedSymbol, expr.Symbol{BaseTag: tag, Read: readExprVal})
		}
	case "BRANCH":
		cond, err := readExpr(payload, arrays)
		if err != nil {
			return nil, err
		}
		n.Kind = bddgraph.KindBranch
		n.Condition = cond
	case "ROUTE":
		n.Kind = bddgraph.KindRoute
		switch {
		case payload == "DROP":
			n.Route = bddgraph.Route{Op: bddgraph.RouteDrop}
		case payload == "BCAST":
			n.Route = bddgraph.Route{Op: bddgraph.RouteBcast}
		case strings.HasPrefix(payload, "FWD "):
			port, err := strconv.Atoi(strings.TrimPrefix(payload, "FWD "))
			if err != nil {
				return nil, errors.Wrapf(err, "serial: FWD port in %q", s)
			}
			n.Route = bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: port}
		default:
			return nil, errors.Errorf("serial: malformed ROUTE payload %q", payload)
		}
	default:
		return nil, errors.Errorf("serial: unknown node kind %q", kind)
	}
	return n, nil
}

func splitOnce(s, sep string) (string, string, bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+len(sep):], true
}
