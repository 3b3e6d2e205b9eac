package serial

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

const magicHeader = "===== BDD ====="

// Write serialises bdd to w in the line-oriented text format of spec.md
// §6.2: a magic header followed by the kQuery, symbols, init, nodes,
// edges, and root sections, in that order.
func Write(w io.Writer, bdd *bddgraph.BDD) error {
	bw := bufio.NewWriter(w)

	arrays := collectArrays(bdd)

	fmt.Fprintln(bw, magicHeader)

	fmt.Fprintln(bw, "kQuery")
	for _, name := range sortedArrayNames(arrays) {
		writeArrayDecl(bw, arrays[name])
	}
	fmt.Fprintln(bw, "end-kQuery")

	fmt.Fprintln(bw, "symbols")
	fmt.Fprintln(bw, writeExpr(bdd.DeviceSymbol, arrays))
	fmt.Fprintln(bw, writeExpr(bdd.PacketLenSymbol, arrays))
	fmt.Fprintln(bw, writeExpr(bdd.TimeSymbol, arrays))
	fmt.Fprintln(bw, "end-symbols")

	fmt.Fprintln(bw, "init")
	for _, call := range bdd.InitPrelude {
		fmt.Fprintln(bw, writeCall(call, arrays))
	}
	fmt.Fprintln(bw, "end-init")

	ids := sortedNodeIDs(bdd)
	fmt.Fprintln(bw, "nodes")
	for _, id := range ids {
		n := bdd.MustGet(id)
		fmt.Fprintf(bw, "%d:%s\n", id, writeNode(n, arrays))
	}
	fmt.Fprintln(bw, "end-nodes")

	fmt.Fprintln(bw, "edges")
	for _, id := range ids {
		n := bdd.MustGet(id)
		switch n.Kind {
		case bddgraph.KindBranch:
			fmt.Fprintf(bw, "(%d->%d->%d)\n", id, n.OnTrue, n.OnFalse)
		case bddgraph.KindCall, bddgraph.KindRoute:
			if n.Next != 0 {
				fmt.Fprintf(bw, "(%d->%d)\n", id, n.Next)
			}
		}
	}
	fmt.Fprintln(bw, "end-edges")

	fmt.Fprintln(bw, "root")
	fmt.Fprintln(bw, bdd.Root())
	fmt.Fprintln(bw, "end-root")

	return bw.Flush()
}

func collectArrays(bdd *bddgraph.BDD) map[string]*expr.SymbolicArray {
	arrays := map[string]*expr.SymbolicArray{}
	sink := func(e *expr.Expr) { writeExpr(e, arrays) } // writeExpr's side effect populates arrays
	sink(bdd.DeviceSymbol)
	sink(bdd.PacketLenSymbol)
	sink(bdd.TimeSymbol)
	for _, call := range bdd.InitPrelude {
		sink(call.Ret)
		for _, a := range call.Args {
			sink(a.Expr)
			sink(a.In)
			sink(a.Out)
		}
	}
	for _, id := range sortedNodeIDs(bdd) {
		n := bdd.MustGet(id)
		for _, c := range n.Constraint.Exprs() {
			sink(c)
		}
		switch n.Kind {
		case bddgraph.KindBranch:
			sink(n.Condition)
		case bddgraph.KindCall:
			sink(n.Call.Ret)
			for _, a := range n.Call.Args {
				sink(a.Expr)
				sink(a.In)
				sink(a.Out)
			}
			for _, ev := range n.Call.Extra {
				sink(ev.Before)
				sink(ev.After)
			}
			for _, sym := range n.GeneratedSymbol {
				sink(sym.Read)
			}
		}
	}
	return arrays
}

func sortedArrayNames(arrays map[string]*expr.SymbolicArray) []string {
	names := make([]string, 0, len(arrays))
	for n := range arrays {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedNodeIDs(bdd *bddgraph.BDD) []bddgraph.NodeID {
	var ids []bddgraph.NodeID
	bdd.VisitNodes(bdd.Root(), func(n *bddgraph.Node, cookie interface{}) (bddgraph.Action, interface{}) {
		ids = append(ids, n.ID)
		return bddgraph.VisitChildren, cookie
	}, nil)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func writeArrayDecl(w io.Writer, arr *expr.SymbolicArray) {
	if len(arr.Const) == 0 {
		fmt.Fprintf(w, "array %s %d %d %d\n", arr.Name, arr.ElementCount, arr.IndexWidth, arr.ValueWidth)
		return
	}
	parts := make([]string, len(arr.Const))
	for i, v := range arr.Const {
		parts[i] = strconv.FormatUint(v, 10)
	}
	fmt.Fprintf(w, "array %s %d %d %d const:%s\n", arr.Name, arr.ElementCount, arr.IndexWidth, arr.ValueWidth, strings.Join(parts, ","))
}

// Read parses the format Write produces.
func Read(r io.Reader) (*bddgraph.BDD, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, errors.New("serial: empty input")
	}
	if strings.TrimSpace(sc.Text()) != magicHeader {
		return nil, errors.Errorf("serial: missing magic header, got %q", sc.Text())
	}

	arrays := map[string]*expr.SymbolicArray{}
	if err := expectLine(sc, "kQuery"); err != nil {
		return nil, err
	}
	for {
		line, done, err := nextOrEnd(sc, "end-kQuery")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		arr, err := parseArrayDecl(line)
		if err != nil {
			return nil, err
		}
		arrays[arr.Name] = arr
	}

	bdd := bddgraph.New()

	if err := expectLine(sc, "symbols"); err != nil {
		return nil, err
	}
	symbolExprs := make([]*expr.Expr, 0, 3)
	for {
		line, done, err := nextOrEnd(sc, "end-symbols")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		e, err := readExpr(line, arrays)
		if err != nil {
			return nil, err
		}
		symbolExprs = append(symbolExprs, e)
	}
	if len(symbolExprs) != 3 {
		return nil, errors.Errorf("serial: symbols section must have exactly 3 lines, got %d", len(symbolExprs))
	}
	bdd.DeviceSymbol, bdd.PacketLenSymbol, bdd.TimeSymbol = symbolExprs[0], symbolExprs[1], symbolExprs[2]

	if err := expectLine(sc, "init"); err != nil {
		return nil, err
	}
	for {
		line, done, err := nextOrEnd(sc, "end-init")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		call, err := readCall(line, arrays)
		if err != nil {
			return nil, err
		}
		bdd.InitPrelude = append(bdd.InitPrelude, call)
	}

	if err := expectLine(sc, "nodes"); err != nil {
		return nil, err
	}
	nodes := map[bddgraph.NodeID]*bddgraph.Node{}
	for {
		line, done, err := nextOrEnd(sc, "end-nodes")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		idStr, payload, ok := splitFirst(line, ':')
		if !ok {
			return nil, errors.Errorf("serial: malformed node line %q", line)
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "serial: node id in %q", line)
		}
		n, err := readNode(bddgraph.NodeID(id), payload, arrays)
		if err != nil {
			return nil, err
		}
		nodes[n.ID] = n
	}
	importNodes(bdd, nodes)

	if err := expectLine(sc, "edges"); err != nil {
		return nil, err
	}
	for {
		line, done, err := nextOrEnd(sc, "end-edges")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if err := applyEdge(nodes, line); err != nil {
			return nil, err
		}
	}

	if err := expectLine(sc, "root"); err != nil {
		return nil, err
	}
	rootLine, done, err := nextOrEnd(sc, "end-root")
	if err != nil {
		return nil, err
	}
	if done {
		return nil, errors.New("serial: root section has no id")
	}
	rootID, err := strconv.ParseUint(strings.TrimSpace(rootLine), 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "serial: root id %q", rootLine)
	}
	bdd.SetRoot(bddgraph.NodeID(rootID))

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "serial: scanning input")
	}
	return bdd, nil
}

func expectLine(sc *bufio.Scanner, want string) error {
	if !sc.Scan() {
		return errors.Errorf("serial: expected %q, reached EOF", want)
	}
	if got := strings.TrimSpace(sc.Text()); got != want {
		return errors.Errorf("serial: expected %q, got %q", want, got)
	}
	return nil
}

func nextOrEnd(sc *bufio.Scanner, endMarker string) (string, bool, error) {
	if !sc.Scan() {
		return "", false, errors.Errorf("serial: expected %q, reached EOF", endMarker)
	}
	line := sc.Text()
	if strings.TrimSpace(line) == endMarker {
		return "", true, nil
	}
	return line, false, nil
}

func parseArrayDecl(line string) (*expr.SymbolicArray, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "array" {
		return nil, errors.Errorf("serial: malformed array decl %q", line)
	}
	elemCount, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, errors.Wrapf(err, "serial: array element count in %q", line)
	}
	idxWidth, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, errors.Wrapf(err, "serial: array index width in %q", line)
	}
	valWidth, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, errors.Wrapf(err, "serial: array value width in %q", line)
	}
	arr := &expr.SymbolicArray{Name: fields[1], ElementCount: elemCount, IndexWidth: idxWidth, ValueWidth: valWidth}
	if len(fields) > 5 && strings.HasPrefix(fields[5], "const:") {
		for _, v := range strings.Split(strings.TrimPrefix(fields[5], "const:"), ",") {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "serial: array const value in %q", line)
			}
			arr.Const = append(arr.Const, n)
		}
	}
	return arr, nil
}

func importNodes(bdd *bddgraph.BDD, nodes map[bddgraph.NodeID]*bddgraph.Node) {
	for id, n := range nodes {
		bdd.PutNode(n)
		bdd.AdvanceNextID(id)
	}
}

func applyEdge(nodes map[bddgraph.NodeID]*bddgraph.Node, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "(") || !strings.HasSuffix(line, ")") {
		return errors.Errorf("serial: malformed edge %q", line)
	}
	body := line[1 : len(line)-1]
	parts := strings.Split(body, "->")
	ids := make([]bddgraph.NodeID, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "serial: edge endpoint in %q", line)
		}
		ids[i] = bddgraph.NodeID(v)
	}
	parent, ok := nodes[ids[0]]
	if !ok {
		return errors.Errorf("serial: edge references unknown node %d", ids[0])
	}
	switch len(ids) {
	case 2:
		parent.Next = ids[1]
		if child, ok := nodes[ids[1]]; ok {
			child.Prev = ids[0]
		}
	case 3:
		parent.OnTrue, parent.OnFalse = ids[1], ids[2]
		if child, ok := nodes[ids[1]]; ok {
			child.Prev = ids[0]
		}
		if child, ok := nodes[ids[2]]; ok {
			child.Prev = ids[0]
		}
	default:
		return errors.Errorf("serial: malformed edge %q", line)
	}
	return nil
}
