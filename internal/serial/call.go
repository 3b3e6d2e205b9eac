package serial

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// writeCall renders one call record in the format of spec.md §6.2:
// "fname(arg:expr[&[in->out]][meta],...)*{extra:[in->out],...}*->ret".
// Argument and extra-var names are written in sorted order so the
// output is deterministic across runs (matching the determinism rudd's
// own print_set achieves by sorting nodes by id before printing,
// stdio.go).
func writeCall(call bddgraph.CallRecord, arrays map[string]*expr.SymbolicArray) string {
	var b strings.Builder
	b.WriteString(call.Function)
	b.WriteByte('(')
	names := make([]string, 0, len(call.Args))
	for name := range call.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		slot := call.Args[name]
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(writeExpr(slot.Expr, arrays))
		if slot.In != nil || slot.Out != nil {
			b.WriteString("&[")
			b.WriteString(writeExpr(slot.In, arrays))
			b.WriteString("->")
			b.WriteString(writeExpr(slot.Out, arrays))
			b.WriteByte(']')
		}
		if slot.Meta != "" {
			b.WriteByte('[')
			b.WriteString(slot.Meta)
			b.WriteByte(']')
		}
		if slot.FuncPtr != "" {
			b.WriteString("<fptr:")
			b.WriteString(slot.FuncPtr)
			b.WriteByte('>')
		}
	}
	b.WriteByte(')')
	if len(call.Extra) > 0 {
		b.WriteByte('{')
		extraNames := make([]string, len(call.Extra))
		byName := map[string]bddgraph.ExtraVar{}
		for i, ev := range call.Extra {
			extraNames[i] = ev.Name
			byName[ev.Name] = ev
		}
		sort.Strings(extraNames)
		for i, name := range extraNames {
			if i > 0 {
				b.WriteByte(',')
			}
			ev := byName[name]
			fmt.Fprintf(&b, "%s:[%s->%s]", name, writeExpr(ev.Before, arrays), writeExpr(ev.After, arrays))
		}
		b.WriteByte('}')
	}
	b.WriteString("->")
	b.WriteString(writeExpr(call.Ret, arrays))
	return b.String()
}

// readCall parses the form writeCall produces.
func readCall(s string, arrays map[string]*expr.SymbolicArray) (bddgraph.CallRecord, error) {
	fname, rest, ok := splitFirst(s, '(')
	if !ok {
		return bddgraph.CallRecord{}, errors.Errorf("serial: malformed call %q", s)
	}
	argsStr, rest, ok := splitBalanced(rest, ')')
	if !ok {
		return bddgraph.CallRecord{}, errors.Errorf("serial: unterminated call args in %q", s)
	}

	call := bddgraph.CallRecord{Function: fname, Args: map[string]bddgraph.ArgSlot{}}
	for _, argStr := range splitArgs(argsStr) {
		if argStr == "" {
			continue
		}
		if err := parseArg(argStr, arrays, &call); err != nil {
			return bddgraph.CallRecord{}, err
		}
	}

	if strings.HasPrefix(rest, "{") {
		extraStr, after, ok := splitBalanced(rest[1:], '}')
		if !ok {
			return bddgraph.CallRecord{}, errors.Errorf("serial: unterminated extras in %q", s)
		}
		rest = after
		for _, extraEntry := range splitArgs(extraStr) {
			if extraEntry == "" {
				continue
			}
			name, spec, ok := splitFirst(extraEntry, ':')
			if !ok || !strings.HasPrefix(spec, "[") || !strings.HasSuffix(spec, "]") {
				return bddgraph.CallRecord{}, errors.Errorf("serial: malformed extra var %q", extraEntry)
			}
			before, after, ok := splitFirst(spec[1:len(spec)-1], '-')
			if !ok || !strings.HasPrefix(after, ">") {
				return bddgraph.CallRecord{}, errors.Errorf("serial: malformed extra var transition %q", spec)
			}
			bExpr, err := readExpr(before, arrays)
			if err != nil {
				return bddgraph.CallRecord{}, err
			}
			aExpr, err := readExpr(after[1:], arrays)
			if err != nil {
				return bddgraph.CallRecord{}, err
			}
			call.Extra = append(call.Extra, bddgraph.ExtraVar{Name: name, Before: bExpr, After: aExpr})
		}
	}

	if !strings.HasPrefix(rest, "->") {
		return bddgraph.CallRecord{}, errors.Errorf("serial: call missing ->ret in %q", s)
	}
	ret, err := readExpr(rest[2:], arrays)
	if err != nil {
		return bddgraph.CallRecord{}, err
	}
	call.Ret = ret
	return call, nil
}

// splitBalanced splits s at the matching close rune for the opening
// implied by the caller's context (depth starts at 1), returning
// (inside, remainder-after-close, true).
func splitBalanced(s string, close byte) (string, string, bool) {
	var open byte
	switch close {
	case ')':
		open = '('
	case '}':
		open = '{'
	case ']':
		open = '['
	case '>':
		open = '<'
	}
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

func parseArg(argStr string, arrays map[string]*expr.SymbolicArray, call *bddgraph.CallRecord) error {
	name, rest, ok := splitFirst(argStr, ':')
	if !ok {
		return errors.Errorf("serial: malformed argument %q", argStr)
	}
	slot := bddgraph.ArgSlot{}

	valueEnd := len(rest)
	if i := strings.Index(rest, "&["); i >= 0 {
		valueEnd = i
	} else if i := strings.Index(rest, "["); i >= 0 {
		valueEnd = i
	} else if i := strings.Index(rest, "<fptr:"); i >= 0 {
		valueEnd = i
	}
	valueExpr, err := readExpr(rest[:valueEnd], arrays)
	if err != nil {
		return err
	}
	slot.Expr = valueExpr
	tail := rest[valueEnd:]

	if strings.HasPrefix(tail, "&[") {
		inout, after, ok := splitBalanced(tail[2:], ']')
		if !ok {
			return errors.Errorf("serial: unterminated in->out in %q", argStr)
		}
		inStr, outStr, ok := splitFirst(inout, '-')
		if !ok || !strings.HasPrefix(outStr, ">") {
			return errors.Errorf("serial: malformed in->out %q", inout)
		}
		in, err := readExpr(inStr, arrays)
		if err != nil {
			return err
		}
		out, err := readExpr(outStr[1:], arrays)
		if err != nil {
			return err
		}
		slot.In, slot.Out = in, out
		tail = after
	}
	if strings.HasPrefix(tail, "[") {
		meta, after, ok := splitBalanced(tail[1:], ']')
		if !ok {
			return errors.Errorf("serial: unterminated meta in %q", argStr)
		}
		slot.Meta = meta
		tail = after
	}
	if strings.HasPrefix(tail, "<fptr:") {
		fp, after, ok := splitBalanced(tail[len("<fptr:"):], '>')
		if !ok {
			return errors.Errorf("serial: unterminated fptr tag in %q", argStr)
		}
		slot.FuncPtr = fp
		tail = after
	}
	call.Args[name] = slot
	return nil
}
