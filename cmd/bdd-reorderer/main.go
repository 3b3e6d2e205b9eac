// Command bdd-reorderer loads a serialised BDD, prints the legal reorder
// operations reachable from a given anchor, and optionally applies a
// list of (anchor_id, direction, candidate_id) tuples.
//
// Per spec.md §6.1: `--in <path>` is required; `--anchor <id>` and
// `--direction true|false` select the anchor (direction ignored for
// non-Branch anchors); `--apply <anchorID>:<true|false>:<candidateID>`
// (repeatable) applies specific rewrites instead of just listing
// candidates; `--out <path>` writes the final BDD. Exit 0/1 per §6.3,
// and 2 for an unknown `--solver`.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/config"
	"github.com/synapse-nf/synbdd/internal/expr"
	"github.com/synapse-nf/synbdd/internal/logging"
	"github.com/synapse-nf/synbdd/internal/reorder"
	"github.com/synapse-nf/synbdd/internal/serial"
)

func main() {
	app := &cli.App{
		Name:  "bdd-reorderer",
		Usage: "enumerate and apply safe BDD reorderings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Required: true},
			&cli.StringFlag{Name: "out"},
			&cli.Uint64Flag{Name: "anchor", Usage: "anchor node id"},
			&cli.BoolFlag{Name: "direction", Value: true, Usage: "anchor direction for Branch anchors"},
			&cli.StringSliceFlag{Name: "apply", Usage: "anchorID:direction:candidateID, repeatable"},
			&cli.StringFlag{Name: "solver", Value: "syntactic", Usage: "oracle backend: syntactic|bdd"},
			&cli.StringFlag{Name: "log-level", Value: "info"},
			&cli.BoolFlag{Name: "quiet"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.New(append(config.FromEnv(),
		config.WithLogLevel(logging.Level(c.String("log-level"))),
		config.WithQuiet(c.Bool("quiet")),
	)...)
	log := logging.New(cfg.LogLevel, cfg.Quiet)
	defer log.Sync()

	f, err := os.Open(c.String("in"))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "bdd-reorderer: opening --in"), 1)
	}
	bdd, err := serial.Read(f)
	f.Close()
	if err != nil {
		return cli.Exit(errors.Wrap(err, "bdd-reorderer: parsing serialised BDD"), 1)
	}
	if err := bdd.Assert(); err != nil {
		return cli.Exit(errors.Wrap(err, "bdd-reorderer: BDD failed integrity check"), 1)
	}

	backend, err := newBackend(c.String("solver"))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "bdd-reorderer: --solver"), 2)
	}
	oracle := expr.New(backend, log)

	applies := c.StringSlice("apply")
	if len(applies) == 0 {
		anchor := reorder.Anchor{Node: bddgraph.NodeID(c.Uint64("anchor")), Direction: c.Bool("direction")}
		ops := reorder.GetReorderOps(bdd, oracle, anchor, true)
		if cfg.IgnoreChecksumModifications {
			ops = reorder.IgnoreChecksumModifications(bdd, oracle, ops)
		}
		for _, cand := range ops {
			fmt.Printf("%d\t%s\n", cand.Node, cand.Verdict.Status)
		}
		return nil
	}

	for _, spec := range applies {
		anchor, candidate, err := parseApply(spec)
		if err != nil {
			return cli.Exit(errors.Wrap(err, "bdd-reorderer: --apply"), 1)
		}
		checker := reorder.NewChecker(bdd, oracle, log)
		v := checker.Check(anchor, candidate, true)
		if !v.Status.OK() {
			log.Warnw("bdd-reorderer: candidate not legal", "candidate", candidate, "status", v.Status)
			continue
		}
		rewritten, err := reorder.Rewrite(bdd, oracle, anchor, candidate, v)
		if err != nil {
			return cli.Exit(errors.Wrap(err, "bdd-reorderer: rewrite"), 1)
		}
		bdd = rewritten
	}

	if out := c.String("out"); out != "" {
		outFile, err := os.Create(out)
		if err != nil {
			return cli.Exit(errors.Wrap(err, "bdd-reorderer: creating --out"), 1)
		}
		defer outFile.Close()
		if err := serial.Write(outFile, bdd); err != nil {
			return cli.Exit(errors.Wrap(err, "bdd-reorderer: serialising --out"), 1)
		}
	}
	return nil
}

// newBackend selects the oracle's SolverBackend: "syntactic" (default, no
// third-party solver, see internal/expr's doc comment) or "bdd", which
// decides satisfiability by composing the asserted formula into a real
// Binary Decision Diagram (internal/rudd) instead of syntactic's
// hand-written contradiction rules.
func newBackend(name string) (expr.SolverBackend, error) {
	switch name {
	case "", "syntactic":
		return expr.NewSyntacticBackend(), nil
	case "bdd":
		return expr.NewBDDBackend(), nil
	default:
		return nil, errors.Errorf("unknown solver %q, want syntactic|bdd", name)
	}
}

func parseApply(spec string) (reorder.Anchor, bddgraph.NodeID, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return reorder.Anchor{}, 0, errors.Errorf("malformed --apply entry %q, want anchorID:direction:candidateID", spec)
	}
	anchorID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return reorder.Anchor{}, 0, errors.Wrapf(err, "anchor id in %q", spec)
	}
	direction, err := strconv.ParseBool(parts[1])
	if err != nil {
		return reorder.Anchor{}, 0, errors.Wrapf(err, "direction in %q", spec)
	}
	candidateID, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return reorder.Anchor{}, 0, errors.Wrapf(err, "candidate id in %q", spec)
	}
	return reorder.Anchor{Node: bddgraph.NodeID(anchorID), Direction: direction}, bddgraph.NodeID(candidateID), nil
}
