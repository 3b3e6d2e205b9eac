// Command synthesizer runs the execution-plan search of spec.md §4.5
// over a serialised BDD and writes the winning plan's per-target emitter
// output to configured paths. Per §6.1: `--in <path>` is required; the
// target set is selected by `--targets` (comma-separated, default
// `tofino,x86`; the x86tofino boundary generators are registered under
// x86); code emission itself is out of scope (spec.md §1), so "emitter
// output" here is the plan's own text rendering — real P4/C emitters are
// named interfaces only, not implemented end-to-end (SPEC_FULL.md §4).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/synapse-nf/synbdd/internal/config"
	"github.com/synapse-nf/synbdd/internal/logging"
	"github.com/synapse-nf/synbdd/internal/placement"
	"github.com/synapse-nf/synbdd/internal/planner"
	"github.com/synapse-nf/synbdd/internal/serial"
	"github.com/synapse-nf/synbdd/internal/targets/tofino"
	"github.com/synapse-nf/synbdd/internal/targets/x86"
	"github.com/synapse-nf/synbdd/internal/targets/x86tofino"
)

func main() {
	app := &cli.App{
		Name:  "synthesizer",
		Usage: "search for a hardware/software placement of a BDD",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Required: true},
			&cli.StringFlag{Name: "out", Usage: "path to write the winning plan's rendering"},
			&cli.StringFlag{Name: "targets", Value: "tofino,x86", Usage: "comma-separated target set"},
			&cli.StringFlag{Name: "initial-target", Value: "tofino"},
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

// registry builds the known Target sets, keyed by name, so --targets can
// select a subset (spec.md §6.1 "target set selected by flags").
func registry() map[string]planner.Target {
	return map[string]planner.Target{
		"tofino": {
			Name: "tofino",
			Generators: []planner.ModuleGenerator{
				tofino.MapLookup(),
				tofino.VectorAccess(),
				tofino.Forward(),
				tofino.SendToController(),
			},
		},
		"x86": {
			Name: "x86",
			Generators: []planner.ModuleGenerator{
				x86.PacketParseCPU(),
				x86.Passthrough(),
				x86tofino.CurrentTime("x86", "tofino"),
				x86tofino.Ignore("x86"),
				x86tofino.ForwardThroughTofino(),
			},
		},
	}
}

func run(c *cli.Context) error {
	cfg := config.New(append(config.FromEnv(),
		config.WithTargets(strings.Split(c.String("targets"), ",")...),
		config.WithLogLevel(logging.Level(c.String("log-level"))),
		config.WithQuiet(c.Bool("quiet")),
	)...)
	log := logging.New(cfg.LogLevel, cfg.Quiet)
	defer log.Sync()

	f, err := os.Open(c.String("in"))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "synthesizer: opening --in"), 1)
	}
	bdd, err := serial.Read(f)
	f.Close()
	if err != nil {
		return cli.Exit(errors.Wrap(err, "synthesizer: parsing serialised BDD"), 1)
	}
	if err := bdd.Assert(); err != nil {
		return cli.Exit(errors.Wrap(err, "synthesizer: BDD failed integrity check"), 1)
	}

	all := registry()
	var selected []planner.Target
	for _, name := range cfg.Targets {
		t, ok := all[name]
		if !ok {
			return cli.Exit(errors.Errorf("synthesizer: unknown target %q", name), 2)
		}
		selected = append(selected, t)
	}
	if len(selected) == 0 {
		return cli.Exit(errors.New("synthesizer: --targets must name at least one target"), 2)
	}

	initialTarget := c.String("initial-target")
	if _, ok := all[initialTarget]; !ok {
		return cli.Exit(errors.Errorf("synthesizer: unknown --initial-target %q", initialTarget), 2)
	}

	driver := planner.NewDriver(selected, initialTarget, log)
	initial := planner.NewEP(0, bdd, placement.NewContext())
	placement.LoadObjectConfigs(bdd, initial.Context())

	best := driver.Run(initial)
	if best == nil {
		return cli.Exit(errors.New("synthesizer: search exhausted the open set without completing a plan"), 1)
	}
	if !best.Done() {
		log.Warnw("synthesizer: returning a partial plan, at least one leaf is still active")
	}

	rendering := renderPlan(best)
	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(rendering), 0644); err != nil {
			return cli.Exit(errors.Wrap(err, "synthesizer: writing --out"), 1)
		}
	} else {
		fmt.Print(rendering)
	}
	return nil
}

// renderPlan walks the winning EP's tree in pre-order, printing each
// module's target/name — a minimal stand-in for a real per-target code
// emitter, which spec.md §1 keeps out of scope.
func renderPlan(ep *planner.EP) string {
	var b strings.Builder
	var walk func(id planner.EPNodeID, depth int)
	walk = func(id planner.EPNodeID, depth int) {
		n, ok := ep.GetEPNode(id)
		if !ok {
			return
		}
		fmt.Fprintf(&b, "%s[%s] %s (bound to BDD node %d)\n",
			strings.Repeat("  ", depth), n.Module.TargetTag, n.Module.Name, n.Module.BoundNode)
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	walk(ep.Root(), 0)
	fmt.Fprintf(&b, "estimate_pps=%.2f speculation_pps=%.2f\n",
		ep.Context().EstimatePPS(), ep.Context().SpeculationPPS())
	return b.String()
}
