package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/distr1/archmigrate/internal/driver"
	"github.com/distr1/archmigrate/internal/excuse"
	"github.com/distr1/archmigrate/internal/hints"
	"github.com/distr1/archmigrate/internal/order"
	"github.com/distr1/archmigrate/internal/output"
	"github.com/distr1/archmigrate/internal/policy"
	"github.com/distr1/archmigrate/internal/txn"
)

// urgencyMinAge maps an Urgency file keyword to its minimum age requirement
// in days, the table the age policy looks candidates up in (§6, §7).
var urgencyMinAge = map[string]int{
	"low": 10, "medium": 5, "high": 2, "emergency": 0, "critical": 0,
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Compute and apply the next migration pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hintTester {
				return runHintTester(cmd.Context())
			}
			return runMigration(cmd.Context())
		},
	}
}

// runMigration assembles the engine, scans every candidate source for an
// excuse, invalidates the ones with impossible dependencies, schedules the
// survivors and applies them through the Migration Driver (§4).
func runMigration(ctx context.Context) error {
	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	if eng.audit != nil {
		defer eng.audit.Close()
	}

	var excuses []*excuse.Excuse
	removed := make(map[string]bool)
	for name := range eng.target.Sources {
		if _, ok := eng.source.Sources[name]; ok {
			continue
		}
		if e := eng.builder.BuildRemoval(name, hintsFor(eng.hints, name)); e != nil {
			excuses = append(excuses, e)
			removed[name] = true
		}
	}
	for name := range eng.source.Sources {
		if removed[name] {
			continue
		}
		hs := hintsFor(eng.hints, name)
		e := eng.builder.BuildFullSource(name, hs)
		if e == nil {
			continue
		}
		eng.builder.ScanDepends(e, name)
		eng.builder.Evaluate(e, eng.candidateFor(name, hs))
		excuses = append(excuses, e)
	}

	valid := make(map[string]bool, len(excuses))
	blockedNames := make(map[string]bool)
	for _, e := range excuses {
		if e.Verdict.IsRejected() {
			if e.Verdict >= policy.REJECTED_BLOCKED_BY_ANOTHER_ITEM {
				blockedNames[e.Item.Name] = true
			}
			continue
		}
		valid[e.Item.Name] = true
	}
	excuse.Invalidate(excuses, valid, func(name string) bool { return blockedNames[name] })

	var report *driver.Report
	if !computeMigrations {
		report = &driver.Report{}
	} else {
		groups := driver.GroupsFromExcuses(excuses, eng.target, eng.source, eng.ctx.Archs)
		schedule, dropped := order.Solve(groups, eng.universe)
		for _, d := range dropped {
			eng.ctx.Log.Warn("group dropped from schedule", "reason", d.Error())
		}
		if dryRun {
			report = eng.driver.RunBatch(schedule)
		} else {
			if nuninstCache != "" {
				if seed, err := output.ReadNuninst(nuninstCache, eng.target); err == nil {
					eng.driver.SeedNuninst = seed
				} else if !os.IsNotExist(err) {
					eng.ctx.Log.Warn("ignoring unreadable nuninst cache", "path", nuninstCache, "error", err)
				}
			}
			report = eng.driver.RunBatch(schedule)
			eng.driver.SmoothUpdatesPass(eng.source.Class)
			if eng.audit != nil {
				for _, g := range report.Accepted {
					eng.audit.RecordGroup(txn.New(nil).ID, g, true)
				}
				for _, g := range report.Rejected {
					eng.audit.RecordGroup(txn.New(nil).ID, g, false)
				}
			}
		}
	}

	if !dryRun {
		if err := writeResults(eng, excuses, report); err != nil {
			eng.ctx.Log.Error("writing result files", "error", err)
		}
	}

	eng.ctx.Log.Info("migration pass complete", "accepted", len(report.Accepted), "rejected", len(report.Rejected), "excuses", len(excuses))
	fmt.Fprintf(os.Stdout, "accepted %d, rejected %d, %d excuses computed\n", len(report.Accepted), len(report.Rejected), len(excuses))
	return nil
}

func writeResults(eng *engine, excuses []*excuse.Excuse, report *driver.Report) error {
	dir := eng.cfg.StateDir
	if dir == "" {
		return nil
	}
	now := time.Now()
	n := driver.Compute(eng.tester, eng.target, eng.ctx.Archs)
	if err := output.WriteNuninst(dir+"/nuninst", n, n, now); err != nil {
		return fmt.Errorf("nuninst: %w", err)
	}
	if nuninstCache != "" {
		if err := output.WriteNuninst(nuninstCache, n, n, now); err != nil {
			return fmt.Errorf("nuninst-cache: %w", err)
		}
	}
	if err := output.WriteHeidiResult(dir+"/HeidiResult", eng.target); err != nil {
		return fmt.Errorf("HeidiResult: %w", err)
	}
	if err := output.WriteHeidiResultDelta(dir+"/HeidiResultDelta", report.Accepted); err != nil {
		return fmt.Errorf("HeidiResultDelta: %w", err)
	}
	if err := output.WriteExcusesYAML(dir+"/excuses.yaml", excuses); err != nil {
		return fmt.Errorf("excuses.yaml: %w", err)
	}
	if err := output.WriteExcusesHTML(dir+"/excuses.html", excuses); err != nil {
		return fmt.Errorf("excuses.html: %w", err)
	}
	return nil
}

// hintsFor filters the merged hint set down to those naming item (the
// source item itself, or one of its binNMUs).
func hintsFor(all []hints.Hint, name string) []hints.Hint {
	var out []hints.Hint
	for _, h := range all {
		for _, it := range h.Items {
			if it.Name == name {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// candidateFor builds the policy.Candidate for a full-source excuse from
// the engine's loaded Dates/Urgency/BugsV auxiliary files and the hints
// naming it, the way the original tool's britney.py assembles a candidate's
// policy inputs from the same set of files.
func (eng *engine) candidateFor(name string, hs []hints.Hint) policy.Candidate {
	srcPkg := eng.source.Sources[name]
	c := policy.Candidate{SourceName: name, ToVersion: srcPkg.Version.String()}
	if tgt, ok := eng.target.Sources[name]; ok {
		c.FromVersion = tgt.Version.String()
	}

	minAge := urgencyMinAge["low"]
	if u, ok := eng.urgencies[name]; ok {
		if m, ok := urgencyMinAge[u]; ok {
			minAge = m
		}
	}
	c.MinAgeDays = minAge
	if d, ok := eng.dates[name]; ok && d.Version == srcPkg.Version.String() {
		c.AgeDays = daysSinceEpoch(d.Epoch)
	}

	c.RCBugsAdded = eng.bugsv[name]

	for _, h := range hs {
		switch h.Kind {
		case hints.Force, hints.ForceHint:
			c.Forced = true
		case hints.Urgent:
			c.Urgent = true
		case hints.IgnoreRCBugs:
			c.RCBugsAdded = nil
		case hints.IgnorePiuparts:
			c.PiupartsFails = false
		case hints.ForceSkiptest:
			c.Forced = true
		case hints.ForceBadtest:
			c.Forced = true
		}
	}
	return c
}

func daysSinceEpoch(epoch int) int {
	return int(time.Now().Unix()/86400) - epoch
}
