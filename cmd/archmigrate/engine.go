package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/archive"
	"github.com/distr1/archmigrate/internal/audit"
	"github.com/distr1/archmigrate/internal/config"
	"github.com/distr1/archmigrate/internal/driver"
	"github.com/distr1/archmigrate/internal/excuse"
	"github.com/distr1/archmigrate/internal/hints"
	"github.com/distr1/archmigrate/internal/logging"
	"github.com/distr1/archmigrate/internal/metrics"
	"github.com/distr1/archmigrate/internal/policy"
	"github.com/distr1/archmigrate/internal/suitestate"
	"github.com/distr1/archmigrate/internal/tester"
	"github.com/distr1/archmigrate/internal/universe"
)

// engine bundles everything a migration run needs after configuration,
// ingestion and the universe build have all completed.
type engine struct {
	cfg      *config.Config
	ctx      *archmigrate.Context
	target   *archmigrate.Suite
	source   *archmigrate.Suite
	universe *universe.PackageUniverse
	tester   *tester.Tester
	state    *suitestate.State
	driver   *driver.Driver
	builder  *excuse.Builder
	hints    []hints.Hint
	audit    *audit.Log

	dates      archive.Dates
	urgencies  archive.Urgencies
	bugsv      archive.BugsV
}

// buildEngine loads configuration, ingests every configured suite's
// Sources/Packages files plus the Hints, BugsV, Dates and Urgency files
// (and, only with --control-files, the constraints file; Release and
// faux-packages files are not loaded), and assembles the Installability Tester, Target Suite
// State, Policy Engine, Excuse Builder and Migration Driver on top.
func buildEngine(ctx context.Context) (*engine, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if seriesFlag != "" {
		cfg.Series = seriesFlag
	}
	archs := cfg.Archs
	if len(archFlag) > 0 {
		archs = archmigrate.NewArchTable(archFlag...)
	}

	log := logging.Default()
	mctx := &archmigrate.Context{
		Log: log, Archs: archs, Series: cfg.Series,
		NoBreakAll: cfg.NoBreakAll, Break: cfg.Break, OutOfSync: cfg.OutOfSync, New: cfg.New,
	}

	var target *archmigrate.Suite
	var sources []*archmigrate.Suite
	fetcher := archive.NewFetcher(controlFiles == "")
	for _, sc := range cfg.Suites {
		repo := sc.Repo
		if controlFiles != "" {
			repo = archmigrate.Repo{Path: controlFiles, PkgPath: controlFiles}
		}
		suite, err := archive.LoadSuite(ctx, fetcher, repo, sc.Class, sc.Name, sc.Name, archs)
		if err != nil {
			return nil, fmt.Errorf("loading suite %s: %w", sc.Name, err)
		}
		log.Info("loaded suite", "name", sc.Name, "class", sc.Class, "sources", len(suite.Sources))
		switch sc.Class {
		case archmigrate.Target:
			target = suite
		default:
			sources = append(sources, suite)
		}
	}
	if target == nil {
		return nil, fmt.Errorf("config names no target suite")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("config names no source suite")
	}
	source := sources[0]
	for _, s := range sources[1:] {
		mergeAdditionalSource(source, s)
	}

	u, err := universe.Build(archs, append([]*archmigrate.Suite{target}, sources...)...)
	if err != nil {
		return nil, fmt.Errorf("building universe: %w", err)
	}

	var essential []archmigrate.BinaryId
	for _, byName := range target.Binaries {
		for _, bp := range byName {
			if bp.Essential {
				essential = append(essential, bp.ID)
			}
		}
	}
	reg := metrics.New()
	stats := tester.NewStats(reg.Registerer())
	t := tester.New(u, archs, essential, stats)
	state := suitestate.New(target, t, archs)

	perms := hints.ParsePermissions(cfg.HintPermissions)
	hs, warnings, err := archive.LoadHints(cfg.HintsDir, archs, perms)
	if err != nil {
		return nil, fmt.Errorf("loading hints: %w", err)
	}
	for _, w := range warnings {
		log.Warn("hint ignored", "reason", w.Error())
	}
	if hintsFlag != "" {
		r := strings.NewReader(strings.ReplaceAll(hintsFlag, ";", "\n"))
		cliHints, cliWarnings := hints.Parse(r, "cmdline", archs, hints.Permissions{"cmdline": {hints.Kind(hints.HintsAll): true}})
		for _, w := range cliWarnings {
			log.Warn("command-line hint ignored", "reason", w.Error())
		}
		hs = append(hs, cliHints...)
	}

	var autopkgtestFetch policy.ResultFetcher
	if cfg.AutopkgtestURL != "" {
		autopkgtestFetch = httpAutopkgtestFetcher(cfg.AutopkgtestURL)
	}
	engineObj := policy.NewEngine(
		policy.NewAgePolicy(),
		&policy.RCBugsPolicy{},
		&policy.PiupartsPolicy{},
		&policy.BuildDepsPolicy{},
		policy.NewAutopkgtestPolicy(autopkgtestFetch),
	)
	builder := &excuse.Builder{Target: target, Source: source, Universe: u, Engine: engineObj, Archs: archs}

	keep := map[archmigrate.BinaryId]bool{}
	if controlFiles != "" {
		if rc, err := fetcher.Open(ctx, archmigrate.Repo{PkgPath: controlFiles}, "constraints"); err == nil {
			cs, perr := archive.ParseConstraints(rc)
			rc.Close()
			if perr == nil {
				keep = archive.KeepInstallableSet(cs, target, archs)
			}
		}
	}

	d := &driver.Driver{Ctx: mctx, State: state, Tester: t, Universe: u, Source: source, KeepInstallable: keep}

	var primaryRepo archmigrate.Repo
	for _, sc := range cfg.Suites {
		if sc.Class == archmigrate.PrimarySource {
			primaryRepo = sc.Repo
			break
		}
	}
	if controlFiles != "" {
		primaryRepo = archmigrate.Repo{Path: controlFiles, PkgPath: controlFiles}
	}
	dates, _ := loadDates(ctx, fetcher, primaryRepo)
	urgencies, _ := loadUrgencies(ctx, fetcher, primaryRepo)
	bugsv, _ := loadBugsV(ctx, fetcher, primaryRepo)

	auditLog, err := audit.Open(cfg.AuditDSN)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	if httpListen != "" {
		reg.Serve()
		maybeServeHTTP(httpListen)
	}

	return &engine{
		cfg: cfg, ctx: mctx, target: target, source: source, universe: u,
		tester: t, state: state, driver: d, builder: builder, hints: hs, audit: auditLog,
		dates: dates, urgencies: urgencies, bugsv: bugsv,
	}, nil
}

// loadDates/loadUrgencies/loadBugsV best-effort fetch the matching
// auxiliary file from the primary source suite's repo; a missing file is
// not an error; these are optional inputs to the Age/RCBugs policies.
func loadDates(ctx context.Context, f *archive.Fetcher, repo archmigrate.Repo) (archive.Dates, error) {
	rc, err := f.Open(ctx, repo, "Dates")
	if err != nil {
		return nil, nil
	}
	defer rc.Close()
	return archive.ParseDates(rc)
}

func loadUrgencies(ctx context.Context, f *archive.Fetcher, repo archmigrate.Repo) (archive.Urgencies, error) {
	rc, err := f.Open(ctx, repo, "Urgency")
	if err != nil {
		return nil, nil
	}
	defer rc.Close()
	return archive.ParseUrgencies(rc)
}

func loadBugsV(ctx context.Context, f *archive.Fetcher, repo archmigrate.Repo) (archive.BugsV, error) {
	rc, err := f.Open(ctx, repo, "BugsV")
	if err != nil {
		return nil, nil
	}
	defer rc.Close()
	return archive.ParseBugsV(rc)
}

// mergeAdditionalSource folds an AdditionalSource suite's sources/binaries
// into the primary source suite, skipping anything the primary already
// provides (§3: "the primary source suite takes priority").
func mergeAdditionalSource(primary, extra *archmigrate.Suite) {
	for name, src := range extra.Sources {
		if _, ok := primary.Sources[name]; !ok {
			primary.Sources[name] = src
		}
	}
	for arch, byName := range extra.Binaries {
		for name, bp := range byName {
			if _, ok := primary.Binary(arch, name); !ok {
				primary.AddBinary(bp)
			}
		}
	}
}
