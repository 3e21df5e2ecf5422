// Package config loads the migration engine's configuration: architecture
// table, suite registry and tunables (§6, §9 "pass an explicit Context...").
// There is no module-level DISTRIROOT-style global left: every caller is
// handed a *Context built from a loaded Config.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/distr1/archmigrate"
)

// SuiteConfig describes one entry in the suite registry read from the config
// file: a name, its repo location and its class.
type SuiteConfig struct {
	Name  string
	Class archmigrate.SuiteClass
	Repo  archmigrate.Repo
}

// Config is the fully parsed configuration for one migration run.
type Config struct {
	Series       string
	Archs        archmigrate.ArchTable
	NoBreakAll   archmigrate.ArchTable // arch:all must remain installable
	Break        archmigrate.ArchTable // regressions tolerated
	OutOfSync    archmigrate.ArchTable // allowed to carry older binaries
	New          archmigrate.ArchTable // regressions tolerated during introduction

	Suites []SuiteConfig

	HintsDir        string
	NuninstCacheDir string
	StateDir        string

	SmoothUpdates bool

	// AuditDSN is a postgres connection string for the optional migration
	// audit log (empty disables it).
	AuditDSN string

	// AutopkgtestURL is the base URL of an autopkgtest results feed
	// (empty disables the autopkgtest policy's network fetch; its
	// verdict then always falls back to TestNotRun, which never blocks).
	AutopkgtestURL string

	// HintPermissions is keyed by user name; each value is the raw
	// comma-separated HINT_PERMISSIONS_<USER> list ("easy,hint,remark" or
	// the "ALL" wildcard from §9).
	HintPermissions map[string][]string
}

// Load reads a key=value configuration file (blank lines and '#' comments
// ignored, mirroring the Hints file format in §6) plus an optional sibling
// ".env" overlay for host-local overrides.
func Load(path string) (*Config, error) {
	if envPath := path + ".env"; fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		val = os.Expand(val, os.Getenv)
		raw[strings.ToUpper(key)] = val
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	c := &Config{
		Series:          raw["SERIES"],
		Archs:           archmigrate.NewArchTable(fields(raw["ARCHITECTURES"])...),
		NoBreakAll:      archmigrate.NewArchTable(fields(raw["NOBREAKALL_ARCHES"])...),
		Break:           archmigrate.NewArchTable(fields(raw["BREAK_ARCHES"])...),
		OutOfSync:       archmigrate.NewArchTable(fields(raw["OUTOFSYNC_ARCHES"])...),
		New:             archmigrate.NewArchTable(fields(raw["NEW_ARCHES"])...),
		HintsDir:        raw["HINTSDIR"],
		NuninstCacheDir: raw["NUNINST_CACHE_DIR"],
		StateDir:        raw["STATE_DIR"],
		AuditDSN:        raw["AUDIT_DSN"],
		AutopkgtestURL:  raw["AUTOPKGTEST_URL"],
	}
	if b, err := strconv.ParseBool(raw["SMOOTH_UPDATES"]); err == nil {
		c.SmoothUpdates = b
	} else {
		c.SmoothUpdates = true // default on, matching the original tool
	}

	for _, name := range fields(raw["SOURCE_SUITES"]) {
		c.Suites = append(c.Suites, SuiteConfig{
			Name:  name,
			Class: archmigrate.PrimarySource,
			Repo:  Repo(raw, name),
		})
	}
	for _, name := range fields(raw["ADDITIONAL_SOURCE_SUITES"]) {
		c.Suites = append(c.Suites, SuiteConfig{
			Name:  name,
			Class: archmigrate.AdditionalSource,
			Repo:  Repo(raw, name),
		})
	}
	if target := raw["TARGET_SUITE"]; target != "" {
		c.Suites = append(c.Suites, SuiteConfig{
			Name:  target,
			Class: archmigrate.Target,
			Repo:  Repo(raw, target),
		})
	}

	c.HintPermissions = make(map[string][]string)
	const prefix = "HINT_PERMISSIONS_"
	for key, val := range raw {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		user := strings.ToLower(strings.TrimPrefix(key, prefix))
		c.HintPermissions[user] = fields(strings.ReplaceAll(val, ",", " "))
	}
	return c, nil
}

// Repo looks up the "<SUITE>_PATH" key for suite name and builds a Repo.
func Repo(raw map[string]string, name string) archmigrate.Repo {
	path := raw[strings.ToUpper(name)+"_PATH"]
	return archmigrate.Repo{Path: path, PkgPath: path + "/pkg"}
}

func fields(s string) []string {
	return strings.Fields(s)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
