package archmigrate

import "log/slog"

// Context carries everything that used to live behind module-level globals
// in the original tool (the architecture list, logging, suite registry):
// see the design note in §9 on replacing global state with an explicit
// Context threaded into every component.
type Context struct {
	Log    *slog.Logger
	Archs  ArchTable
	Series string

	// NoBreakAll, Break, OutOfSync and New are the architecture categories
	// from §4.H that influence whether a regression blocks a migration.
	NoBreakAll ArchTable
	Break      ArchTable
	OutOfSync  ArchTable
	New        ArchTable
}

// ArchCategory classifies one architecture for the purposes of the
// installability-regression check in the migration driver (§4.H).
type ArchCategory int

const (
	CategoryNormal ArchCategory = iota
	CategoryNoBreakAll
	CategoryBreak
	CategoryOutOfSync
	CategoryNew
)

// Category reports which acceptance rule applies to arch.
func (c *Context) Category(arch string) ArchCategory {
	switch {
	case c.Break[arch]:
		return CategoryBreak
	case c.New[arch]:
		return CategoryNew
	case c.OutOfSync[arch]:
		return CategoryOutOfSync
	case c.NoBreakAll[arch]:
		return CategoryNoBreakAll
	default:
		return CategoryNormal
	}
}
