// Package hints parses Hints/<user> files and tracks which hint kinds each
// user may issue (§4.D, §6, §9 "HINTS_ALL").
package hints

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/distr1/archmigrate"
)

// Kind is one hint command.
type Kind string

const (
	Easy            Kind = "easy"
	HintCmd         Kind = "hint"
	ForceHint       Kind = "force-hint"
	Remove          Kind = "remove"
	Block           Kind = "block"
	BlockUdeb       Kind = "block-udeb"
	Unblock         Kind = "unblock"
	UnblockUdeb     Kind = "unblock-udeb"
	BlockAll        Kind = "block-all"
	Force           Kind = "force"
	Urgent          Kind = "urgent"
	AgeDays         Kind = "age-days"
	Approve         Kind = "approve"
	IgnorePiuparts  Kind = "ignore-piuparts"
	IgnoreRCBugs    Kind = "ignore-rc-bugs"
	ForceSkiptest   Kind = "force-skiptest"
	ForceBadtest    Kind = "force-badtest"
	Remark          Kind = "remark"
)

// All lists every recognised hint kind, in the order §6 documents them.
var All = []Kind{
	Easy, HintCmd, ForceHint, Remove, Block, BlockUdeb, Unblock, UnblockUdeb,
	BlockAll, Force, Urgent, AgeDays, Approve, IgnorePiuparts, IgnoreRCBugs,
	ForceSkiptest, ForceBadtest, Remark,
}

// HintsAll is the wildcard sentinel a user's permission list may contain
// meaning "every hint kind is permitted" (§9: "the intended semantics is
// 'any hint kind permitted'; treat as an explicit wildcard token").
const HintsAll = "ALL"

// Hint is one parsed command from a Hints/<user> file.
type Hint struct {
	Kind   Kind
	Author string
	Items  []archmigrate.MigrationItem
	Remark string // only set for Kind == Remark
}

// Permissions maps a user name to the set of hint kinds they may issue.
// Allows short-circuits to true when the user's list contains HintsAll.
type Permissions map[string]map[Kind]bool

// Allows reports whether user may issue a hint of kind k.
func (p Permissions) Allows(user string, k Kind) bool {
	kinds, ok := p[user]
	if !ok {
		return false
	}
	if kinds[Kind(HintsAll)] {
		return true
	}
	return kinds[k]
}

// ParseError reports a hint line that failed to parse or that its author
// lacked permission for; per §7 this is always non-fatal (the hint is
// dropped, the run continues).
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hints: line %d: %s", e.Line, e.Reason)
}

// Parse reads a Hints/<author> file's contents. Blank lines and
// '#'-prefixed lines are ignored; a bare "finished" line terminates parsing
// early (§6). Lines naming an unrecognised command, or a command the
// permissions table doesn't grant author, are skipped and reported as
// warnings rather than aborting the parse (§7 "Hint parse/permission
// error: warned, hint ignored, run continues").
func Parse(r io.Reader, author string, archs archmigrate.ArchTable, perms Permissions) ([]Hint, []*ParseError) {
	var out []Hint
	var warnings []*ParseError
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "finished" {
			break
		}
		fields := strings.Fields(line)
		cmd := Kind(fields[0])
		if !isKnownKind(cmd) {
			warnings = append(warnings, &ParseError{Line: lineNo, Reason: "unrecognised command " + fields[0]})
			continue
		}
		if !perms.Allows(author, cmd) {
			warnings = append(warnings, &ParseError{Line: lineNo, Reason: fmt.Sprintf("%s not permitted to issue %s", author, cmd)})
			continue
		}
		h := Hint{Kind: cmd, Author: author}
		if cmd == Remark {
			h.Remark = strings.TrimPrefix(line, string(Remark)+" ")
			out = append(out, h)
			continue
		}
		for _, f := range fields[1:] {
			h.Items = append(h.Items, archmigrate.ParseMigrationItem(f, archs))
		}
		out = append(out, h)
	}
	return out, warnings
}

// ParsePermissions turns the raw per-user "kind,kind,..." lists read from
// configuration into a Permissions table, so config.Config's
// HintPermissions field doesn't need this package's Kind type.
func ParsePermissions(raw map[string][]string) Permissions {
	perms := make(Permissions, len(raw))
	for user, kinds := range raw {
		set := make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			set[Kind(k)] = true
		}
		perms[user] = set
	}
	return perms
}

func isKnownKind(k Kind) bool {
	for _, known := range All {
		if known == k {
			return true
		}
	}
	return false
}
