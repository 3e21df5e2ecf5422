// Command archmigrate runs the archive migration engine (§1, §6): moving
// candidates from a primary source suite into a target suite subject to
// installability and policy checks, the way distri's cmd/distri dispatches
// its own build/install/mirror verbs from one binary.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/logging"
)

var (
	configPath      string
	archFlag        []string
	actionsFlag     []string
	hintsFlag       string
	hintTester      bool
	dryRun          bool
	controlFiles    string
	nuninstCache    string
	computeMigrations bool
	seriesFlag      string
	httpListen      string
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "archmigrate",
		Short: "Migrate candidates between archive suites subject to installability and policy checks",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the migration engine's configuration file")
	root.PersistentFlags().StringSliceVar(&archFlag, "architectures", nil, "restrict to this set of architectures (default: config file's ARCHITECTURES)")
	root.PersistentFlags().StringSliceVar(&actionsFlag, "actions", nil, "manual migration set (parsed, but not used: run always scans the source suite for candidates)")
	root.PersistentFlags().StringVar(&hintsFlag, "hints", "", "semicolon-separated command-line hints, as if from an anonymous Hints file")
	root.PersistentFlags().BoolVar(&hintTester, "hint-tester", false, "start the interactive hint-tester REPL instead of running a migration")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "compute and report the migration without writing any output files")
	root.PersistentFlags().StringVar(&controlFiles, "control-files", "", "directory holding Sources/Packages/Release/Hints instead of fetching them")
	root.PersistentFlags().StringVar(&nuninstCache, "nuninst-cache", "", "path to a cached nuninst counters file to seed from")
	root.PersistentFlags().BoolVar(&computeMigrations, "compute-migrations", true, "scan for and apply eligible migrations (--compute-migrations=false to only report excuses)")
	root.PersistentFlags().StringVar(&seriesFlag, "series", "", "override the configured series name")
	root.PersistentFlags().StringVar(&httpListen, "listen", "", "host:port to listen on for HTTP (/metrics, /debug/pprof)")

	root.AddCommand(newRunCmd(), newPrintUninstCmd(), newHintTesterCmd())
	return root
}

func main() {
	log := logging.Default()
	ctx, cancel := archmigrate.InterruptibleContext()
	defer cancel()

	err := rootCmd().ExecuteContext(ctx)
	if atErr := archmigrate.RunAtExit(); atErr != nil && err == nil {
		err = atErr
	}
	if err != nil {
		log.Error("archmigrate failed", "error", err)
		os.Exit(1)
	}
}

func maybeServeHTTP(listen string) {
	if listen == "" {
		return
	}
	go func() {
		if err := http.ListenAndServe(listen, nil); err != nil {
			fmt.Fprintf(os.Stderr, "http listener on %s exited: %v\n", listen, err)
		}
	}()
}
