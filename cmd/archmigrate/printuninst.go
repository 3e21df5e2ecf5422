package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/distr1/archmigrate/internal/driver"
)

func newPrintUninstCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-uninst",
		Short: "Load the target suite and print its per-architecture installability summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			if eng.audit != nil {
				defer eng.audit.Close()
			}
			n := driver.Compute(eng.tester, eng.target, eng.ctx.Archs)

			arches := make([]string, 0, len(n))
			for arch := range n {
				arches = append(arches, arch)
			}
			sort.Strings(arches)
			for _, arch := range arches {
				total := len(eng.target.Binaries[arch])
				broken := len(n[arch])
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %5d broken / %5d total\n", arch, broken, total)
				for _, id := range n[arch] {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
				}
			}
			return nil
		},
	}
}
