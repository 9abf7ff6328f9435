package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/gordonklaus/fm"
	"github.com/spf13/cobra"
)

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the built-in operator networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCARRIERS\tMODULATION")
			for _, name := range fm.AlgorithmNames() {
				a := fm.Algorithms[name]
				fmt.Fprintf(w, "%s\t%v\t%s\n", name, a.Carriers(), edges(a.Routing))
			}
			return w.Flush()
		},
	}
}

// edges describes a routing matrix as "j→i" pairs.
func edges(m fm.RoutingMatrix) string {
	s := ""
	for i := range m {
		for j := range m[i] {
			if m[i][j] == 0 {
				continue
			}
			if s != "" {
				s += " "
			}
			s += fmt.Sprintf("%d→%d", j, i)
			if m[i][j] != 1 {
				s += fmt.Sprintf("(%g)", m[i][j])
			}
		}
	}
	if s == "" {
		return "-"
	}
	return s
}
