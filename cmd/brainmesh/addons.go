package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var addonsCmd = &cobra.Command{
	Use:   "addons",
	Short: "Lists registered addons with their panels, properties and operators",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listAddons(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(addonsCmd)
}

func listAddons(w io.Writer) error {
	v := registry.Values()
	labels := make(map[string]string)
	for _, op := range registry.Operators() {
		labels[op.ID()] = op.Label()
	}
	for _, a := range registry.Addons() {
		fmt.Fprintf(w, "%s [%s]\n  %s\n", a.Name, a.Category, a.Description)
		for _, p := range a.Panels {
			fmt.Fprintf(w, "  panel %q (%s)\n", p.Label, p.Location)
			for _, row := range p.Rows {
				var cells []string
				for _, it := range row {
					if it.Operator != "" {
						text := it.Text
						if text == "" {
							text = labels[it.Operator]
						}
						cells = append(cells, fmt.Sprintf("[%s] %s", text, it.Operator))
						continue
					}
					prop, _ := v.Property(it.Property)
					cells = append(cells, fmt.Sprintf("%s --%s=%s", prop.Name, flagName(it.Property), v.String(it.Property)))
				}
				fmt.Fprintf(w, "    %s\n", strings.Join(cells, " | "))
			}
		}
	}
	return nil
}
