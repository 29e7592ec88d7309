package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/rundown-core/internal/automation"
	"github.com/nerrad567/rundown-core/internal/rundown"
)

func newResolveCmd() *cobra.Command {
	var (
		live   string
		manual []string
	)

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Print the active audio for a LIVE item and set of live manual items",
		Example: `  rundown resolve show.yaml --live headlines
  rundown resolve show.yaml --live interview --manual guest-mic,bed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := rundown.LoadFile(args[0])
			if err != nil {
				return err
			}
			idx := rundown.Build(show)

			if live != "" {
				if _, ok := idx.Position(live); !ok {
					return fmt.Errorf("%q is not a navigable item of %s", live, show.ID)
				}
			}
			for _, id := range manual {
				if _, ok := idx.ManualItem(id); !ok {
					return fmt.Errorf("%q is not a manual item of %s", id, show.ID)
				}
			}

			audio := automation.Resolve(idx, live, manual)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(audio)
		},
	}

	cmd.Flags().StringVar(&live, "live", "", "id of the LIVE item")
	cmd.Flags().StringSliceVar(&manual, "manual", nil, "ids of live manual items, in the order they went live")
	return cmd
}
