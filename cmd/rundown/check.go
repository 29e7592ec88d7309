package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and validate a rundown file and print its navigable sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, path string) error {
	show, err := rundown.LoadFile(path)
	if err != nil {
		return err
	}
	if err := rundown.RequirePlayable(show); err != nil {
		return err
	}

	idx := rundown.Build(show)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s): %d navigable items\n\n", show.Name, show.ID, idx.Len())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tKIND\tMODE\tDURATION\tSEGMENT\tTITLE")
	for i, item := range idx.Items() {
		segment, _ := idx.SegmentOf(item.ID)
		duration := fmt.Sprintf("%gs", item.AutomationDurationSeconds)
		if item.DurationDefaulted {
			duration += "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, item.ID, item.Kind, item.AutomationMode, duration, segment, item.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, block := range idx.ManualBlocks() {
		fmt.Fprintf(out, "\nmanual block %s:", block.ID)
		for _, child := range block.ManualItems {
			fmt.Fprintf(out, " %s(%s)", child.ID, child.Kind)
		}
		fmt.Fprintln(out)
	}

	warnings := invalidAudioCues(show)
	for _, id := range warnings {
		fmt.Fprintf(out, "warning: audio cue %s is missing required fields and will be ignored\n", id)
	}
	return nil
}

// invalidAudioCues lists audio cues, regular or manual, that contribute
// nothing to the active audio state.
func invalidAudioCues(show *rundown.Show) []string {
	var ids []string
	for _, seg := range show.Segments {
		for _, grp := range seg.Groups {
			for _, item := range grp.Items {
				if item.Audio != nil && !item.Audio.Valid {
					ids = append(ids, item.ID)
				}
				for _, child := range item.ManualItems {
					if child.Audio != nil && !child.Audio.Valid {
						ids = append(ids, child.ID)
					}
				}
			}
		}
	}
	return ids
}
