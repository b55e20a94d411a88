package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/roster/internal/client"
	"example.com/roster/internal/domain"
)

func newListCmd(newClient func() *client.Client) *cobra.Command {
	var showParticipants bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List activities with their enrollment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			activities, err := newClient().ListActivities(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]domain.ActivityName, 0, len(activities))
			for name := range activities {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACTIVITY\tENROLLED\tSCHEDULE")
			for _, name := range names {
				activity := activities[name]
				fmt.Fprintf(w, "%s\t%d/%d\t%s\n", name, len(activity.Participants), activity.MaxParticipants, activity.Schedule)
				if showParticipants && len(activity.Participants) > 0 {
					fmt.Fprintf(w, "\t\t%s\n", strings.Join(activity.Participants, ", "))
				}
			}
			return w.Flush()
		},
	}
	listCmd.Flags().BoolVarP(&showParticipants, "participants", "p", false, "print participant emails")
	return listCmd
}
