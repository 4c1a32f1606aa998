package commands

import (
	"github.com/spf13/cobra"
)

func newRulesCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the category rules in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := rt.rules()
			if err != nil {
				return err
			}
			data, err := rules.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
