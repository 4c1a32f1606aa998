package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/releve-converter/internal/categorizer"
	"github.com/insightdelivered/releve-converter/internal/converter"
	"github.com/insightdelivered/releve-converter/internal/extractor"
	"github.com/insightdelivered/releve-converter/internal/writer"
)

func newExtractCommand(rt *runtime) *cobra.Command {
	var input, out, categorizedOut string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Convert every statement in the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("input") {
				rt.cfg.Input = input
			}
			if flags.Changed("out") {
				rt.cfg.Output.All = out
			}
			if flags.Changed("categorized-out") {
				rt.cfg.Output.Categorized = categorizedOut
			}
			return runExtract(cmd, rt)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "directory of releve_<account>_<YYYYMM>.pdf files")
	cmd.Flags().StringVar(&out, "out", "", "path of the full CSV")
	cmd.Flags().StringVar(&categorizedOut, "categorized-out", "", "path of the categorized CSV")

	return cmd
}

func runExtract(cmd *cobra.Command, rt *runtime) error {
	rules, err := rt.rules()
	if err != nil {
		return err
	}

	conv := converter.New(extractor.PDFSource{}, categorizer.New(rules), rt.log)
	res, err := conv.Run(rt.cfg.Input)
	if err != nil {
		return err
	}

	all := &writer.CSVWriter{}
	if err := all.WriteToFile(rt.cfg.Output.All, res.Records); err != nil {
		return fmt.Errorf("writing %s: %w", rt.cfg.Output.All, err)
	}
	categorized := &writer.CSVWriter{Categorized: true}
	if err := categorized.WriteToFile(rt.cfg.Output.Categorized, res.Records); err != nil {
		return fmt.Errorf("writing %s: %w", rt.cfg.Output.Categorized, err)
	}

	rt.log.Info().
		Str("run_id", res.RunID).
		Str("all", rt.cfg.Output.All).
		Str("categorized", rt.cfg.Output.Categorized).
		Msg("wrote CSV files")

	return converter.WriteSummary(cmd.OutOrStdout(), res)
}
