package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"exodash/adapters/csvio"
	"exodash/domain/mission"

	"github.com/spf13/cobra"
)

func newMissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missions",
		Short: "List supported missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Missions"))
			for _, id := range mission.Missions() {
				schema, err := mission.SchemaFor(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-7s %s %s\n", id, schema.Title, labelStyle.Render(fmt.Sprintf("(%d features)", len(schema.Features))))
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [mission]",
		Short: "Describe a mission's input features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := mission.SchemaFor(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(schema.Title))

			pairs := make([][2]string, 0, len(schema.Features))
			for _, f := range schema.Features {
				desc := f.Label
				if f.Unit != "" {
					desc += " [" + f.Unit + "]"
				}
				if len(f.Options) > 0 {
					tokens := make([]string, len(f.Options))
					for i, o := range f.Options {
						tokens[i] = o.Value
					}
					desc += " one of " + strings.Join(tokens, "|")
				} else if bounds := mission.FormatBounds(f); bounds != "" {
					desc += " " + bounds
				}
				pairs = append(pairs, [2]string{f.Name, desc})
			}
			keyValues(out, pairs)
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample [mission]",
		Short: "Print a mission's sample candidate as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := mission.SampleFor(args[0])
			if err != nil {
				return err
			}
			body, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
}

func newTemplateCmd() *cobra.Command {
	var outPath string
	var withSample bool

	cmd := &cobra.Command{
		Use:   "template [mission]",
		Short: "Write an upload template CSV for a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := mission.SchemaFor(args[0])
			if err != nil {
				return err
			}
			var row []string
			if withSample {
				row = schema.CSVSample()
			}
			body, err := csvio.Template(schema.CSVHeader(), row)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(outPath, body, 0o644)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (stdout when empty)")
	cmd.Flags().BoolVar(&withSample, "sample", true, "Include the mission's sample row")
	return cmd
}
