package main

import (
	"fmt"
	"io"
	"strings"

	"exodash/domain/lightcurve"
	"exodash/domain/physics"

	"github.com/spf13/cobra"
)

func newLightCurveCmd() *cobra.Command {
	var depth, duration float64
	var points, height int

	cmd := &cobra.Command{
		Use:   "lightcurve",
		Short: "Plot a synthetic transit light curve",
		Long: `Plot the idealized brightness dip for a transit.

Example: exodash-cli lightcurve --depth 580 --duration 6.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := lightcurve.Synthesize(depth, duration, points)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Transit %.0f ppm over %.1f h", depth, duration)))
			plotCurve(out, samples, height)
			keyValues(out, [][2]string{
				{"window", fmt.Sprintf("%d samples", lightcurve.WindowWidth(duration, points))},
				{"minimum", fmt.Sprintf("%.6f", lightcurve.MinBrightness(samples))},
			})
			return nil
		},
	}

	cmd.Flags().Float64Var(&depth, "depth", 0, "Transit depth in ppm")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Transit duration in hours")
	cmd.Flags().IntVar(&points, "points", 60, "Number of samples")
	cmd.Flags().IntVar(&height, "height", 8, "Plot height in rows")
	_ = cmd.MarkFlagRequired("depth")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

// plotCurve draws samples as a column chart scaled between the curve's minimum and 1.
func plotCurve(w io.Writer, samples []lightcurve.Sample, height int) {
	if len(samples) == 0 || height <= 0 {
		return
	}
	low := lightcurve.MinBrightness(samples)
	span := 1 - low
	levels := make([]int, len(samples))
	for i, s := range samples {
		if span <= 0 {
			levels[i] = height
			continue
		}
		levels[i] = int((s.Brightness-low)/span*float64(height-1)+0.5) + 1
	}
	for row := height; row >= 1; row-- {
		var b strings.Builder
		for _, l := range levels {
			if l >= row {
				b.WriteString("█")
			} else {
				b.WriteString(" ")
			}
		}
		fmt.Fprintln(w, "  "+b.String())
	}
}

func newPhysicsCmd() *cobra.Command {
	var teq, radius float64
	var set, file string

	cmd := &cobra.Command{
		Use:   "physics",
		Short: "Bucket a planet by equilibrium temperature and radius",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := physics.Builtin(set)
			if file != "" {
				table, err = physics.LoadFile(file)
			}
			if err != nil {
				return err
			}
			pc, err := physics.New(table)
			if err != nil {
				return err
			}

			var teqPtr, radiusPtr *float64
			if cmd.Flags().Changed("teq") {
				teqPtr = &teq
			}
			if cmd.Flags().Changed("radius") {
				radiusPtr = &radius
			}
			zone := pc.HabitabilityZone(teqPtr)
			category := pc.PlanetCategory(radiusPtr)

			fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(strings.Join([]string{
				titleStyle.Render("Breakpoints: " + table.Name),
				labelStyle.Render("zone     ") + zone.Label,
				labelStyle.Render("category ") + category.Label + labelStyle.Render(" "+category.Description),
			}, "\n")))
			return nil
		},
	}

	cmd.Flags().Float64Var(&teq, "teq", 0, "Equilibrium temperature in K")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Planet radius in Earth radii")
	cmd.Flags().StringVar(&set, "set", physics.SetDashboard, "Built-in breakpoint set")
	cmd.Flags().StringVar(&file, "file", "", "YAML breakpoint table (overrides --set)")
	return cmd
}
