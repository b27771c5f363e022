package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "exodash-cli",
		Short:         "Exoplanet candidate classification from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMissionsCmd(),
		newSchemaCmd(),
		newSampleCmd(),
		newTemplateCmd(),
		newClassifyCmd(),
		newLightCurveCmd(),
		newPhysicsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
