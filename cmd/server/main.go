// Command server runs the interview coach API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview-coach",
	Short: "Interview preparation API",
	Long:  "Scores resumes against job descriptions, generates behavioral questions and grades mock interview answers.",
	// serve is the default when no subcommand is given
	RunE: runServe,
}

func init() {
	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Could not load .env file, using environment")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
