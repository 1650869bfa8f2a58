// Package main provides the entry point for the review analyzer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "review_analyzer",
	Short: "Steam review classification pipeline",
	Long:  "Review analyzer classifies game reviews into a fixed category taxonomy using the Gemini API, with resumable progress and aggregate reporting.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
