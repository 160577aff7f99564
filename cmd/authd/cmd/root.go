package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "authd",
	Short: "authd is the WordTrove authentication service",
	Long: `The WordTrove authentication service manages credential verification,
multi-factor login challenges and session lifecycles for the vocabulary
learning platform.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
