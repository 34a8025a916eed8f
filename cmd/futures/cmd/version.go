package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the futures CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("futures version %s\n", version)
		fmt.Println("A futures backtesting and trade accounting engine")
		fmt.Println("https://github.com/rustyeddy/futures")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
