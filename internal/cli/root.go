package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/molubot/molubot/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		"  __  __       _       ____        _\n" +
		" |  \\/  | ___ | |_   _| __ )  ___ | |_\n" +
		" | |\\/| |/ _ \\| | | | |  _ \\ / _ \\| __|\n" +
		" | |  | | (_) | | |_| | |_) | (_) | |_\n" +
		" |_|  |_|\\___/|_|\\__,_|____/ \\___/ \\__|\n"
)

var rootCmd = &cobra.Command{
	Use:   "molubot",
	Short: "MoluBot - group chat assistant",
	Long:  color.CyanString(logo) + "\nA command-dispatching group chat bot with an LLM fallback.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}

func printHeader(title string) {
	fmt.Println()
	color.New(color.FgCyan, color.Bold).Println(title)
	fmt.Println()
}
