package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stuverse/visavault/internal/config"
	"github.com/stuverse/visavault/internal/events"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *events.Logger
)

var rootCmd = &cobra.Command{
	Use:   "visavault",
	Short: "Encrypted document vault for F1 visa students",
	Long: `Visavault stores student visa documents with zero-knowledge
encryption: files are sealed under keys derived from the owner's
password, which the server never persists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewLoader(cfgPath).Load()
		if err != nil {
			return err
		}
		logger = events.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"Path to config file (default: visavault.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stderr, "✓ "+format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
