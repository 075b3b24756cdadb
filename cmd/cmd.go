package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hotgen/hotgen/envconfig"
	"github.com/hotgen/hotgen/logutil"
	"github.com/hotgen/hotgen/version"
)

func NewCLI() *cobra.Command {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))

	rootCmd := &cobra.Command{
		Use:     "hotgen",
		Short:   "Generate hot reload proxies from hotfile modules",
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	cobra.EnableCommandSorting = false

	generateCmd := &cobra.Command{
		Use:   "generate HOTFILE...",
		Short: "Generate Go proxy source from hotfiles",
		Args:  cobra.MinimumNArgs(1),
		RunE:  GenerateHandler,
	}
	generateCmd.Flags().StringP("lib", "l", "", "Library name, overrides the hot_module attribute")
	generateCmd.Flags().StringP("dir", "d", "", "Library search directory, overrides the hot_module attribute")
	generateCmd.Flags().StringP("output", "o", "", "Output file, \"-\" for stdout (single hotfile only)")
	generateCmd.Flags().String("runtime", "", "Import path of the loader runtime package")

	inspectCmd := &cobra.Command{
		Use:   "inspect HOTFILE...",
		Short: "Show the modules and hot functions declared in hotfiles",
		Args:  cobra.MinimumNArgs(1),
		RunE:  InspectHandler,
	}

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show hotgen environment variables",
		Args:  cobra.ExactArgs(0),
		RunE:  EnvHandler,
	}

	rootCmd.AddCommand(
		generateCmd,
		inspectCmd,
		envCmd,
	)

	return rootCmd
}
