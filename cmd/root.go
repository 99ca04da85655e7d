package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"s3sync/config"
	"s3sync/internal/s3client"
	"s3sync/pkg/utils"
)

var (
	cfg      *config.Config
	logLevel *slog.LevelVar

	// failed is set by reportError so main can exit non-zero after the
	// error document has been printed.
	failed bool
)

var errCommandFailed = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "s3sync",
	Short: "Browse an S3 bucket and sync objects to local disk",
	Long: `s3sync is a command-line tool for browsing S3-compatible buckets as a folder tree,
downloading files and folders with conflict handling, and deleting objects.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if isVerbose(cmd) && logLevel != nil {
			logLevel.Set(slog.LevelDebug)
		}
	},
}

func Execute(ctx context.Context, config *config.Config, level *slog.LevelVar) error {
	cfg = config
	logLevel = level
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return err
	}
	if failed {
		return errCommandFailed
	}
	return nil
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)

	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Override bucket name from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getBucketName(cmd *cobra.Command) string {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		return bucket
	}
	return cfg.BucketName
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// newClient builds a client for the bucket selected by config and --bucket.
func newClient(cmd *cobra.Command) (*s3client.Client, error) {
	c := *cfg
	c.BucketName = getBucketName(cmd)
	if err := c.RequireBucket(); err != nil {
		return nil, err
	}
	return s3client.New(&c)
}

// commandContext bounds the command by its --timeout flag, in seconds.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	timeout, _ := cmd.Flags().GetInt("timeout")
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(timeout)*time.Second)
}

func reportError(err error, command string) {
	failed = true
	utils.PrintError(err, command)
}

const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
