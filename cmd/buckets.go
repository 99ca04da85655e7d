package cmd

import (
	"github.com/spf13/cobra"

	"s3sync/internal/models"
	"s3sync/internal/s3client"
	"s3sync/pkg/utils"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List buckets in the configured region",
	Long: `List the buckets visible to the configured credentials.

Only buckets located in REGION are shown; buckets whose region the store does not
report are always included. The list is sorted by name.`,
	Example: `  # List buckets
  s3sync buckets

  # Verbose output
  s3sync buckets --verbose`,
	Run: func(cmd *cobra.Command, args []string) {
		runBuckets(cmd)
	},
}

func runBuckets(cmd *cobra.Command) {
	if err := cfg.Validate(); err != nil {
		reportError(err, "buckets")
		return
	}

	client, err := s3client.New(cfg)
	if err != nil {
		reportError(err, "buckets")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		reportError(err, "buckets")
		return
	}
	if buckets == nil {
		buckets = []models.Bucket{}
	}

	result := models.BucketList{
		Region:  cfg.Region,
		Buckets: buckets,
		Count:   len(buckets),
	}
	if err := utils.PrintJSON(result); err != nil {
		reportError(err, "buckets")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Found %d buckets\n", result.Count)
	}
}

func init() {
	bucketsCmd.Flags().Int("timeout", 60, "Timeout in seconds for the operation")
}
