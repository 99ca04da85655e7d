package cmd

import (
	"github.com/spf13/cobra"

	"s3sync/internal/listing"
	"s3sync/internal/models"
	"s3sync/pkg/utils"
)

var infoCmd = &cobra.Command{
	Use:   "info [prefix]",
	Short: "Get bucket information and object statistics",
	Long: `Get detailed information about the S3 bucket: region, creation date, and the
number, total size and latest modification of the objects under a prefix.
The bucket name is taken from the configuration file unless overridden with --bucket flag.`,
	Example: `  # Get info for configured bucket
  s3sync info

  # Statistics for one folder
  s3sync info backups/

  # Get info for specific bucket
  s3sync info --bucket my-other-bucket`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runInfo(cmd, args)
	},
}

func runInfo(cmd *cobra.Command, args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = listing.DirectoryPrefix(args[0])
	}

	client, err := newClient(cmd)
	if err != nil {
		reportError(err, "info")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Getting bucket information for: %s\n", client.BucketName())
	}

	info, err := client.GetBucketInfo(ctx)
	if err != nil {
		reportError(err, "info")
		return
	}

	entries, err := listing.NewLister(client).ListAllFlat(ctx, prefix)
	if err != nil {
		reportError(err, "info")
		return
	}
	info.Prefix = prefix
	addObjectStats(info, entries)

	if err := utils.PrintJSON(info); err != nil {
		reportError(err, "info")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Bucket info retrieved successfully\n")
	}
}

func addObjectStats(info *models.BucketInfo, entries []listing.ObjectEntry) {
	for _, entry := range entries {
		info.ObjectCount++
		if entry.Size != nil {
			info.TotalSizeBytes += *entry.Size
		}
		if entry.LastModified != nil && entry.LastModified.After(info.LastModified) {
			info.LastModified = *entry.LastModified
		}
	}
	info.TotalSizeHuman = utils.FormatBytes(info.TotalSizeBytes)
}

func init() {
	infoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
