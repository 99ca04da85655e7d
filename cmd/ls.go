package cmd

import (
	"github.com/spf13/cobra"

	"s3sync/internal/listing"
	"s3sync/internal/models"
	"s3sync/pkg/utils"
)

var lsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List one folder level of the bucket",
	Long: `List the folders and files directly under a prefix.

Folders are listed first, then files, each group sorted by key. Without a prefix the
bucket root is listed. By default every page is fetched; use --paged to fetch a single
page and continue with --marker.`,
	Example: `  # List the bucket root
  s3sync ls

  # List a folder
  s3sync ls photos/2024

  # Browse page by page
  s3sync ls logs/ --paged
  s3sync ls logs/ --paged --marker <next_marker>`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLs(cmd, args)
	},
}

func runLs(cmd *cobra.Command, args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = listing.DirectoryPrefix(args[0])
	}
	paged, _ := cmd.Flags().GetBool("paged")
	marker, _ := cmd.Flags().GetString("marker")

	client, err := newClient(cmd)
	if err != nil {
		reportError(err, "ls")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	lister := listing.NewLister(client)

	var page *listing.Page
	if paged || marker != "" {
		page, err = lister.ListPrefixPage(ctx, prefix, marker)
	} else {
		page, err = lister.ListPrefix(ctx, prefix)
	}
	if err != nil {
		reportError(err, "ls")
		return
	}

	if err := utils.PrintJSON(newListResult(client.BucketName(), prefix, page)); err != nil {
		reportError(err, "ls")
	}
}

func newListResult(bucket, prefix string, page *listing.Page) models.ListResult {
	result := models.ListResult{
		BucketName:  bucket,
		Prefix:      prefix,
		Directories: []listing.ObjectEntry{},
		Files:       []listing.ObjectEntry{},
		NextMarker:  page.NextMarker,
	}
	result.Directories = append(result.Directories, page.Directories()...)
	result.Files = append(result.Files, page.Files()...)
	result.Count = len(page.Entries)
	return result
}

func init() {
	lsCmd.Flags().Bool("paged", false, "Fetch a single page instead of the whole folder")
	lsCmd.Flags().String("marker", "", "Continue a paged listing from this marker")
	lsCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
