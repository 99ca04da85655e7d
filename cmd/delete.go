package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"s3sync/internal/listing"
	"s3sync/internal/models"
	"s3sync/internal/prompt"
	"s3sync/internal/reconcile"
	"s3sync/internal/transfer"
	"s3sync/pkg/utils"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Delete files and folders from the bucket",
	Long: `Delete the selected files and folders from an S3 bucket.

The command will:
- Expand every selected folder to all keys below it, including the folder placeholder
- Ask for confirmation unless --confirm is given
- Delete matching objects in batches
- Return detailed information about the deletion operation

WARNING: This operation is irreversible. Deleted files cannot be recovered.`,
	Example: `  # Delete a folder and everything below it
  s3sync delete logs/2023/

  # Delete single files without a prompt
  s3sync delete tmp/a.txt tmp/b.txt --confirm

  # Show what would be deleted
  s3sync delete archive/ --dry-run`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDelete(cmd, args)
	},
}

func runDelete(cmd *cobra.Command, args []string) {
	confirm, _ := cmd.Flags().GetBool("confirm")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	client, err := newClient(cmd)
	if err != nil {
		reportError(err, "delete")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	lister := listing.NewLister(client)
	keys, known, err := resolveSelection(ctx, lister, args)
	if err != nil {
		reportError(err, "delete")
		return
	}

	plan, err := reconcile.NewDeletePlanner(listing.NewExpander(lister)).Plan(ctx, reconcile.Request{
		Keys:  keys,
		Known: known,
		Mode:  reconcile.ModeDelete,
	})
	if err != nil {
		reportError(err, "delete")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Deleting %d objects from bucket: %s\n", len(plan.ToDelete), client.BucketName())
		if dryRun {
			cmd.Println("DRY RUN MODE: No files will actually be deleted")
		}
	}

	if dryRun {
		printDeleteResult(transfer.DeleteReport(plan), client.BucketName(), args)
		return
	}

	if !confirm && len(plan.ToDelete) > 0 {
		label := fmt.Sprintf("Permanently delete %d objects from bucket '%s'", len(plan.ToDelete), client.BucketName())
		ok, err := prompt.NewDecider().Confirm(label)
		if err != nil {
			reportError(err, "delete")
			return
		}
		if !ok {
			cmd.Println("Operation cancelled.")
			return
		}
	}

	result, err := transfer.NewDeleter(client).Execute(ctx, plan)
	if result != nil {
		printDeleteResult(result, client.BucketName(), args)
	}
	if err != nil {
		reportError(err, "delete")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Delete operation completed successfully")
	}
}

func printDeleteResult(result *models.DeleteResult, bucket string, selection []string) {
	result.BucketName = bucket
	result.Selection = selection
	if result.FailedCount > 0 {
		failed = true
	}
	if err := utils.PrintJSON(result); err != nil {
		reportError(err, "delete")
	}
}

func init() {
	deleteCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	deleteCmd.Flags().Bool("dry-run", false, "Show what would be deleted without actually deleting")
	deleteCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")

	deleteCmd.SetUsageTemplate(usageTemplate)
}
