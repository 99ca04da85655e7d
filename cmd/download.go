package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"s3sync/internal/listing"
	"s3sync/internal/localfs"
	"s3sync/internal/models"
	"s3sync/internal/prompt"
	"s3sync/internal/reconcile"
	"s3sync/internal/transfer"
	"s3sync/pkg/utils"
)

const conflictAsk = "ask"

var downloadCmd = &cobra.Command{
	Use:   "download <key>...",
	Short: "Download files and folders from the bucket",
	Long: `Download the selected files and folders from an S3 bucket.

Folders are expanded to every object below them. Each object is mapped to the same
relative path under the destination. When a local file already exists:
- same size as the remote object: the local file is reused
- otherwise the conflict is resolved by --on-conflict (ask, overwrite, skip, rename)

With --on-conflict ask (the default) you are prompted for every conflict; choosing
rename suggests "name (1).ext" and asks again while the new name is taken.

If no destination is specified, files go to DOWNLOAD_DIR/<bucket>.`,
	Example: `  # Download a folder
  s3sync download photos/2024/

  # Download several files to a specific destination
  s3sync download docs/a.pdf docs/b.pdf --destination /tmp/docs

  # Overwrite every conflict without asking
  s3sync download backups/ --on-conflict overwrite --confirm

  # Show the plan only
  s3sync download backups/ --dry-run

  # Also copy every file into ~/Downloads
  s3sync download reports/ --mirror ~/Downloads`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDownload(cmd, args)
	},
}

func runDownload(cmd *cobra.Command, args []string) {
	onConflict, _ := cmd.Flags().GetString("on-conflict")
	destination, _ := cmd.Flags().GetString("destination")
	mirror, _ := cmd.Flags().GetString("mirror")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	confirm, _ := cmd.Flags().GetBool("confirm")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	policy, err := conflictPolicy(onConflict)
	if err != nil {
		reportError(err, "download")
		return
	}

	client, err := newClient(cmd)
	if err != nil {
		reportError(err, "download")
		return
	}

	if destination == "" {
		destination = defaultDestination(cfg.DownloadDir, client.BucketName())
	}
	destination, err = filepath.Abs(destination)
	if err != nil {
		reportError(err, "download")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Starting download operation...\n")
		cmd.Printf("  Bucket: %s\n", client.BucketName())
		cmd.Printf("  Destination: %s\n", destination)
	}

	lister := listing.NewLister(client)
	keys, known, err := resolveSelection(ctx, lister, args)
	if err != nil {
		reportError(err, "download")
		return
	}

	storage := localfs.NewOS()
	req := reconcile.Request{
		Keys:    keys,
		Known:   known,
		BaseDir: destination,
		Mode:    reconcile.ModeDownload,
	}
	planFn := func(ctx context.Context, decider reconcile.Decider) (*reconcile.Plan, error) {
		return reconcile.NewPlanner(listing.NewExpander(lister), storage, decider).Plan(ctx, req)
	}

	ui := prompt.NewDecider()
	var plan *reconcile.Plan
	if policy == nil {
		plan, err = ui.Serve(ctx, planFn)
	} else {
		plan, err = planFn(ctx, policy)
	}
	if err != nil {
		reportError(err, "download")
		return
	}

	if dryRun {
		printDownloadResult(transfer.Report(plan), client.BucketName(), args)
		return
	}

	summary := plan.Summary()
	if !confirm && summary.ToFetch > 0 {
		label := fmt.Sprintf("Download %d files to %s", summary.ToFetch, destination)
		ok, err := ui.Confirm(label)
		if err != nil {
			reportError(err, "download")
			return
		}
		if !ok {
			cmd.Println("Download cancelled.")
			return
		}
	}

	fetcher := transfer.NewFetcher(client, storage).WithConcurrency(concurrency)
	if mirror != "" {
		fetcher.WithMirror(mirror)
	}

	result, err := fetcher.Execute(ctx, plan)
	if result != nil {
		printDownloadResult(result, client.BucketName(), args)
	}
	if err != nil {
		reportError(err, "download")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Download finished in %s: %d fetched, %d reused, %d skipped, %d failed\n",
			result.DownloadDuration, result.FetchedCount, result.ReusedCount, result.SkippedCount, result.FailedCount)
	}
}

func printDownloadResult(result *models.DownloadResult, bucket string, selection []string) {
	result.BucketName = bucket
	result.Selection = selection
	if result.FailedCount > 0 {
		failed = true
	}
	if err := utils.PrintJSON(result); err != nil {
		reportError(err, "download")
	}
}

// conflictPolicy returns nil when conflicts are answered interactively.
func conflictPolicy(mode string) (*reconcile.PolicyDecider, error) {
	if mode == conflictAsk {
		return nil, nil
	}
	decision, err := reconcile.ParseDecision(mode)
	if err != nil {
		return nil, err
	}
	return &reconcile.PolicyDecider{Decision: decision}, nil
}

func defaultDestination(downloadDir, bucket string) string {
	return filepath.Join(downloadDir, bucket)
}

func init() {
	downloadCmd.Flags().StringP("destination", "d", "", "Local destination directory (default: DOWNLOAD_DIR/<bucket>)")
	downloadCmd.Flags().String("on-conflict", conflictAsk, "How to resolve conflicts: ask, overwrite, skip, rename")
	downloadCmd.Flags().String("mirror", "", "Also copy every downloaded or reused file under this directory")
	downloadCmd.Flags().Int("concurrency", 4, "Number of objects downloaded at once")
	downloadCmd.Flags().Bool("dry-run", false, "Show what would be downloaded without downloading")
	downloadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	downloadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")

	downloadCmd.SetUsageTemplate(usageTemplate)
}
