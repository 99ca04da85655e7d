package cmd

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"s3sync/internal/models"
	"s3sync/internal/s3client"
	"s3sync/pkg/utils"
)

var catCmd = &cobra.Command{
	Use:   "cat <key>",
	Short: "Print an object as text",
	Long: `Fetch an object and print its body as text inside a JSON document.

Bodies longer than --limit bytes are cut and reported as truncated. Objects whose
content is not detected as text are refused unless --binary is given.`,
	Example: `  # Preview a README
  s3sync cat docs/README.md

  # Allow a larger preview
  s3sync cat notes/todo.md --limit 1048576`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCat(cmd, args)
	},
}

func runCat(cmd *cobra.Command, args []string) {
	key := args[0]
	limit, _ := cmd.Flags().GetInt64("limit")
	binary, _ := cmd.Flags().GetBool("binary")
	if limit <= 0 {
		reportError(s3client.ErrInvalidLimit, "cat")
		return
	}

	client, err := newClient(cmd)
	if err != nil {
		reportError(err, "cat")
		return
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	text, truncated, err := client.GetObjectText(ctx, key, limit)
	if err != nil {
		reportError(err, "cat")
		return
	}

	contentType, isText := detectText(text)
	if !isText && !binary {
		reportError(fmt.Errorf("%s is not a text object (%s)", key, contentType), "cat")
		return
	}

	result := models.ObjectText{
		BucketName:  client.BucketName(),
		Key:         key,
		ContentType: contentType,
		Content:     text,
		Truncated:   truncated,
	}
	if err := utils.PrintJSON(result); err != nil {
		reportError(err, "cat")
	}
}

// detectText sniffs the content type of body and reports whether it is a
// kind of text/plain.
func detectText(body string) (string, bool) {
	detected := mimetype.Detect([]byte(body))
	for mt := detected; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return detected.String(), true
		}
	}
	return detected.String(), false
}

func init() {
	catCmd.Flags().Bool("binary", false, "Print the object even if it is not text")
	catCmd.Flags().Int64("limit", 256*1024, "Maximum number of bytes to print")
	catCmd.Flags().Int("timeout", 60, "Timeout in seconds for the operation")
}
