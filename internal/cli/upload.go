package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimhub/claimctl/internal/normalize"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a claim document for extraction",
	Long: `Upload submits a claim document (PDF, JPEG or PNG, up to the
configured size limit) to the backend, which extracts the claim data
synchronously. Extraction can take a while; the request runs with an
extended timeout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Uploading %s (timeout %s)\n", args[0], app.cfg.API.UploadTimeout)
		}

		result, err := app.claims.Upload(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println("Claim uploaded successfully.")
		if result.Data != nil {
			claim := normalize.Claim(result.Data)
			fmt.Printf("Extracted claim %s for %s ($%s, %s)\n",
				claim.ID, claim.PatientName, claim.TotalAmount, claim.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
