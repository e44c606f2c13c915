package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claimhub/claimctl/internal/model"
	"github.com/claimhub/claimctl/internal/normalize"
)

// claimsCmd groups the claim operations
var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Browse and update medical claims",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		records, err := app.claims.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No claims found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPATIENT\tPROVIDER\tAMOUNT\tSTATUS\tDIAGNOSIS")
		for _, record := range records {
			claim := normalize.Claim(record)
			fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%s\t%s\n",
				claim.ID, claim.PatientName, claim.ProviderName,
				claim.TotalAmount, coloredStatus(claim.Status), claim.Diagnosis)
		}
		return w.Flush()
	},
}

var claimsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one claim in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		record, err := app.claims.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printClaim(normalize.Claim(record))
		return nil
	},
}

var claimsStatusCmd = &cobra.Command{
	Use:   "status <id> <pending|approved|rejected>",
	Short: "Update a claim's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		updated, err := app.claims.UpdateStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		claim := normalize.Claim(updated)
		fmt.Printf("Claim %s is now %s\n", claim.ID, coloredStatus(claim.Status))
		return nil
	},
}

func init() {
	claimsCmd.AddCommand(claimsListCmd)
	claimsCmd.AddCommand(claimsShowCmd)
	claimsCmd.AddCommand(claimsStatusCmd)
	rootCmd.AddCommand(claimsCmd)
}

// coloredStatus styles the enumerated statuses; anything else renders
// unstyled
func coloredStatus(status string) string {
	switch model.ClaimStatus(status) {
	case model.StatusApproved:
		return color.GreenString(status)
	case model.StatusRejected:
		return color.RedString(status)
	case model.StatusPending:
		return color.YellowString(status)
	}
	return status
}

func printClaim(claim model.CanonicalClaim) {
	fmt.Printf("Claim %s (%s)\n\n", claim.ID, coloredStatus(claim.Status))

	fmt.Println("Patient Information")
	fmt.Printf("  Name:      %s\n", claim.PatientName)
	fmt.Printf("  Provider:  %s\n\n", claim.ProviderName)

	fmt.Println("Medical Information")
	fmt.Printf("  Diagnosis: %s\n", claim.Diagnosis)
	if len(claim.Medications) > 0 {
		fmt.Println("  Medications:")
		for _, med := range claim.Medications {
			fmt.Printf("    - %s %s (%s)\n", med.Name, med.Dosage, med.Frequency)
		}
	}
	fmt.Println()

	fmt.Println("Financial Information")
	fmt.Printf("  Total amount:            $%s\n", claim.TotalAmount)
	fmt.Printf("  Insurance covered:       $%s\n", claim.InsuranceCovered)
	fmt.Printf("  Patient responsibility:  $%s\n", claim.PatientResponsibility)
	fmt.Printf("  Service date:            %s\n", claim.ServiceDate)
}
