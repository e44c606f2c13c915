package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/claimhub/claimctl/internal/model"
	"github.com/claimhub/claimctl/internal/normalize"
	"github.com/claimhub/claimctl/internal/worker"
)

var (
	exportOut         string
	exportFormat      string
	exportConcurrency int
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all claims, fully detailed and normalized",
	Long: `Export lists your claims, fetches each claim's full record
concurrently, normalizes them, and writes the result as YAML or JSON.
Claims whose detail fetch fails are exported from the list record
instead, with a warning.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "output format (yaml or json)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 4, "concurrent detail fetches")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unknown format %q (supported: yaml, json)", exportFormat)
	}

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
		fmt.Fprintln(os.Stderr, "No claims to export.")
		return nil
	}

	// Detail fetches run through a bounded pool; the list record is the
	// fallback when a detail read fails
	byID := make(map[string]model.RawClaim, len(records))
	ids := make([]string, 0, len(records))
	for _, record := range records {
		id := normalize.Claim(record).ID
		if id == "" {
			continue
		}
		byID[id] = record
		ids = append(ids, id)
	}

	pool := worker.NewPool(exportConcurrency)
	results := pool.FetchAll(cmd.Context(), app.claims, ids)

	exported := make([]model.CanonicalClaim, 0, len(results))
	for _, res := range results {
		record := res.Claim
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "Warning: claim %s detail fetch failed: %v\n", res.ID, res.Err)
			record = byID[res.ID]
		}
		exported = append(exported, normalize.Claim(record))
	}

	var data []byte
	switch format {
	case "yaml":
		data, err = yaml.Marshal(exported)
	case "json":
		data, err = json.MarshalIndent(exported, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}

	if exportOut == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported %d claims to %s\n", len(exported), exportOut)
	return nil
}
