package main

import (
	"fmt"
	"os"

	"github.com/ArowuTest/tourbook-backend/internal/app"
	"github.com/ArowuTest/tourbook-backend/internal/utils"
	"github.com/spf13/cobra"
)

// importUsersCmd loads the notification population from a CSV export
var importUsersCmd = &cobra.Command{
	Use:   "import-users <file.csv>",
	Short: "Import or update users from a CSV file",
	Long: `Import users from a CSV export into the configured store.

The header must contain an id column. name, email, role, country, gender,
trips, push and active are optional. Rows that cannot be parsed are reported
and skipped; existing users are updated in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportUsers,
}

func runImportUsers(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	parsed, err := utils.ParseUsersCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	for _, rowErr := range parsed.Errors {
		fmt.Fprintln(out, "skipped:", rowErr)
	}

	return withApp(cmd.Context(), func(a *app.App) error {
		summary := a.Users.Import(cmd.Context(), parsed.Users)
		for _, importErr := range summary.Errors {
			fmt.Fprintln(out, "failed:", importErr)
		}
		fmt.Fprintf(out, "rows=%d imported=%d skipped=%d failed=%d\n",
			parsed.TotalRows, summary.Imported, len(parsed.Errors), summary.Failed)
		return nil
	})
}
