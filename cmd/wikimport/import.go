package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the corpus into the wiki",
	Long: `Walks every cataloged page that has a Markdown document under
{root}/docs, publishing new pages, updating changed ones, and skipping the
rest. Attachments under {root}/files/{id} are uploaded against their page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		res, err := app.importer.Run(cmd.Context())
		if res != nil {
			fmt.Fprintf(cmd.OutOrStdout(),
				"created: %d\nupdated: %d\nskipped: %d\nstubs: %d\nattachments: %d\n",
				res.Created, res.Updated, res.Skipped, res.Stubs, res.Attachments)
		}
		return err
	},
}
