package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listBooksCmd = &cobra.Command{
	Use:   "list-books",
	Short: "List the books present in the destination wiki",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		books, err := app.wiki.ListBooks(cmd.Context())
		if err != nil {
			return err
		}

		for _, book := range books {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", book.ID, book.Name)
		}
		return nil
	},
}
