package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The root pre-run already migrated while opening the database.
		fmt.Println(labelStyle.Render("Schema is up to date"))
		return nil
	},
}

var seedCategoriesCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Insert the default job categories that do not exist yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		taxonomy := services.NewTaxonomyService(repositories.NewCategoryRepository(rt.db), rt.log)

		created, err := taxonomy.Seed()
		if err != nil {
			return err
		}
		categories, err := taxonomy.List()
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Job Categories"))
		fmt.Printf("  %s %s\n", labelStyle.Render("Created:"), valueStyle.Render(fmt.Sprint(created)))
		fmt.Printf("  %s %s\n", labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprint(len(categories))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCategoriesCmd)
}
