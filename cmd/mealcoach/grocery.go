package mealcoach

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/service"
)

var groceryCmd = &cobra.Command{
	Use:   "grocery",
	Short: "Build the grocery list for your meal plan",
}

var groceryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the grocery list grouped by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			list := service.BuildGroceryList(plan)
			if list.Len() == 0 {
				fmt.Fprintln(s.out(), "No ingredients in plan")
				return nil
			}
			for _, g := range list.Groups {
				fmt.Fprintf(s.out(), "%s (%d)\n", strings.ToUpper(string(g.Category)), len(g.Entries))
				for _, e := range g.Entries {
					fmt.Fprintf(s.out(), "  %s\t%s\tx%d\n", e.Item, service.FormatAmount(e), e.Count)
				}
			}
			return nil
		})
	},
}

var groceryExportOut string

var groceryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the grocery list as shareable text",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			text := service.ExportText(service.BuildGroceryList(plan))
			if groceryExportOut == "" {
				fmt.Fprint(s.out(), text)
				return nil
			}
			if err := os.WriteFile(groceryExportOut, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write grocery list: %w", err)
			}
			fmt.Fprintf(s.out(), "Wrote grocery list to %s\n", groceryExportOut)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(groceryCmd)
	groceryCmd.AddCommand(groceryListCmd, groceryExportCmd)
	groceryExportCmd.Flags().StringVar(&groceryExportOut, "out", "", "Write to file instead of stdout")
}
