package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diybuddy/projectbuddy/app/repositories"
)

// projectbuddy catalog:list
func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog:list",
		Short: "List projects and the products they need",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := repositories.NewDefaultCatalogRepository()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

			for _, p := range repo.Projects() {
				fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Title)
				fmt.Fprintf(w, "\t%s\n", p.Description)
				fmt.Fprintf(w, "\tby %s, %s, %s\n", p.Video.Influencer, p.Difficulty, p.EstimatedTime)
				fmt.Fprintf(w, "\t%d in stock, estimated cost $%s\n",
					repositories.AvailableCount(p), repositories.EstimatedCost(p).StringFixed(2))
				fmt.Fprintln(w, "\tID\tNAME\tCATEGORY\tPRICE\tSTOCK")
				for _, pr := range p.Products {
					fmt.Fprintf(w, "\t%s\t%s\t%s\t$%.2f\t%s\n", pr.ID, pr.Name, pr.Category, pr.Price, stockLabel(pr.InStock))
				}
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w, "RECOMMENDED")
			for _, pr := range repo.Recommended() {
				fmt.Fprintf(w, "\t%s\t%s\t%s\t$%.2f\t%s\n", pr.ID, pr.Name, pr.Category, pr.Price, stockLabel(pr.InStock))
			}
			return w.Flush()
		},
	}
}

func stockLabel(inStock bool) string {
	if inStock {
		return "in stock"
	}
	return "out of stock"
}
