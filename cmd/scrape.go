package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeQuery      string
	scrapeLocation   string
	scrapeMaxResults int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape business listings and store them as leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initIngest(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("starting scrape",
			zap.String("query", scrapeQuery),
			zap.String("location", scrapeLocation),
			zap.Int("max_results", scrapeMaxResults),
		)

		summary, err := env.Ingestor.Run(ctx, scrapeQuery, scrapeLocation, scrapeMaxResults)
		if err != nil {
			return err
		}

		fmt.Println(summary.String())
		for _, ie := range summary.Errors {
			fmt.Printf("  error: %s: %v\n", ie.Name, ie.Err)
		}

		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeQuery, "query", "q", "", "business type to search for (required)")
	scrapeCmd.Flags().StringVarP(&scrapeLocation, "location", "l", "", "location to search in (required)")
	scrapeCmd.Flags().IntVarP(&scrapeMaxResults, "max-results", "m", 50, "maximum listings per search")
	scrapeCmd.MarkFlagRequired("query")
	scrapeCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(scrapeCmd)
}
