package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prospectly/leadgen-cli/internal/model"
)

var (
	validateLimit       int
	validateCriteria    string
	validateConcurrency int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score unvalidated leads against qualification criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		criteriaPath := validateCriteria
		if criteriaPath == "" {
			criteriaPath = cfg.Validation.CriteriaFile
		}
		criteria, err := model.LoadCriteria(criteriaPath)
		if err != nil {
			return err
		}

		concurrency := validateConcurrency
		if concurrency == 0 {
			concurrency = cfg.Validation.Concurrency
		}

		env, err := initValidate(ctx, concurrency)
		if err != nil {
			return err
		}
		defer env.Close()

		limit := validateLimit
		if limit == 0 {
			limit = cfg.Validation.BatchSize
		}

		zap.L().Info("starting validation",
			zap.Int("limit", limit),
			zap.Int("concurrency", concurrency),
			zap.String("criteria", criteriaPath),
		)

		summary, err := env.Validator.Run(ctx, limit, *criteria)
		if summary != nil {
			fmt.Println(summary.String())
			for _, ie := range summary.Errors {
				fmt.Printf("  error: %s: %v\n", ie.Name, ie.Err)
			}
		}

		return err
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateLimit, "limit", 0, "max leads to validate (default from config)")
	validateCmd.Flags().StringVar(&validateCriteria, "criteria", "", "criteria YAML file (default from config)")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 0, "leads validated in parallel (default from config)")
	rootCmd.AddCommand(validateCmd)
}
