package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fitmate/internal/app"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Write all weight entries as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeDB() }()

			weights, err := app.NewWeightService(db).LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			csv := app.ExportCSV(weights, cfg.Location)
			if out == "" || out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), csv)
				return err
			}
			return os.WriteFile(out, []byte(csv), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <text>...",
		Short: "Extract a calorie value from label text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcal, ok := app.EstimateCaloriesFromText(strings.Join(args, " "))
			if !ok {
				return errors.New("no calorie value found")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), kcal)
			return err
		},
	}
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <query>",
		Short: "Query the nutrition service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			client := newNutritionClient(cfg)
			if client == nil {
				return app.ErrLookupUnavailable
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LookupTimeout*time.Duration(cfg.LookupRetries+1))
			defer cancel()

			e, err := client.Lookup(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d kcal\tP %.1fg\tF %.1fg\tC %.1fg\n", e.Name, e.Calories, e.Protein, e.Fat, e.Carbs)
			return err
		},
	}
}
