package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"

	"github.com/artem13815/freelance/pkg/invoice"
)

func newInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Offline invoice tools",
	}
	cmd.AddCommand(newInvoiceCalcCmd(), newInvoiceValidateCmd())
	return cmd
}

func newInvoiceCalcCmd() *cobra.Command {
	var amount, country, irpf string
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Print the tax breakdown of an invoice as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			j, err := jurisdictions(cfg)
			if err != nil {
				return err
			}
			calc := invoice.NewCalculator(j)

			var res invoice.Calculation
			if irpf == "" {
				res = calc.CalculateDefault(base, country)
			} else {
				rate, err := decimal.NewFromString(irpf)
				if err != nil {
					return fmt.Errorf("invalid --irpf: %w", err)
				}
				if err := invoice.CheckWithholdingRate(&rate); err != nil {
					return err
				}
				res = calc.Calculate(base, country, rate)
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "base amount, e.g. 1000.00")
	cmd.Flags().StringVar(&country, "country", "ES", "client country (ISO 3166-1 alpha-2)")
	cmd.Flags().StringVar(&irpf, "irpf", "", "withholding rate in percent (domestic only)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newInvoiceValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate invoice fields read from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// JSON is a subset of YAML, so one decoder covers both formats.
			var raw map[string]any
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			fields, err := invoice.DecodeFields(raw)
			if err != nil {
				return err
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			j, err := jurisdictions(cfg)
			if err != nil {
				return err
			}
			res := invoice.NewValidator(j).Validate(fields)
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("invoice has %d validation errors", len(res.Errors))
			}
			return nil
		},
	}
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
