package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/prospectly/leadgen-cli/internal/model"
	"github.com/prospectly/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export stored leads",
}

// -- leads list --

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter, err := leadFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		formatLeadsList(os.Stdout, leads)
		return nil
	},
}

// -- leads export --

var (
	exportFormat string
	exportOut    string
)

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter, err := leadFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "leads export")
		}

		out := exportOut
		if out == "" {
			out = "leads." + exportFormat
		}

		switch exportFormat {
		case "csv":
			err = exportCSV(out, leads)
		case "xlsx":
			err = exportXLSX(out, leads)
		default:
			return eris.Errorf("unsupported export format: %s", exportFormat)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d leads to %s\n", len(leads), out)
		return nil
	},
}

func leadFilterFromFlags(cmd *cobra.Command) (store.LeadFilter, error) {
	status, _ := cmd.Flags().GetString("status")
	validated, _ := cmd.Flags().GetString("validated")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	filter := store.LeadFilter{
		Status: model.LeadStatus(status),
		Limit:  limit,
		Offset: offset,
	}
	if validated != "" {
		b, err := strconv.ParseBool(validated)
		if err != nil {
			return filter, eris.Wrapf(err, "invalid --validated value %q", validated)
		}
		filter.Validated = &b
	}
	return filter, nil
}

var leadHeader = []string{"ID", "Name", "Status", "Phone", "Website", "Category", "Rating", "Address"}

func leadRow(l model.Lead) []string {
	rating := ""
	if l.Rating != nil {
		rating = strconv.FormatFloat(*l.Rating, 'f', 1, 64)
	}
	return []string{l.ID, l.Name, string(l.Status), l.Phone, l.Website, l.Category, rating, l.Address}
}

func formatLeadsList(out io.Writer, leads []model.Lead) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tPHONE\tWEBSITE\tRATING")
	for _, l := range leads {
		rating := "-"
		if l.Rating != nil {
			rating = strconv.FormatFloat(*l.Rating, 'f', 1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Name, l.Status, l.Phone, l.Website, rating)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d leads\n", len(leads))
}

func exportCSV(path string, leads []model.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "leads export: create file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(leadHeader); err != nil {
		return eris.Wrap(err, "leads export: write header")
	}
	for _, l := range leads {
		if err := w.Write(leadRow(l)); err != nil {
			return eris.Wrap(err, "leads export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "leads export: flush")
	}
	return nil
}

func exportXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "leads export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadHeader {
		header.AddCell().SetString(h)
	}
	for _, l := range leads {
		row := sheet.AddRow()
		for _, v := range leadRow(l) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "leads export: save file")
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{leadsListCmd, leadsExportCmd} {
		c.Flags().String("status", "", "filter by status (new, enriched, validated, qualified, disqualified)")
		c.Flags().String("validated", "", "filter by validated flag (true or false)")
		c.Flags().Int("limit", 0, "max leads to return (0 = all)")
		c.Flags().Int("offset", 0, "rows to skip")
	}
	leadsExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format (csv or xlsx)")
	leadsExportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default leads.<format>)")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
