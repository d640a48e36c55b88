package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gtin-cli/internal/gtin"
	"github.com/sells-group/gtin-cli/internal/table"
)

var (
	validateInput  string
	validateColumn string
)

var validateCmd = &cobra.Command{
	Use:   "validate [codes...]",
	Short: "Check EAN-13 codes for length and check digit",
	Long: `Validates codes given as arguments, or every value of a table column
with --input and --column. Formatting characters are stripped before
validation; 12-digit UPC-A values are also checked as promoted GTIN-13s.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateInput != "" {
			return validateFile(validateInput, validateColumn)
		}
		if len(args) == 0 {
			return eris.New("validate: pass codes as arguments or use --input/--column")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush() //nolint:errcheck

		fmt.Fprintln(w, "INPUT\tDIGITS\tVALID\tUPC_TO_GTIN13")
		for _, arg := range args {
			printValidation(w, arg)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "CSV or XLSX file to read codes from")
	validateCmd.Flags().StringVar(&validateColumn, "column", "", "header name of the code column (with --input)")
	rootCmd.AddCommand(validateCmd)
}

func printValidation(w *tabwriter.Writer, raw string) {
	digits := gtin.CleanDigits(raw)
	promoted := ""
	if len(digits) == 12 {
		if p, ok := gtin.FromUPC(digits); ok {
			promoted = p
		}
	}
	fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", raw, digits, gtin.Valid(digits), promoted)
}

func validateFile(path, column string) error {
	if column == "" {
		return eris.New("validate: --column is required with --input")
	}

	tbl, err := table.Read(path)
	if err != nil {
		return eris.Wrap(err, "validate: read input")
	}
	col, ok := tbl.ColumnIndex(column)
	if !ok {
		return eris.Errorf("validate: column %q not found in header", column)
	}

	valid, invalid, empty := 0, 0, 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tVALUE\tVALID")
	for i := range tbl.Rows {
		v := tbl.Get(i, col)
		if v == "" {
			empty++
			continue
		}
		ok := gtin.Valid(gtin.CleanDigits(v))
		if ok {
			valid++
		} else {
			invalid++
			fmt.Fprintf(w, "%d\t%s\t%t\n", i+1, v, ok)
		}
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "validate: flush output")
	}

	fmt.Printf("%d valid, %d invalid, %d empty of %d rows\n", valid, invalid, empty, len(tbl.Rows))
	return nil
}
