// Command validata evaluates boolean validation rules against tabular
// data files and reports, per record, whether it passes validation.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/validata-dev/validata/dataset"
	"github.com/validata-dev/validata/output"
	"github.com/validata-dev/validata/reader"
	"github.com/validata-dev/validata/rule"
	"github.com/validata-dev/validata/validator"
)

var (
	exprFlag    = pflag.StringP("expression", "e", "", "validation rule (e.g. \"age > 18 and income not missing\")")
	checksFlag  = pflag.StringP("checks", "c", "", "YAML file with named validation checks")
	formatFlag  = pflag.StringP("format", "f", "table", "output format: table, csv, jsonl")
	resultFlag  = pflag.String("result", rule.DefaultResultName, "result column name for --expression")
	summaryFlag = pflag.Bool("summary", false, "print a per-check summary to stderr")
	verboseFlag = pflag.BoolP("verbose", "v", false, "enable debug logging")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.csv|file.parquet>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Evaluate boolean validation rules against a tabular data file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -e \"age between 18:99\" people.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --checks checks.yaml -f csv people.parquet\n", os.Args[0])
	}
	pflag.Parse()

	if pflag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: missing data file argument\n\n")
		pflag.Usage()
		os.Exit(1)
	}
	if err := run(pflag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(filename string) error {
	logger := zap.NewNop()
	if *verboseFlag {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	ds, err := readDataset(filename)
	if err != nil {
		return err
	}

	checks, err := collectChecks()
	if err != nil {
		return err
	}

	v, err := validator.New(checks, validator.WithLogger(logger))
	if err != nil {
		return err
	}
	result, err := v.Validate(ds)
	if err != nil {
		return err
	}

	// Attach result columns to the input data for output.
	for _, col := range result.Columns {
		ds, err = ds.WithColumn(dataset.FromBool(col))
		if err != nil {
			return err
		}
	}

	formatter, err := newFormatter(*formatFlag)
	if err != nil {
		return err
	}
	if err := formatter.Format(ds); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if *summaryFlag {
		return printSummary(result)
	}
	return nil
}

func readDataset(filename string) (*dataset.Dataset, error) {
	switch filepath.Ext(filename) {
	case ".parquet":
		r, err := reader.NewParquetReader(filename)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	case ".csv":
		return reader.ReadCSV(filename)
	default:
		return nil, fmt.Errorf("unsupported file type: %s (expected .csv or .parquet)", filename)
	}
}

func collectChecks() ([]validator.Check, error) {
	switch {
	case *checksFlag != "" && *exprFlag != "":
		return nil, fmt.Errorf("use either --expression or --checks, not both")
	case *checksFlag != "":
		return validator.LoadChecks(*checksFlag)
	case *exprFlag != "":
		return []validator.Check{{Name: *resultFlag, Expression: *exprFlag}}, nil
	default:
		return nil, fmt.Errorf("no validation rule given (use --expression or --checks)")
	}
}

func newFormatter(format string) (output.Formatter, error) {
	switch format {
	case "table":
		return output.NewTableFormatter(os.Stdout), nil
	case "csv":
		return output.NewCSVFormatter(os.Stdout), nil
	case "json", "jsonl":
		return output.NewJSONFormatter(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: table, csv, jsonl)", format)
	}
}

// printSummary renders per-check pass counts as a table on stderr.
func printSummary(result *validator.Result) error {
	names := make([]interface{}, len(result.Summaries))
	rows := make([]interface{}, len(result.Summaries))
	passed := make([]interface{}, len(result.Summaries))
	rates := make([]interface{}, len(result.Summaries))
	for i, s := range result.Summaries {
		names[i] = s.Name
		rows[i] = float64(s.Rows)
		passed[i] = float64(s.Passed)
		rates[i] = strconv.FormatFloat(100*s.PassRate(), 'f', 1, 64) + "%"
	}

	summary, err := dataset.New(
		dataset.MustColumn("check", dataset.KindText, names),
		dataset.MustColumn("rows", dataset.KindNumber, rows),
		dataset.MustColumn("passed", dataset.KindNumber, passed),
		dataset.MustColumn("pass_rate", dataset.KindText, rates),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nValidation run %s:\n", result.RunID)
	return output.NewTableFormatter(os.Stderr).Format(summary)
}
