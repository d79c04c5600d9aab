package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import surveys from a CSV file into the record store",
	Long: `Imports surveys from a CSV file with a header row. Columns: user_id,
years_experience, education_level, num_skills, prev_job_changes, certifications,
language_proficiency, interview_prep_score, success, public. An empty success
column marks a survey without a known outcome. Any invalid row aborts the
import and nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored survey as CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to stdout)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.ImportCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	total, err := a.store.CountSurveys()
	if err != nil {
		return err
	}
	log.Info().Int("imported", n).Int("total", total).Str("file", args[0]).Msg("surveys imported")
	fmt.Printf("Imported %d surveys (%d stored)\n", n, total)
	return nil
}

func runExport(_ *cobra.Command, _ []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if exportOut == "" {
		return a.store.ExportCSV(os.Stdout)
	}
	return exportToFile(a.store, exportOut)
}

// exportToFile writes the CSV export to path. A failed close is reported,
// since buffered data may not have reached the disk.
func exportToFile(store csvExporter, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	return store.ExportCSV(f)
}

type csvExporter interface {
	ExportCSV(w io.Writer) error
}
