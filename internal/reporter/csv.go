package reporter

import (
	"encoding/csv"
	"fmt"
	"os"

	"api-testcase-generator/internal/testcase"
)

// WriteCSV writes records to path with the Test Cases sheet columns.
func WriteCSV(path string, records []testcase.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(TestCaseColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(TestCaseRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return file.Close()
}
