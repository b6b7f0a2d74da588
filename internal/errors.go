package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputNotFound    = errors.New("input not found")
	ErrInvalidSchema    = errors.New("invalid schema")
	ErrReportGeneration = errors.New("report generation failed")
)

type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns [%s]", e.Table, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrInvalidSchema }

// RequireColumns returns a *SchemaError naming every column of want absent from have.
func RequireColumns(tableName string, have func(string) bool, want ...string) error {
	var missing []string
	for _, col := range want {
		if !have(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &SchemaError{Table: tableName, Missing: missing}
}

type ReportError struct {
	Path string
	Err  error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("format report %s: %v", e.Path, e.Err)
}

func (e *ReportError) Unwrap() []error { return []error{ErrReportGeneration, e.Err} }

func NotFound(path string) error {
	return fmt.Errorf("%w: %s", ErrInputNotFound, path)
}
