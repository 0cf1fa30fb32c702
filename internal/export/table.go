// Package export writes the student roster to CSV and PDF files.
package export

import (
	"github.com/five82/roster/internal/roster"
)

// Table is tabular export content in column order.
type Table struct {
	Headers []string
	Rows    [][]string
}

var studentHeaders = []string{"Name", "Roll Number", "Class", "Gender", "Batch Year", "Contact Number", "Address"}

// StudentTable flattens students into a Table, preserving list order.
func StudentTable(students []roster.Student) Table {
	t := Table{
		Headers: append([]string(nil), studentHeaders...),
		Rows:    make([][]string, 0, len(students)),
	}
	for _, s := range students {
		t.Rows = append(t.Rows, []string{
			s.Name,
			s.RollNumber,
			s.Class,
			s.Gender,
			s.BatchYear,
			s.ContactNumber,
			s.Address,
		})
	}
	return t
}
