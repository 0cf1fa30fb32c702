package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/roster/internal/state"
)

// Result names the files written by WriteSnapshot.
type Result struct {
	CSVPath string
	PDFPath string
	Rows    int
}

// WriteSnapshot writes the snapshot's student list as roster-<stamp>.csv and
// roster-<stamp>.pdf under dir, creating dir as needed.
func WriteSnapshot(dir string, snap state.Snapshot, now time.Time) (Result, error) {
	if strings.TrimSpace(dir) == "" {
		return Result{}, fmt.Errorf("export dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}

	table := StudentTable(snap.Students)
	stamp := now.Format("20060102-150405")
	res := Result{
		CSVPath: filepath.Join(dir, "roster-"+stamp+".csv"),
		PDFPath: filepath.Join(dir, "roster-"+stamp+".pdf"),
		Rows:    len(table.Rows),
	}

	csvBytes, err := RenderCSV(table)
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(res.CSVPath, csvBytes, 0o644); err != nil {
		return Result{}, fmt.Errorf("write csv: %w", err)
	}

	pdfBytes, err := RenderPDF(Report{
		Title:      "Student Roster",
		Generated:  now,
		Table:      table,
		Statistics: snap.Statistics,
	})
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(res.PDFPath, pdfBytes, 0o644); err != nil {
		return Result{}, fmt.Errorf("write pdf: %w", err)
	}
	return res, nil
}
