// Package bulkimport reads uploaded reconciliation workbooks into bulk
// rows. Parsing is deliberately dumb: cells come out as raw strings and all
// semantic validation (amounts, dates, members, balances) happens in the
// import service, which can report problems per row.
package bulkimport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"kikoba-backend/internal/domain"
)

// Expected column order on the first sheet, one header row:
// member number, date (yyyy-mm-dd), Hisa, Jamii, Standard repaid, Dharura repaid.
const minColumns = 2

// ReadWorkbook parses the first sheet of an XLSX workbook into bulk rows.
// Blank lines are skipped; everything else is passed through for the
// import service to judge.
func ReadWorkbook(r io.Reader) ([]domain.BulkRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	var out []domain.BulkRow
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		if len(cells) < minColumns {
			cells = append(cells, make([]string, minColumns-len(cells))...)
		}
		out = append(out, domain.BulkRow{
			Line:           i + 2, // sheet line number, header is line 1
			MemberNo:       cell(cells, 0),
			Date:           cell(cells, 1),
			HisaAmount:     cell(cells, 2),
			JamiiAmount:    cell(cells, 3),
			StandardRepaid: cell(cells, 4),
			DharuraRepaid:  cell(cells, 5),
		})
	}
	return out, nil
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
