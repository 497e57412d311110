package notice

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxEditor treats each row of the first sheet as a paragraph and writes
// entries into column A.
type xlsxEditor struct {
	file  *excelize.File
	sheet string
}

func loadXlsx(path string) (*xlsxEditor, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	paras := make([]string, len(rows))
	for i, cells := range rows {
		paras[i] = rowText(cells)
	}
	return &xlsxEditor{file: f, sheet: sheet}, paras, nil
}

// rowText joins the non-empty cells of a row.
func rowText(cells []string) string {
	var parts []string
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func (e *xlsxEditor) insert(index int, text string) error {
	row := index + 1
	if err := e.file.InsertRows(e.sheet, row, 1); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return e.file.SetCellStr(e.sheet, cell, text)
}

func (e *xlsxEditor) write(path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		return e.file.Write(w)
	})
}
