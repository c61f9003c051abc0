package export

import (
	"encoding/csv"
	"io"
)

// WriteGridCSV serialises the wide attendance table to CSV. The header
// carries two columns per employee, matching the HTML grid layout.
func WriteGridCSV(w io.Writer, grid *Grid) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"Date"}
	for _, col := range grid.Columns {
		header = append(header, col.Label+" In", col.Label+" Out")
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range grid.Rows {
		record := []string{row.Date}
		for _, cell := range row.Cells {
			record = append(record, cell.CheckIn, cell.CheckOut)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	for _, footer := range grid.Footers {
		record := []string{footer.Label}
		for _, value := range footer.Values {
			record = append(record, value, "")
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
