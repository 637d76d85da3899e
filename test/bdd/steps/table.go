package steps

import (
	messages "github.com/cucumber/messages/go/v21"
	"github.com/cucumber/godog"
)

// getCellValue gets a cell value from a table row by column name, using the
// first row as the header
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}
