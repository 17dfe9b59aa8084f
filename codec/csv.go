package codec

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/mbolis/boxer-intake/model"
)

var fixedColumns = []string{"id", "created_at_utc", "athlete_name", "email"}

// Header returns the export column names: the fixed identity columns, then
// one column per question in catalog order.
func Header(questions []model.Question) []string {
	header := append([]string(nil), fixedColumns...)
	for _, q := range questions {
		header = append(header, q.Name)
	}
	return header
}

// Row flattens a record into export cells aligned with Header. Absent values
// are nil.
func Row(questions []model.Question, rec model.Record) []*string {
	row := make([]*string, 0, len(fixedColumns)+len(questions))

	id := strconv.FormatInt(rec.ID, 10)
	created := model.FormatTimestamp(rec.CreatedAt)
	row = append(row, &id, &created, rec.AthleteName, rec.Email)

	for _, q := range questions {
		v, ok := rec.Fields.Get(q.Name)
		if !ok {
			row = append(row, nil)
			continue
		}
		cell := v.String()
		row = append(row, &cell)
	}
	return row
}

// WriteCSV writes the header and one line per record, in the given order.
// Present cells are always quoted with inner quotes doubled; absent cells
// are empty. Lines are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, questions []model.Question, records []model.Record) error {
	bw := bufio.NewWriter(w)

	header := Header(questions)
	cells := make([]*string, len(header))
	for i := range header {
		cells[i] = &header[i]
	}
	writeLine(bw, cells)

	for _, rec := range records {
		bw.WriteByte('\n')
		writeLine(bw, Row(questions, rec))
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, cells []*string) {
	for i, cell := range cells {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(EscapeCell(cell))
	}
}

// EscapeCell quotes one cell RFC 4180 style; nil yields an empty cell.
func EscapeCell(cell *string) string {
	if cell == nil {
		return ""
	}
	return `"` + strings.ReplaceAll(*cell, `"`, `""`) + `"`
}
