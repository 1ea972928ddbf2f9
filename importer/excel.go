package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/kevinaaaquil/digilib/content"
	"github.com/kevinaaaquil/digilib/models"
)

// HeaderRows is how many title rows precede the data in the library workbook.
const HeaderRows = 4

// Excel reads metadata-only books from the first sheet of a workbook.
// A missing workbook yields the sample books instead.
type Excel struct {
	Path   string
	Logger *slog.Logger
}

func (x Excel) Name() string { return "excel:" + x.Path }

func (x Excel) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.Default()
	}
	return x.Logger
}

// Fetch drops rows without a title. Any other failure yields no books.
func (x Excel) Fetch(ctx context.Context) ([]models.Book, error) {
	f, err := excelize.OpenFile(x.Path)
	if errors.Is(err, fs.ErrNotExist) {
		x.logger().Info("workbook not found, using sample books", "path", x.Path)
		return SampleBooks()
	}
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= HeaderRows {
		return nil, nil
	}

	var books []models.Book
	for i, cells := range rows[HeaderRows:] {
		if err := ctx.Err(); err != nil {
			return books, err
		}
		b, err := content.Assemble(content.Row{Index: i, Cells: cells})
		if err != nil {
			x.logger().Debug("row skipped", "row", i+1, "error", err)
			continue
		}
		books = append(books, b)
	}
	return books, nil
}

// SampleBooks stand in for the workbook when it is absent.
func SampleBooks() ([]models.Book, error) {
	return assembleAll([]content.Source{
		content.Curated{
			Meta:  content.Meta{ID: "1", Title: "Python Programming", Category: "Computer Science"},
			Pages: models.TextPages("Basics of Python...", "Advanced Python...", "Data Structures"),
		},
		content.Curated{
			Meta:  content.Meta{ID: "2", Title: "Java Basics", Category: "Computer Science"},
			Pages: models.TextPages("Introduction to Java...", "OOP Concepts...", "Spring Boot"),
		},
	})
}
