package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shelfstats/shelfstats-server/internal/analysis"
	"github.com/shelfstats/shelfstats-server/internal/dataset"
	"github.com/shelfstats/shelfstats-server/internal/domain"
	"github.com/shelfstats/shelfstats-server/internal/errors"
	"github.com/shelfstats/shelfstats-server/internal/id"
	"github.com/shelfstats/shelfstats-server/internal/logger"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const exportSheet = "Books"

// ExportService streams the filtered view as a downloadable file.
type ExportService struct {
	handle *dataset.Handle
	log    *logger.Logger
}

// NewExportService creates a new export service.
func NewExportService(handle *dataset.Handle, log *logger.Logger) *ExportService {
	return &ExportService{
		handle: handle,
		log:    log,
	}
}

// Filename builds a download name like "books-exp-xxxx.csv".
func (s *ExportService) Filename(format string) string {
	eid, err := id.Generate(id.PrefixExport)
	if err != nil {
		eid = time.Now().UTC().Format("20060102-150405")
	}
	return fmt.Sprintf("books-%s.%s", eid, format)
}

// Export writes the filtered view to w in the requested format. Column
// order follows the source file; missing numeric values export as empty
// cells, matching how they arrived.
func (s *ExportService) Export(w io.Writer, format string, p domain.FilterParams) error {
	snap := s.handle.Snapshot()
	view := analysis.Apply(snap.Rows(), snap.Domains(), p)

	switch format {
	case FormatCSV:
		return s.exportCSV(w, snap, view)
	case FormatXLSX:
		return s.exportXLSX(w, snap, view)
	default:
		return errors.Validationf("unsupported export format %q", format)
	}
}

func (s *ExportService) exportCSV(w io.Writer, snap *dataset.Snapshot, view []domain.Book) error {
	cw := csv.NewWriter(w)

	cols := exportColumns(snap)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, b := range view {
		for i, col := range cols {
			record[i] = exportCell(b, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.log.Debug("csv export written", "rows", len(view))
	return nil
}

func (s *ExportService) exportXLSX(w io.Writer, snap *dataset.Snapshot, view []domain.Book) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	cols := exportColumns(snap)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for rowIdx, b := range view {
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = exportValue(b, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", rowIdx+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.log.Debug("xlsx export written", "rows", len(view))
	return nil
}

// exportColumns returns the columns present in the source, in source order.
func exportColumns(snap *dataset.Snapshot) []string {
	cols := make([]string, 0, len(snap.Columns()))
	for _, c := range snap.Columns() {
		switch c {
		case domain.ColumnTitle, domain.ColumnAuthor, domain.ColumnType,
			domain.ColumnMainGenre, domain.ColumnRating,
			domain.ColumnPeopleRated, domain.ColumnPrice,
			domain.ColumnPriceOutlier:
			cols = append(cols, c)
		}
	}
	return cols
}

// exportCell renders one column of a book as CSV text.
func exportCell(b domain.Book, col string) string {
	switch col {
	case domain.ColumnTitle:
		return b.Title
	case domain.ColumnAuthor:
		return b.Author
	case domain.ColumnType:
		return b.Type
	case domain.ColumnMainGenre:
		return b.MainGenre
	case domain.ColumnRating:
		if !b.HasRating() {
			return ""
		}
		return strconv.FormatFloat(b.Rating, 'f', -1, 64)
	case domain.ColumnPeopleRated:
		return strconv.Itoa(b.PeopleRated)
	case domain.ColumnPrice:
		if !b.HasPrice() {
			return ""
		}
		return strconv.FormatFloat(b.Price, 'f', -1, 64)
	case domain.ColumnPriceOutlier:
		return strconv.FormatBool(b.PriceOutlier)
	default:
		return ""
	}
}

// exportValue renders one column of a book as a typed spreadsheet value.
func exportValue(b domain.Book, col string) any {
	switch col {
	case domain.ColumnRating:
		if !b.HasRating() {
			return nil
		}
		return b.Rating
	case domain.ColumnPrice:
		if !b.HasPrice() {
			return nil
		}
		return b.Price
	case domain.ColumnPeopleRated:
		return b.PeopleRated
	case domain.ColumnPriceOutlier:
		return b.PriceOutlier
	default:
		return exportCell(b, col)
	}
}
