package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gounivar/domain/dataset"
	"gounivar/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet read when none is configured
const DefaultSheet = "Sheet1"

// DataReader loads a dataset from an xlsx, csv or tsv file
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "tsv"
	sheet    string
}

// ReaderOption configures a DataReader
type ReaderOption func(*DataReader)

// WithSheet selects the worksheet of an xlsx file
func WithSheet(sheet string) ReaderOption {
	return func(r *DataReader) {
		if sheet != "" {
			r.sheet = sheet
		}
	}
}

// NewDataReader creates a reader; the file type follows the extension and
// defaults to xlsx
func NewDataReader(filePath string, opts ...ReaderOption) *DataReader {
	fileType := "xlsx"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = "csv"
	case ".tsv", ".tab":
		fileType = "tsv"
	}
	r := &DataReader{filePath: filePath, fileType: fileType, sheet: DefaultSheet}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadDataset reads the file and parses every cell with dataset.Parse
func (r *DataReader) ReadDataset() (*dataset.Dataset, error) {
	header, rows, err := r.ReadRecords()
	if err != nil {
		return nil, err
	}
	return dataset.FromRecords(header, rows)
}

// ReadRecords returns the header and the data rows as text
func (r *DataReader) ReadRecords() ([]string, [][]string, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv", "tsv":
		rows, err = r.readDelimited()
	default:
		rows, err = r.readExcel()
	}
	if err != nil {
		return nil, nil, err
	}
	return splitHeader(rows)
}

func (r *DataReader) readExcel() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "cannot open workbook"))
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(r.sheet); err != nil || idx < 0 {
		return nil, errors.NotFound(fmt.Sprintf("sheet %q", r.sheet))
	}

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", r.sheet)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readDelimited() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", r.filePath)
	}
	defer file.Close()

	comma := ','
	if r.fileType == "tsv" {
		comma = '\t'
	}
	readStart := time.Now()
	rows, err := ReadDelimited(file, comma)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s file read in %.2fms (%d rows)", strings.ToUpper(r.fileType), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// ReadDelimited reads delimited text. Rows may have different lengths.
func ReadDelimited(in io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "malformed delimited file"))
	}
	return rows, nil
}

// splitHeader trims header names and names blank ones by position
func splitHeader(rows [][]string) ([]string, [][]string, error) {
	if len(rows) < 2 {
		return nil, nil, errors.InvalidInput("file must have at least a header row and one data row")
	}
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
		if header[i] == "" {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return header, rows[1:], nil
}
