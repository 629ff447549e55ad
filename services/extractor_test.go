package services

import (
	"bytes"
	"context"
	"testing"

	"autofill-platform/internal/config"
	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func extractorConfig() *config.Config {
	return &config.Config{
		MinCharsPerPage:   100,
		OCRServiceEnabled: false,
	}
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(extractorConfig(), nil)

	result, err := e.Extract(context.Background(), []byte("Jane Doe\nSoftware Engineer"), "text/plain", "resume.txt")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nSoftware Engineer", result.Text)
	assert.Equal(t, models.ExtractionMethodPlain, result.Method)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 4, result.WordCount)
}

func TestExtractEmptyPlainText(t *testing.T) {
	e := NewExtractor(extractorConfig(), nil)

	_, err := e.Extract(context.Background(), []byte("   \n  "), "text/plain", "empty.txt")
	assert.ErrorIs(t, err, models.ErrExtractionFailure)
}

func TestExtractCSV(t *testing.T) {
	e := NewExtractor(extractorConfig(), nil)

	result, err := e.Extract(context.Background(), []byte("name,email\nJane,jane@example.com"), "text/csv", "contacts.csv")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "jane@example.com")
}

func TestExtractUnsupportedType(t *testing.T) {
	e := NewExtractor(extractorConfig(), nil)

	_, err := e.Extract(context.Background(), []byte("binary"), "application/zip", "archive.zip")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestExtractSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Email"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Jane Doe"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "jane@example.com"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	e := NewExtractor(extractorConfig(), nil)
	result, err := e.Extract(context.Background(), buf.Bytes(),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "contacts.xlsx")
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionMethodSpreadsheet, result.Method)
	assert.Contains(t, result.Text, "Name | Email")
	assert.Contains(t, result.Text, "Jane Doe | jane@example.com")
}

func TestExtractSpreadsheetCorruptData(t *testing.T) {
	e := NewExtractor(extractorConfig(), nil)

	_, err := e.Extract(context.Background(), []byte("not an xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "bad.xlsx")
	assert.ErrorIs(t, err, models.ErrExtractionFailure)
}

func TestExtractImageWithoutOCR(t *testing.T) {
	e := NewExtractor(extractorConfig(), nil)

	_, err := e.Extract(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, "image/png", "scan.png")
	assert.ErrorIs(t, err, models.ErrExtractionFailure)
}

func TestNormalizeMime(t *testing.T) {
	tests := []struct {
		mime     string
		filename string
		expected string
	}{
		{"application/pdf", "doc.pdf", "application/pdf"},
		{"image/jpg", "photo.jpg", "image/jpeg"},
		{"text/plain; charset=utf-8", "notes.txt", "text/plain"},
		{"application/octet-stream", "doc.pdf", "application/pdf"},
		{"", "scan.tiff", "image/tiff"},
		{"", "data.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"application/octet-stream", "unknown.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeMime(tt.mime, tt.filename), "%s / %s", tt.mime, tt.filename)
	}
}
