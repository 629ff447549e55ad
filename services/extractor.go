package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"autofill-platform/internal/config"
	"autofill-platform/internal/logger"
	"autofill-platform/models"
)

// Extractor turns raw document bytes into plain text. PDFs try native
// extraction first and fall back to OCR when the text density is too low
// for a digital document. Images always go through OCR.
type Extractor struct {
	cfg *config.Config
	ocr *OCRClient
}

// ExtractionResult contains the text and metadata of an extraction
type ExtractionResult struct {
	Text           string
	Pages          int
	Method         string
	WordCount      int
	CharacterCount int
}

func NewExtractor(cfg *config.Config, ocr *OCRClient) *Extractor {
	return &Extractor{cfg: cfg, ocr: ocr}
}

// Extract dispatches on mime type. Unknown types return
// models.ErrUnsupportedFormat; supported types that yield no text return
// models.ErrExtractionFailure.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, filename string) (*ExtractionResult, error) {
	switch normalizeMime(mimeType, filename) {
	case "application/pdf":
		return e.extractPDF(ctx, data, filename)
	case "image/png", "image/jpeg", "image/tiff":
		return e.extractImage(ctx, data, filename)
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return e.extractSpreadsheet(data)
	case "text/plain", "text/csv":
		return e.extractPlain(data)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, mimeType)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte, filename string) (*ExtractionResult, error) {
	native, nativeErr := extractNativePDF(data)

	// Scanned PDFs produce little or no native text. Fall back to OCR when
	// the per-page density is under the configured floor.
	if nativeErr == nil && charsPerPage(native) >= e.cfg.MinCharsPerPage {
		return native, nil
	}

	if e.ocr != nil && e.cfg.OCRServiceEnabled {
		logger.Info("Native PDF extraction below density floor, trying OCR",
			"filename", filename, "native_chars", nativeChars(native))
		ocrResult, ocrErr := e.ocr.ExtractText(ctx, data, filename)
		if ocrErr == nil && strings.TrimSpace(ocrResult.Text) != "" {
			return ocrResult, nil
		}
		if ocrErr != nil {
			logger.Warn("OCR fallback failed", "filename", filename, "error", ocrErr.Error())
		}
	}

	// OCR unavailable or empty; use whatever native extraction produced
	if nativeErr == nil && strings.TrimSpace(native.Text) != "" {
		return native, nil
	}

	if nativeErr != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, nativeErr)
	}
	return nil, fmt.Errorf("%w: no readable text in %s", models.ErrExtractionFailure, filename)
}

func (e *Extractor) extractImage(ctx context.Context, data []byte, filename string) (*ExtractionResult, error) {
	if e.ocr == nil || !e.cfg.OCRServiceEnabled {
		return nil, fmt.Errorf("%w: OCR disabled, cannot process image %s", models.ErrExtractionFailure, filename)
	}
	result, err := e.ocr.ExtractText(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, fmt.Errorf("%w: OCR produced no text for %s", models.ErrExtractionFailure, filename)
	}
	return result, nil
}

func (e *Extractor) extractSpreadsheet(data []byte) (*ExtractionResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	defer f.Close()

	var sb strings.Builder
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line != "" {
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: spreadsheet has no cell content", models.ErrExtractionFailure)
	}

	result := &ExtractionResult{
		Text:   text,
		Pages:  len(sheets),
		Method: models.ExtractionMethodSpreadsheet,
	}
	analyzeText(result)
	return result, nil
}

func (e *Extractor) extractPlain(data []byte) (*ExtractionResult, error) {
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: file is empty", models.ErrExtractionFailure)
	}
	result := &ExtractionResult{
		Text:   text,
		Pages:  1,
		Method: models.ExtractionMethodPlain,
	}
	analyzeText(result)
	return result, nil
}

// extractNativePDF reads embedded text streams page by page
func extractNativePDF(data []byte) (*ExtractionResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	result := &ExtractionResult{
		Text:   textBuilder.String(),
		Pages:  pages,
		Method: models.ExtractionMethodNative,
	}
	analyzeText(result)
	return result, nil
}

func charsPerPage(r *ExtractionResult) int {
	if r == nil || r.Pages == 0 {
		return 0
	}
	return len(strings.TrimSpace(r.Text)) / r.Pages
}

func nativeChars(r *ExtractionResult) int {
	if r == nil {
		return 0
	}
	return len(strings.TrimSpace(r.Text))
}

func analyzeText(result *ExtractionResult) {
	result.WordCount = len(strings.Fields(result.Text))
	result.CharacterCount = len(result.Text)
}

// normalizeMime resolves the effective mime type from the declared type
// and the filename extension
func normalizeMime(mimeType, filename string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}

	switch mt {
	case "application/pdf", "image/png", "image/jpeg", "image/tiff",
		"text/plain", "text/csv",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return mt
	case "image/jpg":
		return "image/jpeg"
	}

	// Fall back to the extension when the declared type is generic
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".tif"), strings.HasSuffix(lower, ".tiff"):
		return "image/tiff"
	case strings.HasSuffix(lower, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	case strings.HasSuffix(lower, ".csv"):
		return "text/csv"
	}

	return mt
}
