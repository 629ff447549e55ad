package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"autofill-platform/internal/config"
	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOCRServer(t *testing.T, healthy bool, resp OCRResponse) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", ModelLoaded: healthy})
	})
	mux.HandleFunc("/ocr/extract", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.NotEmpty(t, header.Filename)
		json.NewEncoder(w).Encode(resp)
	})
	return httptest.NewServer(mux)
}

func ocrClientFor(url string) *OCRClient {
	return NewOCRClient(&config.Config{OCRServiceURL: url, OCRTimeout: 5})
}

func TestOCRExtractText(t *testing.T) {
	srv := newOCRServer(t, true, OCRResponse{
		Success: true,
		Text:    "Jane Doe\nSenior Engineer",
		Pages:   2,
	})
	defer srv.Close()

	result, err := ocrClientFor(srv.URL).ExtractText(context.Background(), []byte("fake scan"), "scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nSenior Engineer", result.Text)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, models.ExtractionMethodOCR, result.Method)
	assert.Equal(t, 4, result.WordCount)
}

func TestOCRExtractTextServiceFailure(t *testing.T) {
	srv := newOCRServer(t, true, OCRResponse{Success: false, Error: "model crashed"})
	defer srv.Close()

	_, err := ocrClientFor(srv.URL).ExtractText(context.Background(), []byte("fake scan"), "scan.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestOCRExtractTextUnhealthyService(t *testing.T) {
	srv := newOCRServer(t, false, OCRResponse{})
	defer srv.Close()

	_, err := ocrClientFor(srv.URL).ExtractText(context.Background(), []byte("fake scan"), "scan.pdf")
	assert.Error(t, err)
}

func TestOCRIsHealthy(t *testing.T) {
	srv := newOCRServer(t, true, OCRResponse{})
	defer srv.Close()

	healthy, err := ocrClientFor(srv.URL).IsHealthy(context.Background())
	require.NoError(t, err)
	assert.True(t, healthy)
}

func TestOCRIsHealthyServerDown(t *testing.T) {
	srv := newOCRServer(t, true, OCRResponse{})
	srv.Close()

	_, err := ocrClientFor(srv.URL).IsHealthy(context.Background())
	assert.Error(t, err)
}
