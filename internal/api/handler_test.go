package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/releve-converter/internal/categorizer"
	"github.com/insightdelivered/releve-converter/internal/converter"
)

func setupTestApp(extract PageExtractor) *fiber.App {
	conv := converter.New(nil, categorizer.New(categorizer.DefaultRules()), zerolog.Nop())
	h := NewHandler(conv, zerolog.Nop())
	if extract != nil {
		h.Extract = extract
	}
	return h.NewApp()
}

func cannedPages(pages [][]string) PageExtractor {
	return func(io.ReaderAt, int64) ([][]string, error) {
		return pages, nil
	}
}

func uploadRequest(t *testing.T, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) ConvertResponse {
	t.Helper()
	defer resp.Body.Close()
	var out ConvertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
	if result["version"] == "" {
		t.Error("expected a version")
	}
}

func TestConvertEndpointRequiresFile(t *testing.T) {
	app := setupTestApp(nil)

	resp, err := app.Test(uploadRequest(t, "", map[string]string{"name": "releve_ACC1_202401.pdf"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "No file uploaded")
}

func TestConvertEndpointRejectsNonPDF(t *testing.T) {
	app := setupTestApp(nil)

	resp, err := app.Test(uploadRequest(t, "releve_ACC1_202401.txt", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "Only PDF")
}

func TestConvertEndpointRejectsBadName(t *testing.T) {
	app := setupTestApp(cannedPages(nil))

	resp, err := app.Test(uploadRequest(t, "scan.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "scan.pdf")
}

func TestConvertEndpointExtractionFailure(t *testing.T) {
	app := setupTestApp(func(io.ReaderAt, int64) ([][]string, error) {
		return nil, errors.New("not a PDF")
	})

	resp, err := app.Test(uploadRequest(t, "releve_ACC1_202401.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "not a PDF")
}

func TestConvertEndpointGarbagePDF(t *testing.T) {
	// The real extractor must refuse bytes that are not a PDF.
	app := setupTestApp(nil)

	resp, err := app.Test(uploadRequest(t, "releve_ACC1_202401.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestConvertEndpoint(t *testing.T) {
	app := setupTestApp(cannedPages([][]string{
		{"01/12", "_", "VIREMENT", "", "SALAIRE", "", "1 234,56"},
		{"05/01", "_", "ACHAT CB UTILE", "", "LYON", "", "10,00", "06/01", "_", "ACHAT", "", "INCONNU", "", "x"},
	}))

	resp, err := app.Test(uploadRequest(t, "upload.pdf", map[string]string{"name": "releve_ACC1_202401.pdf"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "ACC1", out.Account)
	assert.Equal(t, "2024-01", out.StatementMonth)
	assert.Equal(t, 3, out.Count)
	require.Len(t, out.Transactions, 3)

	assert.Equal(t, "2023-12-1", out.Transactions[0].Date)
	assert.Equal(t, "VIREMENT EXTERNE", out.Transactions[0].Category1)
	assert.Equal(t, "NOURRITURE", out.Transactions[1].Category2)
	assert.True(t, out.Transactions[2].ParseError)

	require.NotNil(t, out.Balance)
	assert.Equal(t, "1234.56", out.Balance.Credit.StringFixed(2))
	assert.Equal(t, "10.00", out.Balance.Debit.StringFixed(2))

	assert.Equal(t, 1, out.Uncategorized)
	require.Len(t, out.Warnings, 2)
	assert.Equal(t, "invalid-value", string(out.Warnings[0].Kind))
	assert.Equal(t, "uncategorized", string(out.Warnings[1].Kind))

	assert.Contains(t, out.CSV, "ACCOUNT;DATE;LABEL1;LABEL2;VALUE;CATEGORY1;CATEGORY2\n")
	assert.Contains(t, out.CSV, "ACC1;2023-12-1;VIREMENT;SALAIRE;1234,56;VIREMENT EXTERNE;OTHERS\n")
	assert.Contains(t, out.CSV, "ACC1;2024-1-6;ACHAT;INCONNU;NaN;;\n")
}

func TestCORSHeaders(t *testing.T) {
	app := setupTestApp(nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
