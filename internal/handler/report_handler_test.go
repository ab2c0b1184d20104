package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/budget-ledger/internal/repository/storage"
	"github.com/dafibh/budget-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedFebruary(api *testAPI) {
	api.kv.Put("user:"+testUserID+":categories", `[{"id":"g","name":"Groceries","budget":500,"color":"#10b981","icon":"🛒"}]`)
	api.kv.Put("user:"+testUserID+":expenses", `[
		{"id":"e-1","categoryId":"g","amount":42.5,"description":"Market","date":"2024-02-03"},
		{"id":"e-2","categoryId":"gone","amount":10,"description":"","date":"2024-02-01"}
	]`)
}

func TestDownloadReport(t *testing.T) {
	api := newTestAPI(t)
	seedFebruary(api)

	rec := api.do(http.MethodGet, "/reports/2024-02", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, storage.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Budget_2024-02_February_2024.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("February 2024")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Date", "Category", "Description", "Amount"}, rows[0])
	// Oldest expense first, dangling category shown as Unknown
	assert.Equal(t, "Feb 1, 2024", rows[1][0])
	assert.Equal(t, "Unknown", rows[1][1])
	assert.Equal(t, "-", rows[1][2])
}

func TestDownloadReport_EmptyMonth(t *testing.T) {
	api := newTestAPI(t)
	seedFebruary(api)

	rec := api.do(http.MethodGet, "/reports/2024-05", testToken, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "No expenses to download for this month", decodeError(t, rec))
}

func TestDownloadReport_InvalidMonth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/reports/2024-5", testToken, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveReport_Unavailable(t *testing.T) {
	api := newTestAPI(t)
	seedFebruary(api)

	rec := api.do(http.MethodPost, "/reports/2024-02/archive", testToken, nil)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Empty(t, api.archive.Objects)
}

func TestArchiveReport(t *testing.T) {
	api := newTestAPI(t)
	seedFebruary(api)
	api.ledger.SetReportArchive(api.archive, 10*time.Minute)

	rec := api.do(http.MethodPost, "/reports/2024-02/archive", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var archived service.ArchivedReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &archived))
	assert.Equal(t, "Budget_2024-02_February_2024.xlsx", archived.FileName)
	assert.Contains(t, archived.Key, "reports/"+testUserID+"/2024-02/")
	assert.Equal(t, "https://reports.test/"+archived.Key+"?expires=600", archived.URL)

	require.Contains(t, api.archive.Objects, archived.Key)
	assert.Equal(t, storage.XLSXContentType, api.archive.Types[archived.Key])
}

func TestArchiveReport_EmptyMonth(t *testing.T) {
	api := newTestAPI(t)
	api.ledger.SetReportArchive(api.archive, time.Minute)

	rec := api.do(http.MethodPost, "/reports/2024-02/archive", testToken, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, api.archive.Objects)
}

func TestArchiveReport_UploadFailure(t *testing.T) {
	api := newTestAPI(t)
	seedFebruary(api)
	api.archive.PutFn = func(key string, data []byte) error {
		return errors.New("bucket unreachable")
	}
	api.ledger.SetReportArchive(api.archive, time.Minute)

	rec := api.do(http.MethodPost, "/reports/2024-02/archive", testToken, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to archive report", decodeError(t, rec))
}
