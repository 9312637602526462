package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/tablespan/pkg/cache"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(fc, cache.NewScopedKeyer(nil, "api:"), nil)
	ts := httptest.NewServer(New(runner, nil, opts...))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body healthBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestResolve(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/resolve", `{
		"spans": {"B": [2, 2], "H": [2, 1]},
		"table": [["A", "B", "C"], ["D", "E"], ["F", "G", "H"]]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, "miss", resp.Header.Get("X-Cache"))
	require.Len(t, resp.Header.Get("X-Table-Hash"), 64)
	require.Equal(t, `[["A","B",null,"C"],["D",null,null,"E"],["F","G","H",null]]`, readAll(t, resp))

	again := post(t, ts, "/v1/resolve", `{"spans": {"B": [2, 2], "H": [2, 1]}, "table": [["A", "B", "C"], ["D", "E"], ["F", "G", "H"]]}`)
	require.Equal(t, "hit", again.Header.Get("X-Cache"))
}

func TestRenderText(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/render", `{
		"spans": {"A": [2, 1]},
		"table": [["A", "B"], ["C", "D"]],
		"content": {"A": "Totals"},
		"options": {"border": "ascii"}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Equal(t, strings.Join([]string{
		"+--------+---+",
		"| Totals | B |",
		"+----+---+---+",
		"| C  | D |   |",
		"+----+---+---+",
		"",
	}, "\n"), readAll(t, resp))
}

func TestRenderXLSX(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/render", `{"spans": {"A": [2, 1]}, "table": [["A", "B"], ["C", "D"]], "format": "xlsx"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "table.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader([]byte(readAll(t, resp))))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	require.Equal(t, "A", v)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"invalid json", "/v1/resolve", `{"table": [`, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"missing table", "/v1/resolve", `{"spans": {}}`, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"null label", "/v1/resolve", `{"table": [["A", null]]}`, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"bad span shape", "/v1/resolve", `{"spans": {"A": [1]}, "table": [["A"]]}`, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"zero span", "/v1/resolve", `{"spans": {"A": [0, 1]}, "table": [["A"]]}`, http.StatusUnprocessableEntity, "INVALID_SPAN"},
		{"duplicate", "/v1/resolve", `{"table": [["A", "A"]]}`, http.StatusUnprocessableEntity, "DUPLICATE_ANCHOR"},
		{"oversized span", "/v1/resolve", `{"spans": {"A": [2000000, 1]}, "table": [["A"], ["B"]]}`, http.StatusUnprocessableEntity, "TABLE_TOO_LARGE"},
		{"oversized xlsx", "/v1/render", `{"spans": {"A": [2000000, 1]}, "table": [["A"]], "format": "xlsx"}`, http.StatusUnprocessableEntity, "TABLE_TOO_LARGE"},
		{"bad format", "/v1/render", `{"table": [["A"]], "format": "svg"}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad border", "/v1/render", `{"table": [["A"]], "options": {"border": "dotted"}}`, http.StatusBadRequest, "INVALID_BORDER"},
		{"negative padding", "/v1/render", `{"table": [["A"]], "options": {"padding": -1}}`, http.StatusBadRequest, "INVALID_OPTION"},
		{"strict content", "/v1/render", `{"table": [["A"]], "options": {"strict": true}}`, http.StatusUnprocessableEntity, "MISSING_CONTENT"},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			require.Equal(t, tt.code, body.Code)
			require.NotEmpty(t, body.Message)
			require.Equal(t, resp.Header.Get(RequestIDHeader), body.RequestID)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, WithMaxBodyBytes(16))

	resp := post(t, ts, "/v1/resolve", `{"table": [["A", "B", "C", "D"]]}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	require.Equal(t, "MALFORMED_INPUT", decodeError(t, resp).Code)
}

func TestContentType(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/resolve", "text/plain", strings.NewReader(`{"table": [["A"]]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)
	const id = "6f1c1e52-5b1e-4c1f-9a52-2e5e8f0d7c11"

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "not a uuid")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.NotEqual(t, "not a uuid", resp2.Header.Get(RequestIDHeader))
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v2/nothing")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}
