package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rustyeddy/ledger/engine"
	"github.com/rustyeddy/ledger/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T) (*fiber.App, *engine.Engine) {
	t.Helper()
	e := engine.New(memstore.NewAccounts(), memstore.NewTransactions(), engine.WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(e.Wait)
	return New(e, e.Query(), zaptest.NewLogger(t), 0, 0), e
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func createAccount(t *testing.T, app *fiber.App, name, currency string) string {
	t.Helper()
	code, body := do(t, app, http.MethodPost, "/account", `{"name":"`+name+`","currency":"`+currency+`"}`)
	require.Equal(t, http.StatusCreated, code, body)
	return body["id"].(string)
}

func submit(t *testing.T, app *fiber.App, path, body string) string {
	t.Helper()
	code, resp := do(t, app, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, code, resp)
	return resp["id"].(string)
}

func TestAccountLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	a := createAccount(t, app, "Alice", "eur")

	code, body := do(t, app, http.MethodGet, "/account/"+a, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, a, body["id"])
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "EUR", body["currency"])
	assert.Equal(t, "0", body["balance"])
	assert.Equal(t, "ACTIVE", body["status"])

	code, body = do(t, app, http.MethodGet, "/account", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{a}, body["ids"])
}

func TestCreateAccountValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"currency":"EUR"}`},
		{"bad currency length", `{"name":"x","currency":"EURO"}`},
		{"unknown currency", `{"name":"x","currency":"ZZZ"}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, http.MethodPost, "/account", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetAccountErrors(t *testing.T) {
	app, e := newTestApp(t)

	code, _ := do(t, app, http.MethodGet, "/account/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, app, http.MethodGet, "/account/"+e.Query().NewAccountID(), "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "account not found")

	code, _ = do(t, app, http.MethodGet, "/account/"+e.Query().NewAccountID()+"/transactions", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, http.MethodGet, "/transaction/"+e.Query().NewTransactionID(), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, app, http.MethodGet, "/transaction/not-a-ulid", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "not a ULID")

	code, _ = do(t, app, http.MethodPost, "/account/"+e.Query().NewAccountID()+"/close", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRenameAccount(t *testing.T) {
	app, _ := newTestApp(t)
	a := createAccount(t, app, "Alice", "EUR")

	code, body := do(t, app, http.MethodPatch, "/account/"+a, `{"name":"Alicia"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Alicia", body["name"])

	_, body = do(t, app, http.MethodGet, "/account/"+a, "")
	assert.Equal(t, "Alicia", body["name"])

	code, _ = do(t, app, http.MethodPatch, "/account/"+a, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPatch, "/account/nope", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTransferFlow(t *testing.T) {
	app, e := newTestApp(t)

	a := createAccount(t, app, "Alice", "EUR")
	b := createAccount(t, app, "Bob", "EUR")

	dep := submit(t, app, "/transaction/deposit", `{"accountId":"`+a+`","amount":"100"}`)
	e.Wait()

	code, body := do(t, app, http.MethodGet, "/transaction/"+dep, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "COMPLETED", body["status"])
	assert.Equal(t, a, body["receiverId"])
	assert.NotContains(t, body, "senderId")
	assert.NotEmpty(t, body["processedDateTime"])

	tr := submit(t, app, "/transaction", `{"senderId":"`+a+`","receiverId":"`+b+`","amountSent":40,"amountReceived":40,"dateTime":"2024-03-01T10:00:00Z"}`)
	e.Wait()

	code, body = do(t, app, http.MethodGet, "/transaction/"+tr, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "COMPLETED", body["status"])
	assert.Equal(t, "2024-03-01T10:00:00Z", body["dateTime"])
	sent := body["amountSent"].(map[string]any)
	assert.Equal(t, "EUR", sent["currency"])
	assert.Equal(t, "40", sent["amount"])

	wd := submit(t, app, "/transaction/withdraw", `{"accountId":"`+a+`","amount":"1000"}`)
	e.Wait()
	_, body = do(t, app, http.MethodGet, "/transaction/"+wd, "")
	assert.Equal(t, "ABORTED", body["status"])

	_, body = do(t, app, http.MethodGet, "/account/"+a, "")
	assert.Equal(t, "60", body["balance"])
	_, body = do(t, app, http.MethodGet, "/account/"+b, "")
	assert.Equal(t, "40", body["balance"])

	code, body = do(t, app, http.MethodGet, "/account/"+a+"/transactions", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, a, body["id"])
	txs := body["transactions"].([]any)
	require.Len(t, txs, 3)

	directions := map[string]string{}
	for _, raw := range txs {
		v := raw.(map[string]any)
		directions[v["id"].(string)] = v["direction"].(string)
	}
	assert.Equal(t, "RECEIVER", directions[dep])
	assert.Equal(t, "SENDER", directions[tr])
	assert.Equal(t, "SENDER", directions[wd])
}

func TestSubmitErrors(t *testing.T) {
	app, e := newTestApp(t)
	a := createAccount(t, app, "Alice", "EUR")
	missing := e.Query().NewAccountID()

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"no parties", "/transaction", `{}`, http.StatusBadRequest},
		{"sender without amount", "/transaction", `{"senderId":"` + a + `"}`, http.StatusBadRequest},
		{"bad uuid", "/transaction", `{"senderId":"abc","amountSent":"1"}`, http.StatusBadRequest},
		{"negative deposit", "/transaction/deposit", `{"accountId":"` + a + `","amount":"-5"}`, http.StatusBadRequest},
		{"missing amount", "/transaction/withdraw", `{"accountId":"` + a + `"}`, http.StatusBadRequest},
		{"unknown account", "/transaction/deposit", `{"accountId":"` + missing + `","amount":"5"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, code, body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestClosedAccountAndEngine(t *testing.T) {
	app, e := newTestApp(t)
	a := createAccount(t, app, "Alice", "EUR")

	code, body := do(t, app, http.MethodPost, "/account/"+a+"/close", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "CLOSED", body["status"])

	code, _ = do(t, app, http.MethodPost, "/transaction/deposit", `{"accountId":"`+a+`","amount":"5"}`)
	assert.Equal(t, http.StatusConflict, code)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, e.Close(ctx))
	code, _ = do(t, app, http.MethodPost, "/transaction/withdraw", `{"accountId":"`+a+`","amount":"5"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
