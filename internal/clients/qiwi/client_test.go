package qiwi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/olegsm/billgate/internal/entity"
	"github.com/olegsm/billgate/pkg/config"
)

func newTestClient(baseURL, secretKey string) *Client {
	return NewClient(config.Qiwi{
		BaseURL:       baseURL,
		SecretKey:     secretKey,
		Currency:      "RUB",
		CreateTimeout: 5 * time.Second,
		PollTimeout:   2 * time.Second,
	})
}

func TestClient_IssueInvoice(t *testing.T) {
	t.Parallel()

	billID := uuid.Must(uuid.NewV4())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   createBillRequest
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"billId": "` + billID.String() + `",
			"status": {"value": "WAITING"},
			"payUrl": "https://oplata.qiwi.com/form/?invoice_uid=abc"
		}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(server.URL, "secret")
	c.now = func() time.Time { return now }

	payURL, expiresAt, err := c.IssueInvoice(context.Background(), entity.InvoiceRequest{
		BillID:        billID,
		Amount:        decimal.RequireFromString("1"),
		Comment:       "test bill",
		CustomerEmail: "user@example.com",
	})
	require.NoError(t, err)

	require.Equal(t, "https://oplata.qiwi.com/form/?invoice_uid=abc", payURL)
	require.Equal(t, now.Add(5*time.Minute), expiresAt)

	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/"+billID.String(), gotPath)
	require.Equal(t, "Bearer secret", gotAuth)

	require.Equal(t, "RUB", gotBody.Amount.Currency)
	require.Equal(t, "1.00", gotBody.Amount.Value)
	require.Equal(t, "2024-03-01T12:05:00+00:00", gotBody.ExpirationDateTime)
	require.Equal(t, "test bill", gotBody.Comment)
	require.NotNil(t, gotBody.Customer)
	require.Equal(t, "user@example.com", gotBody.Customer.Email)
}

func TestClient_IssueInvoice_AmountFormatting(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		amount string
		want   string
	}{
		{amount: "1", want: "1.00"},
		{amount: "1.005", want: "1.01"}, // half-up
		{amount: "1.004", want: "1.00"},
		{amount: "99.9", want: "99.90"},
		{amount: "0", want: "0.00"},
	} {
		tt := tt
		t.Run(tt.amount, func(t *testing.T) {
			t.Parallel()

			var gotValue string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body createBillRequest

				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				gotValue = body.Amount.Value

				_, _ = w.Write([]byte(`{"status": {"value": "WAITING"}, "payUrl": "https://pay"}`))
			}))
			t.Cleanup(server.Close)

			c := newTestClient(server.URL, "secret")

			_, _, err := c.IssueInvoice(context.Background(), entity.InvoiceRequest{
				BillID: uuid.Must(uuid.NewV4()),
				Amount: decimal.RequireFromString(tt.amount),
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, gotValue)
		})
	}
}

func TestClient_IssueInvoice_CustomValidity(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 23, 58, 30, 0, time.UTC)

	var gotExpiration string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body createBillRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotExpiration = body.ExpirationDateTime

		_, _ = w.Write([]byte(`{"status": {"value": "WAITING"}, "payUrl": "https://pay"}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(server.URL, "secret")
	c.now = func() time.Time { return now }

	_, expiresAt, err := c.IssueInvoice(context.Background(), entity.InvoiceRequest{
		BillID:          uuid.Must(uuid.NewV4()),
		Amount:          decimal.RequireFromString("10"),
		ValidityMinutes: 30,
	})
	require.NoError(t, err)

	// Crosses midnight, stays UTC, second precision.
	require.Equal(t, "2024-03-02T00:28:30+00:00", gotExpiration)
	require.Equal(t, now.Add(30*time.Minute), expiresAt)
}

func TestClient_IssueInvoice_ProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorCode": "unauthorized"}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(server.URL, "secret")

	_, _, err := c.IssueInvoice(context.Background(), entity.InvoiceRequest{
		BillID: uuid.Must(uuid.NewV4()),
		Amount: decimal.RequireFromString("1"),
	})
	require.ErrorIs(t, err, entity.ErrProviderRejected)
}

func TestClient_IssueInvoice_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	c := newTestClient(server.URL, "secret")

	_, _, err := c.IssueInvoice(context.Background(), entity.InvoiceRequest{
		BillID: uuid.Must(uuid.NewV4()),
		Amount: decimal.RequireFromString("1"),
	})
	require.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestClient_BillStatus(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		provider string
		want     entity.BillStatus
		wantErr  error
	}{
		{provider: "WAITING", want: entity.BillStatusWaiting},
		{provider: "PAID", want: entity.BillStatusPaid},
		{provider: "REJECTED", want: entity.BillStatusRejected},
		{provider: "EXPIRED", want: entity.BillStatusExpired},
		{provider: "SOMETHING_NEW", wantErr: entity.ErrUnknownStatus},
	} {
		tt := tt
		t.Run(tt.provider, func(t *testing.T) {
			t.Parallel()

			billID := uuid.Must(uuid.NewV4())

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/"+billID.String(), r.URL.Path)

				_, _ = w.Write([]byte(`{"status": {"value": "` + tt.provider + `"}}`))
			}))
			t.Cleanup(server.Close)

			c := newTestClient(server.URL, "secret")

			status, err := c.BillStatus(context.Background(), billID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, status)
		})
	}
}

func TestClient_Reject(t *testing.T) {
	t.Parallel()

	billID := uuid.Must(uuid.NewV4())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/"+billID.String()+"/reject", r.URL.Path)

		_, _ = w.Write([]byte(`{"status": {"value": "REJECTED"}}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(server.URL, "secret")

	status, err := c.Reject(context.Background(), billID)
	require.NoError(t, err)
	require.Equal(t, entity.BillStatusRejected, status)
}

func signPayload(t *testing.T, key, base string) string {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))

	return hex.EncodeToString(mac.Sum(nil))
}

func testCallback() entity.Callback {
	return entity.Callback{
		Version: "1",
		Bill: entity.CallbackBill{
			SiteID: "tmdso5-00",
			BillID: "bd9f21f7-1973-4e2f-b9fb-0469e95fd003",
			Amount: entity.CallbackAmount{Value: "1.00", Currency: "RUB"},
			Status: entity.CallbackStatus{Value: "PAID", ChangedDateTime: "2020-10-02T19:26:39+03"},
		},
	}
}

func TestClient_VerifySignature(t *testing.T) {
	t.Parallel()

	const key = "webhook-secret"

	cb := testCallback()

	// The documented canonical string for this payload.
	signature := signPayload(t, key, "RUB|1.00|bd9f21f7-1973-4e2f-b9fb-0469e95fd003|tmdso5-00|PAID")

	c := newTestClient("https://api.example.com", key)

	ok, err := c.VerifySignature(signature, cb)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.VerifySignature("deadbeef", cb)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClient_VerifySignature_AnyFieldFlipsDigest(t *testing.T) {
	t.Parallel()

	const key = "webhook-secret"

	for _, tt := range []struct {
		name   string
		mutate func(*entity.Callback)
	}{
		{name: "currency", mutate: func(cb *entity.Callback) { cb.Bill.Amount.Currency = "KZT" }},
		{name: "amount value", mutate: func(cb *entity.Callback) { cb.Bill.Amount.Value = "2.00" }},
		{name: "bill id", mutate: func(cb *entity.Callback) { cb.Bill.BillID = "bd9f21f7-1973-4e2f-b9fb-000000000000" }},
		{name: "site id", mutate: func(cb *entity.Callback) { cb.Bill.SiteID = "tmdso5-01" }},
		{name: "status", mutate: func(cb *entity.Callback) { cb.Bill.Status.Value = "REJECTED" }},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cb := testCallback()
			signature := signPayload(t, key, cb.SignatureBase())

			c := newTestClient("https://api.example.com", key)

			ok, err := c.VerifySignature(signature, cb)
			require.NoError(t, err)
			require.True(t, ok)

			tt.mutate(&cb)

			ok, err = c.VerifySignature(signature, cb)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestClient_VerifySignature_NoSecretKey(t *testing.T) {
	t.Parallel()

	c := newTestClient("https://api.example.com", "")

	_, err := c.VerifySignature("anything", testCallback())
	require.ErrorIs(t, err, entity.ErrNoSecretKey)
}
