package paypal_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/provider/paypal"
)

type fakeAPI struct {
	createBody map[string]any
	captureFn  func(w http.ResponseWriter, id string)
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client", user)
		require.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	})

	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.createBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{
			"id": "PP-123",
			"status": "CREATED",
			"links": [
				{"href": "https://api/self", "rel": "self", "method": "GET"},
				{"href": "https://paypal.test/approve?token=PP-123", "rel": "approve", "method": "GET"}
			]
		}`)
	})

	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		f.captureFn(w, r.PathValue("id"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, f *fakeAPI) *paypal.Client {
	srv := f.server(t)
	c, err := paypal.New(paypal.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		APIBase:      srv.URL,
		BrandName:    "Storefront",
	}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNew_ShouldRequireCredentials(t *testing.T) {
	_, err := paypal.New(paypal.Config{ClientID: "only-id"}, nil)
	require.Error(t, err)
}

func TestCreateOrder_ShouldSendCaptureIntentAndReturnApproveLink(t *testing.T) {
	f := &fakeAPI{}
	c := newClient(t, f)

	order, err := c.CreateOrder(context.Background(), payment.CreateOrderRequest{
		OrderID:   "O1",
		Amount:    decimal.RequireFromString("49.9"),
		Currency:  "USD",
		ReturnURL: "https://shop.test/payment/success",
		CancelURL: "https://shop.test/payment/cancel",
	})
	require.NoError(t, err)

	require.Equal(t, "PP-123", order.ID)
	require.Equal(t, "https://paypal.test/approve?token=PP-123", order.ApproveURL)

	require.Equal(t, "CAPTURE", f.createBody["intent"])
	units := f.createBody["purchase_units"].([]any)
	unit := units[0].(map[string]any)
	require.Equal(t, "O1", unit["reference_id"])
	amount := unit["amount"].(map[string]any)
	require.Equal(t, "49.90", amount["value"])
	require.Equal(t, "USD", amount["currency_code"])

	appCtx := f.createBody["application_context"].(map[string]any)
	require.Equal(t, "Storefront", appCtx["brand_name"])
	require.Equal(t, "PAY_NOW", appCtx["user_action"])
	require.Equal(t, "https://shop.test/payment/success", appCtx["return_url"])
}

func TestCaptureOrder_ShouldExtractCaptureAndPayer(t *testing.T) {
	f := &fakeAPI{captureFn: func(w http.ResponseWriter, id string) {
		_, _ = io.WriteString(w, `{
			"id": "`+id+`",
			"status": "COMPLETED",
			"payer": {"payer_id": "PAYER-9"},
			"purchase_units": [{
				"reference_id": "O1",
				"payments": {"captures": [{"id": "CAP-1", "status": "COMPLETED"}]}
			}]
		}`)
	}}
	c := newClient(t, f)

	capture, err := c.CaptureOrder(context.Background(), "PP-123")
	require.NoError(t, err)

	require.True(t, capture.Completed())
	require.Equal(t, "PP-123", capture.OrderID)
	require.Equal(t, "CAP-1", capture.CaptureID)
	require.Equal(t, "PAYER-9", capture.PayerID)
	require.Contains(t, string(capture.Raw), "CAP-1")
}

func TestCaptureOrder_ShouldReportDeclinedCapture(t *testing.T) {
	f := &fakeAPI{captureFn: func(w http.ResponseWriter, id string) {
		_, _ = io.WriteString(w, `{
			"id": "`+id+`",
			"status": "COMPLETED",
			"purchase_units": [{"payments": {"captures": [{"id": "CAP-2", "status": "DECLINED"}]}}]
		}`)
	}}
	c := newClient(t, f)

	capture, err := c.CaptureOrder(context.Background(), "PP-123")
	require.NoError(t, err)
	require.True(t, capture.Rejected())
	require.False(t, capture.Completed())
}

func TestCaptureOrder_ShouldSurfaceAPIErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"name":"UNPROCESSABLE_ENTITY","message":"ORDER_NOT_APPROVED"}`)
	}))
	t.Cleanup(failing.Close)

	c, err := paypal.New(paypal.Config{ClientID: "client", ClientSecret: "secret", APIBase: failing.URL}, failing.Client())
	require.NoError(t, err)

	_, err = c.CaptureOrder(context.Background(), "PP-404")
	require.Error(t, err)
}
