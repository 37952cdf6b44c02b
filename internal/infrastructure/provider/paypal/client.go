// Package paypal adapts the PayPal Orders v2 API to payment.Provider.
package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/plutov/paypal/v4"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"
)

var ErrNoApproveLink = errors.New("paypal order has no approve link")

type Config struct {
	ClientID     string
	ClientSecret string
	// Mode selects the API base when APIBase is empty.
	Mode      string
	APIBase   string
	BrandName string
}

func (c Config) apiBase() string {
	if c.APIBase != "" {
		return strings.TrimRight(c.APIBase, "/")
	}
	if c.Mode == ModeLive {
		return sdk.APIBaseLive
	}
	return sdk.APIBaseSandBox
}

type Client struct {
	api       *sdk.Client
	brandName string
}

var _ payment.Provider = (*Client)(nil)

// New builds a client. The access token is fetched lazily on the first call.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("paypal client id and secret are required")
	}

	api, err := sdk.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.apiBase())
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	if httpClient != nil {
		api.SetHTTPClient(httpClient)
	}

	return &Client{api: api, brandName: cfg.BrandName}, nil
}

func (c *Client) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.ProviderOrder, error) {
	units := []sdk.PurchaseUnitRequest{{
		ReferenceID: req.OrderID,
		Amount: &sdk.PurchaseUnitAmount{
			Currency: req.Currency,
			Value:    req.Amount.StringFixed(2),
		},
	}}

	appCtx := &sdk.ApplicationContext{
		BrandName:   c.brandName,
		Locale:      "en-US",
		LandingPage: "LOGIN",
		UserAction:  "PAY_NOW",
		ReturnURL:   req.ReturnURL,
		CancelURL:   req.CancelURL,
	}

	order, err := c.api.CreateOrder(ctx, "CAPTURE", units, nil, appCtx)
	if err != nil {
		return nil, err
	}

	approve := approveURL(order)
	if approve == "" {
		return nil, fmt.Errorf("order %s: %w", order.ID, ErrNoApproveLink)
	}

	return &payment.ProviderOrder{
		ID:         order.ID,
		Status:     order.Status,
		ApproveURL: approve,
	}, nil
}

func (c *Client) CaptureOrder(ctx context.Context, providerOrderID string) (*payment.Capture, error) {
	resp, err := c.api.CaptureOrder(ctx, providerOrderID, sdk.CaptureOrderRequest{})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode capture %s: %w", providerOrderID, err)
	}

	capture := &payment.Capture{
		OrderID: resp.ID,
		Status:  resp.Status,
		Raw:     raw,
	}
	if capture.OrderID == "" {
		capture.OrderID = providerOrderID
	}
	if resp.Payer != nil {
		capture.PayerID = resp.Payer.PayerID
	}

	for _, unit := range resp.PurchaseUnits {
		if unit.Payments == nil || len(unit.Payments.Captures) == 0 {
			continue
		}
		first := unit.Payments.Captures[0]
		capture.CaptureID = first.ID
		// A declined capture can sit inside a COMPLETED order response.
		if first.Status != "" {
			capture.Status = first.Status
		}
		break
	}

	return capture, nil
}

func approveURL(order *sdk.Order) string {
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
