package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	paymentApplication "github.com/rcarvalho-pb/storefront-payments/internal/application/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/logging"
	"github.com/rcarvalho-pb/storefront-payments/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PaymentHandler struct {
	Service *paymentApplication.Service
	Logger  logging.Logger
	// Scheme is the deep-link scheme redirect pages send the client to.
	Scheme string
}

type CreateOrderRequest struct {
	// Amount accepts a JSON number or a numeric string.
	Amount  any    `json:"amount"`
	OrderID string `json:"orderId"`
}

type CaptureOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type PaymentView struct {
	OrderID         string      `json:"orderId"`
	ProviderOrderID string      `json:"providerOrderId,omitempty"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"paymentMethod"`
	CaptureID       string      `json:"captureId,omitempty"`
	PayerID         string      `json:"payerId,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func NewPaymentView(r *payment.Record) PaymentView {
	return PaymentView{
		OrderID:         r.OrderID,
		ProviderOrderID: r.ProviderOrderID,
		Amount:          json.Number(r.Amount.StringFixed(2)),
		Currency:        r.Currency,
		Status:          string(r.Status),
		PaymentMethod:   string(r.Method),
		CaptureID:       r.CaptureID,
		PayerID:         r.PayerID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func parseAmount(v any) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, &payment.ValidationError{Field: "amount", Reason: "is required"}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, &payment.ValidationError{Field: "amount", Reason: "must be a number"}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &payment.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return amount, nil
}

func (h *PaymentHandler) bindOrder(c *gin.Context) (decimal.Decimal, string, bool) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return decimal.Zero, "", false
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return decimal.Zero, "", false
	}
	return amount, req.OrderID, true
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	amount, orderID, ok := h.bindOrder(c)
	if !ok {
		return
	}

	res, err := h.Service.CreateProviderOrder(c.Request.Context(), amount, orderID)
	if err != nil {
		h.failErr(c, err, "Error creating payment order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"orderId":         res.Record.OrderID,
		"providerOrderId": res.Record.ProviderOrderID,
		"amount":          json.Number(res.Record.Amount.StringFixed(2)),
		"approveUrl":      res.ApproveURL,
	})
}

func (h *PaymentHandler) CreateCODOrder(c *gin.Context) {
	amount, orderID, ok := h.bindOrder(c)
	if !ok {
		return
	}

	rec, err := h.Service.CreateCashOnDeliveryOrder(c.Request.Context(), amount, orderID)
	if err != nil {
		if errors.Is(err, payment.ErrDuplicateOrder) {
			h.fail(c, http.StatusBadRequest, "Order already exists")
			return
		}
		h.failErr(c, err, "Error creating COD order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": NewPaymentView(rec),
	})
}

func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	var req CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.OrderID) == "" {
		h.fail(c, http.StatusBadRequest, "orderId is required")
		return
	}

	res, err := h.Service.CaptureByOrderID(c.Request.Context(), strings.TrimSpace(req.OrderID))
	if err != nil {
		h.failErr(c, err, "Error capturing payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"captureData": res.Capture.Raw,
		"status":      string(res.Record.Status),
		"persisted":   res.Persisted,
	})
}

func (h *PaymentHandler) RedirectSuccess(c *gin.Context) {
	outcome := h.Service.HandleProviderRedirectSuccess(c.Request.Context(), c.Query("token"), c.Query("PayerID"))
	h.renderOutcome(c, outcome)
}

func (h *PaymentHandler) RedirectCancel(c *gin.Context) {
	outcome := h.Service.HandleProviderRedirectCancel(c.Request.Context(), c.Query("token"))
	h.renderOutcome(c, outcome)
}

func (h *PaymentHandler) OrderStatus(c *gin.Context) {
	rec, err := h.Service.GetStatusByProviderOrderID(c.Request.Context(), c.Param("providerOrderId"))
	if err != nil {
		var pending *payment.PendingError
		switch {
		case errors.As(err, &pending):
			c.JSON(http.StatusAccepted, gin.H{"success": false, "status": string(pending.Status)})
		case errors.Is(err, payment.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Payment not found"})
		default:
			h.failErr(c, err, "Error checking order status")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": NewPaymentView(rec)})
}

func (h *PaymentHandler) History(c *gin.Context) {
	records, err := h.Service.History(c.Request.Context())
	if err != nil {
		h.Logger.Error("history lookup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error getting payment history",
			"payment": []PaymentView{},
		})
		return
	}

	views := make([]PaymentView, 0, len(records))
	for _, r := range records {
		views = append(views, NewPaymentView(r))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": views})
}

func (h *PaymentHandler) ExportHistory(c *gin.Context) {
	records, err := h.Service.History(c.Request.Context())
	if err != nil {
		h.failErr(c, err, "Error getting payment history")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteHistoryXLSX(&buf, records); err != nil {
		h.failErr(c, err, "Error exporting payment history")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="payment-history.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *PaymentHandler) renderOutcome(c *gin.Context, o paymentApplication.Outcome) {
	var buf bytes.Buffer
	if err := redirectPage.Execute(&buf, struct{ Link template.URL }{
		Link: template.URL(DeepLink(h.Scheme, o)),
	}); err != nil {
		h.failErr(c, err, "Error rendering redirect")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PaymentHandler) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// failErr maps err to a status code. Internal errors are logged and replaced
// by fallback so store details never reach the client.
func (h *PaymentHandler) failErr(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	status := StatusFor(payment.KindOf(err))
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error(fallback, map[string]any{"error": err.Error()})
		msg = fallback
	}
	h.fail(c, status, msg)
}

func StatusFor(kind payment.Kind) int {
	switch kind {
	case payment.KindValidation:
		return http.StatusBadRequest
	case payment.KindNotFound:
		return http.StatusNotFound
	case payment.KindDuplicateOrder, payment.KindStatusConflict:
		return http.StatusConflict
	case payment.KindNotCapturable:
		return http.StatusUnprocessableEntity
	case payment.KindNotCompleted:
		return http.StatusAccepted
	case payment.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
