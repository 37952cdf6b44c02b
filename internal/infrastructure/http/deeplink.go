package httpapi

import (
	"html/template"
	"net/url"
	"strings"

	paymentApplication "github.com/rcarvalho-pb/storefront-payments/internal/application/payment"
)

const DefaultScheme = "flutter"

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Payment</title></head>
<body>
<script>window.location.href = {{.Link}};</script>
<noscript><a href="{{.Link}}">Return to the app</a></noscript>
</body>
</html>
`))

// DeepLink renders an outcome as <scheme>://payment/<kind>[?query].
func DeepLink(scheme string, o paymentApplication.Outcome) string {
	if scheme == "" {
		scheme = DefaultScheme
	}

	link := scheme + "://payment/" + string(o.Kind)

	switch o.Kind {
	case paymentApplication.OutcomeSuccess:
		link += "?token=" + escape(o.ProviderOrderID) + "&PayerID=" + escape(o.PayerID)
	case paymentApplication.OutcomeError:
		link += "?message=" + escape(o.Message)
	}
	return link
}

// escape matches encodeURIComponent: spaces become %20, not +.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
