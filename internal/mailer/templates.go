package mailer

import (
	"bytes"
	"fmt"
	"text/template"

	"artmarket/internal/model"
)

var funcs = template.FuncMap{
	"money": func(cents int64, currency string) string {
		sign := ""
		if cents < 0 {
			sign, cents = "-", -cents
		}
		return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
	},
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Funcs(funcs).Parse(
	`Hello {{.Name}},

Thank you for your order {{.Order.ID}}.
{{range .Order.Items}}
  {{.Quantity}} x {{.Title}}  {{money .UnitPriceCents $.Base}}{{end}}

Subtotal:  {{money .Order.SubtotalCents .Base}}
{{- if gt .Order.DiscountCents 0}}
Discount:  -{{money .Order.DiscountCents .Base}} (code {{.Order.ReferralCode}}){{end}}
Shipping:  {{money .Order.ShippingCents .Base}} to {{.Order.ShippingCountry}}
Total:     {{money .Order.TotalCents .Base}}
{{- if ne .Order.Currency .Base}}
Charged:   {{money .Order.TotalInCurrencyCents .Order.Currency}}{{end}}

Status: {{.Order.Status}}
`))

var statusChangedTmpl = template.Must(template.New("order_status").Funcs(funcs).Parse(
	`Hello {{.Name}},

Your order {{.Order.ID}} is now {{.Order.Status}}.
`))

var auctionWonTmpl = template.Must(template.New("auction_won").Funcs(funcs).Parse(
	`Hello {{.Name}},

You won the auction for "{{.Title}}" with a bid of {{money .Order.TotalCents .Base}}.
Your order {{.Order.ID}} is waiting for payment.
`))

type orderData struct {
	Name  string
	Title string
	Base  string
	Order *model.Order
}

func render(t *template.Template, data orderData) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

// OrderConfirmation builds the checkout confirmation mail. Amounts are shown in
// the base currency, plus the charged amount when another currency was chosen.
func OrderConfirmation(to *model.User, o *model.Order, baseCurrency string) (Message, error) {
	body, err := render(orderConfirmationTmpl, orderData{Name: to.Name, Base: baseCurrency, Order: o})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to.Email, Subject: "Your artmarket order " + o.ID, Body: body}, nil
}

// OrderStatusChanged builds the mail sent when an order moves to a new status.
func OrderStatusChanged(to *model.User, o *model.Order) (Message, error) {
	body, err := render(statusChangedTmpl, orderData{Name: to.Name, Order: o})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to.Email, Subject: fmt.Sprintf("Order %s: %s", o.ID, o.Status), Body: body}, nil
}

// AuctionWon builds the mail sent to the winner of an auction.
func AuctionWon(to *model.User, title string, o *model.Order) (Message, error) {
	body, err := render(auctionWonTmpl, orderData{Name: to.Name, Title: title, Base: o.Currency, Order: o})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to.Email, Subject: "You won: " + title, Body: body}, nil
}
