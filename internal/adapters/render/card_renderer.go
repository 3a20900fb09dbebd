package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"strconv"
)

const cardTemplate = `<li class="product type-product{{if .OnSale}} sale{{end}}{{if .OutOfStock}} outofstock{{end}}" data-product-id="{{.ID}}">
<a href="{{.Permalink}}" class="product-link">
{{- if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Title}}" loading="lazy">{{end}}
<h2 class="product-title">{{.Title}}</h2>
<span class="price">{{if .OnSale}}<del>{{.RegularPrice}}</del> <ins>{{.Price}}</ins>{{else}}{{.Price}}{{end}}</span>
{{- if .Rating}}<span class="rating" data-rating="{{.Rating}}"></span>{{end}}
</a>
</li>
`

type cardView struct {
	ID           domain.ProductID
	Title        string
	Permalink    template.URL
	ImageURL     template.URL
	Price        string
	RegularPrice string
	OnSale       bool
	OutOfStock   bool
	Rating       string
}

// CardRenderer renders one product card from catalog data. Products that
// disappeared between the page query and rendering produce an empty fragment.
type CardRenderer struct {
	source   port.ProductCardSourcePort
	tmpl     *template.Template
	currency string
}

func NewCardRenderer(source port.ProductCardSourcePort, currency string) (*CardRenderer, error) {
	if source == nil {
		return nil, fmt.Errorf("product card source cannot be nil")
	}
	tmpl, err := template.New("product-card").Parse(cardTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse card template: %w", err)
	}
	return &CardRenderer{source: source, tmpl: tmpl, currency: currency}, nil
}

func (r *CardRenderer) RenderCard(ctx context.Context, id domain.ProductID) (string, error) {
	card, err := r.source.FindCard(ctx, id)
	if errors.Is(err, domain.ErrProductNotFound) {
		contextkeys.LoggerFromContext(ctx).Warn("Product vanished before rendering", port.Fields{
			"component":  "CardRenderer",
			"product_id": id,
		})
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not load product card: %w", err)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, r.view(card)); err != nil {
		return "", fmt.Errorf("could not execute card template: %w", err)
	}
	return buf.String(), nil
}

func (r *CardRenderer) view(card *domain.ProductCard) cardView {
	v := cardView{
		ID:         card.ID,
		Title:      card.Title,
		Permalink:  safeURL(card.Permalink),
		ImageURL:   safeURL(card.ImageURL),
		Price:      r.formatPrice(card.Price),
		OnSale:     card.OnSale(),
		OutOfStock: card.StockStatus == domain.StockOutOfStock,
	}
	if card.RegularPrice != nil {
		v.RegularPrice = r.formatPrice(*card.RegularPrice)
	}
	if card.AverageRating > 0 {
		v.Rating = strconv.FormatFloat(card.AverageRating, 'f', 2, 64)
	}
	return v
}

func (r *CardRenderer) formatPrice(amount float64) string {
	price := strconv.FormatFloat(amount, 'f', 2, 64)
	if r.currency == "" {
		return price
	}
	return price + " " + r.currency
}
