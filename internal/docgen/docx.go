// Package docgen renders contract documents from a DOCX template.
package docgen

import (
	"fmt"
	"io"
	"time"

	"github.com/lukasjarosch/go-docx"
	"github.com/shopspring/decimal"
)

// ContractData carries the values substituted into the template
// placeholders.
type ContractData struct {
	CompanyName   string
	CompanyTaxID  string
	ProviderName  string
	QuotationCode string
	Amount        decimal.Decimal
	Currency      string
	ExchangeRate  decimal.Decimal
	Total         decimal.Decimal
	TotalInBs     decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
}

type Renderer struct {
	templatePath string
}

func NewRenderer(templatePath string) *Renderer {
	return &Renderer{templatePath: templatePath}
}

// Render fills the template and writes the resulting document. The
// template is reopened per call; docx documents are mutated in place when
// replaced.
func (r *Renderer) Render(data ContractData, w io.Writer) error {
	doc, err := docx.Open(r.templatePath)
	if err != nil {
		return fmt.Errorf("Render: open template: %w", err)
	}

	replacements := docx.PlaceholderMap{
		"company_name":   data.CompanyName,
		"company_tax_id": data.CompanyTaxID,
		"provider_name":  data.ProviderName,
		"quotation_code": data.QuotationCode,
		"amount":         data.Amount.StringFixed(2),
		"currency":       data.Currency,
		"exchange_rate":  data.ExchangeRate.String(),
		"total":          data.Total.StringFixed(2),
		"total_bs":       data.TotalInBs.StringFixed(2),
		"start_date":     data.StartDate.Format("2006-01-02"),
		"end_date":       data.EndDate.Format("2006-01-02"),
	}
	if err := doc.ReplaceAll(replacements); err != nil {
		return fmt.Errorf("Render: replace: %w", err)
	}

	if err := doc.Write(w); err != nil {
		return fmt.Errorf("Render: write: %w", err)
	}
	return nil
}
