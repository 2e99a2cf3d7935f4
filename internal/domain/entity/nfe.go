package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NFeDocument datos de una NF-e usados para precargar un borrador.
type NFeDocument struct {
	AccessKey    string // chave de acesso (44 dígitos)
	Number       string
	Series       string
	IssueDate    time.Time
	SupplierCNPJ string
	SupplierName string
	Total        decimal.Decimal
	Items        []NFeItem
}

// NFeItem línea <det> de la NF-e.
type NFeItem struct {
	Number      string // nItem
	ProductCode string // código del proveedor
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitValue   decimal.Decimal
	TotalValue  decimal.Decimal
}
