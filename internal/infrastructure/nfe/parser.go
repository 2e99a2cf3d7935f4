// Package nfe lee el XML de una NF-e (nota fiscal eletrônica) para precargar borradores.
package nfe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/domain/entity"
	"github.com/jhoicas/hub-portal/pkg/taxid"
)

var _ draft.NFeParser = (*Parser)(nil)

// Parser lector de NF-e (layout 4.00, con o sin envoltorio nfeProc).
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// charsetReader los emisores antiguos declaran ISO-8859-1 en el prólogo XML.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", label)
}

// Parse extrae identificación, emisor, totales e ítems.
func (p *Parser) Parse(data []byte) (*entity.NFeDocument, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: nfe: parsear XML: %v", domain.ErrInvalidInput, err)
	}
	inf := doc.FindElement("//infNFe")
	if inf == nil {
		return nil, fmt.Errorf("%w: nfe: no se encontró infNFe", domain.ErrInvalidInput)
	}

	out := &entity.NFeDocument{
		AccessKey:    strings.TrimPrefix(inf.SelectAttrValue("Id", ""), "NFe"),
		Number:       text(inf, "ide/nNF"),
		Series:       text(inf, "ide/serie"),
		SupplierCNPJ: text(inf, "emit/CNPJ"),
		SupplierName: text(inf, "emit/xNome"),
	}
	if out.SupplierCNPJ == "" {
		out.SupplierCNPJ = text(inf, "emit/CPF")
	}
	if out.AccessKey != "" {
		if err := taxid.ValidateAccessKey(out.AccessKey); err != nil {
			return nil, fmt.Errorf("%w: nfe: %v", domain.ErrInvalidInput, err)
		}
	}
	if out.SupplierCNPJ != "" {
		if err := taxid.ValidateDocument(out.SupplierCNPJ); err != nil {
			return nil, fmt.Errorf("%w: nfe: emisor: %v", domain.ErrInvalidInput, err)
		}
	}
	if out.Number == "" {
		return nil, fmt.Errorf("%w: nfe: sin número (ide/nNF)", domain.ErrInvalidInput)
	}
	// layout 4.00 usa dhEmi; el 2.00 usaba dEmi
	if s := text(inf, "ide/dhEmi"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("%w: nfe: dhEmi %q", domain.ErrInvalidInput, s)
		}
		out.IssueDate = t
	} else if s := text(inf, "ide/dEmi"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("%w: nfe: dEmi %q", domain.ErrInvalidInput, s)
		}
		out.IssueDate = t
	}

	var err error
	if out.Total, err = number(inf, "total/ICMSTot/vNF"); err != nil {
		return nil, err
	}
	for _, det := range inf.SelectElements("det") {
		prod := det.SelectElement("prod")
		if prod == nil {
			continue
		}
		it := entity.NFeItem{
			Number:      det.SelectAttrValue("nItem", ""),
			ProductCode: text(prod, "cProd"),
			Description: text(prod, "xProd"),
			Unit:        text(prod, "uCom"),
		}
		if it.Quantity, err = number(prod, "qCom"); err != nil {
			return nil, err
		}
		if it.UnitValue, err = number(prod, "vUnCom"); err != nil {
			return nil, err
		}
		if it.TotalValue, err = number(prod, "vProd"); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func text(e *etree.Element, path string) string {
	if el := e.FindElement(path); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func number(e *etree.Element, path string) (decimal.Decimal, error) {
	s := text(e, path)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: nfe: %s=%q no es numérico", domain.ErrInvalidInput, path, s)
	}
	return d, nil
}
