package nfe_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/domain"
	"github.com/jhoicas/hub-portal/internal/infrastructure/nfe"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35260112345678000195550010000001231000001232" versao="4.00">
      <ide><serie>1</serie><nNF>123</nNF><dhEmi>2026-01-10T10:30:00-03:00</dhEmi></ide>
      <emit><CNPJ>12345678000195</CNPJ><xNome>Pneus do Sul Ltda</xNome></emit>
      <det nItem="1"><prod><cProd>PN-175</cProd><xProd>Pneu 175/70 R13</xProd><uCom>UN</uCom><qCom>4.0000</qCom><vUnCom>250.00</vUnCom><vProd>1000.00</vProd></prod></det>
      <det nItem="2"><prod><cProd>VLV-01</cProd><xProd>Válvula</xProd><uCom>PC</uCom><qCom>4</qCom><vUnCom>12.50</vUnCom><vProd>50.00</vProd></prod></det>
      <total><ICMSTot><vProd>1050.00</vProd><vNF>1050.00</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParse(t *testing.T) {
	doc, err := nfe.NewParser().Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "35260112345678000195550010000001231000001232", doc.AccessKey)
	assert.Equal(t, "123", doc.Number)
	assert.Equal(t, "1", doc.Series)
	assert.Equal(t, "12345678000195", doc.SupplierCNPJ)
	assert.Equal(t, "Pneus do Sul Ltda", doc.SupplierName)
	assert.Equal(t, "2026-01-10", doc.IssueDate.Format("2006-01-02"))
	assert.True(t, decimal.NewFromInt(1050).Equal(doc.Total))

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "1", doc.Items[0].Number)
	assert.Equal(t, "PN-175", doc.Items[0].ProductCode)
	assert.True(t, decimal.NewFromInt(4).Equal(doc.Items[0].Quantity))
	assert.True(t, decimal.NewFromInt(1000).Equal(doc.Items[0].TotalValue))
	assert.Equal(t, "Válvula", doc.Items[1].Description)
}

func TestParse_Latin1(t *testing.T) {
	raw := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<NFe><infNFe Id=\"NFe35120511222333000181550020000000091000000090\"><ide><serie>2</serie><nNF>9</nNF><dEmi>2012-05-02</dEmi></ide>" +
		"<emit><CNPJ>11222333000181</CNPJ><xNome>Borracharia S\xe3o Jo\xe3o</xNome></emit>" +
		"<total><ICMSTot><vNF>0</vNF></ICMSTot></total></infNFe></NFe>")

	doc, err := nfe.NewParser().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Borracharia São João", doc.SupplierName)
	assert.Equal(t, "35120511222333000181550020000000091000000090", doc.AccessKey)
	assert.Equal(t, "2012-05-02", doc.IssueDate.Format("2006-01-02"))
	assert.Empty(t, doc.Items)
}

func TestParse_Invalido(t *testing.T) {
	_, err := nfe.NewParser().Parse([]byte("<nota>sem infNFe</nota>"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = nfe.NewParser().Parse([]byte("não é xml <"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_DigitoVerificador(t *testing.T) {
	claveErrada := strings.Replace(sample, "1000001232\"", "1000001233\"", 1)
	_, err := nfe.NewParser().Parse([]byte(claveErrada))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	emisorErrado := strings.Replace(sample, "<CNPJ>12345678000195</CNPJ>", "<CNPJ>12345678000199</CNPJ>", 1)
	_, err = nfe.NewParser().Parse([]byte(emisorErrado))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	conCPF := strings.Replace(sample, "<CNPJ>12345678000195</CNPJ>", "<CPF>12345678909</CPF>", 1)
	doc, err := nfe.NewParser().Parse([]byte(conCPF))
	require.NoError(t, err)
	assert.Equal(t, "12345678909", doc.SupplierCNPJ)
}
