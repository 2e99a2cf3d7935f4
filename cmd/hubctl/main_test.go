package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRepairJSON_Stdin(t *testing.T) {
	out, err := run(t, `{"a":1}{"b":2}`, "repair-json")
	require.NoError(t, err)

	var v []map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, []map[string]int{{"a": 1}, {"b": 2}}, v)
}

func TestRepairJSON_Irreparable(t *testing.T) {
	_, err := run(t, `{"a":`, "repair-json")
	var ee *exitErr
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.code)
}

func TestNFeInspect(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<NFe><infNFe Id="NFe35260112345678000195550010000001231000001232">
  <ide><serie>1</serie><nNF>123</nNF><dhEmi>2026-01-10T10:30:00-03:00</dhEmi></ide>
  <emit><CNPJ>12345678000195</CNPJ><xNome>Pneus do Sul</xNome></emit>
  <det nItem="1"><prod><cProd>PN-175</cProd><xProd>Pneu</xProd><uCom>UND</uCom><qCom>4</qCom><vUnCom>250.00</vUnCom><vProd>1000.00</vProd></prod></det>
  <total><ICMSTot><vNF>1000.00</vNF></ICMSTot></total>
</infNFe></NFe>`
	path := filepath.Join(t.TempDir(), "nfe.xml")
	require.NoError(t, os.WriteFile(path, []byte(xml), 0o600))

	out, err := run(t, "", "nfe", "inspect", path)
	require.NoError(t, err)

	var got struct {
		AccessKey string `json:"access_key"`
		Header    struct {
			Supplier       string `json:"supplier"`
			DocumentNumber string `json:"document_number"`
			IssueDate      string `json:"issue_date"`
		} `json:"header"`
		Items []struct {
			ItemCode      string `json:"item_code"`
			UnitOfMeasure string `json:"unit_of_measure"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "35260112345678000195550010000001231000001232", got.AccessKey)
	assert.Equal(t, "12345678000195", got.Header.Supplier)
	assert.Equal(t, "123", got.Header.DocumentNumber)
	assert.Equal(t, "2026-01-10", got.Header.IssueDate)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "0001", got.Items[0].ItemCode)
	assert.Equal(t, "UN", got.Items[0].UnitOfMeasure)
}

func TestViewStateClear_FlagsObligatorios(t *testing.T) {
	_, err := run(t, "", "view-state", "clear", "--user", "u1")
	assert.Error(t, err)
}
