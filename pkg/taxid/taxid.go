// Package taxid valida los identificadores fiscales que aparecen en una NF-e:
// CNPJ, CPF y la clave de acceso de 44 dígitos. Los tres usan módulo 11.
package taxid

import (
	"fmt"
	"unicode"
)

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ acepta el CNPJ con o sin máscara ("12.345.678/0001-95").
func ValidateCNPJ(s string) error {
	digits := extractDigits(s)
	if len(digits) != 14 {
		return fmt.Errorf("taxid: CNPJ debe tener 14 dígitos, se encontraron %d", len(digits))
	}
	if repeated(digits) {
		return fmt.Errorf("taxid: CNPJ %s inválido", string(digits))
	}
	if d := checkDigit(digits[:12], cnpjWeights1); digits[12] != d {
		return fmt.Errorf("taxid: primer dígito verificador del CNPJ inválido: esperado %c, recibido %c", d, digits[12])
	}
	if d := checkDigit(digits[:13], cnpjWeights2); digits[13] != d {
		return fmt.Errorf("taxid: segundo dígito verificador del CNPJ inválido: esperado %c, recibido %c", d, digits[13])
	}
	return nil
}

// ValidateCPF acepta el CPF con o sin máscara ("123.456.789-09").
func ValidateCPF(s string) error {
	digits := extractDigits(s)
	if len(digits) != 11 {
		return fmt.Errorf("taxid: CPF debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	if repeated(digits) {
		return fmt.Errorf("taxid: CPF %s inválido", string(digits))
	}
	for n := 9; n <= 10; n++ {
		weights := make([]int, n)
		for i := range weights {
			weights[i] = n + 1 - i
		}
		if d := checkDigit(digits[:n], weights); digits[n] != d {
			return fmt.Errorf("taxid: dígito verificador del CPF inválido: esperado %c, recibido %c", d, digits[n])
		}
	}
	return nil
}

// ValidateDocument elige CNPJ o CPF según la cantidad de dígitos.
func ValidateDocument(s string) error {
	if len(extractDigits(s)) == 11 {
		return ValidateCPF(s)
	}
	return ValidateCNPJ(s)
}

// ValidateAccessKey clave de acceso de la NF-e: 43 dígitos más el verificador, con
// pesos 2..9 aplicados de derecha a izquierda.
func ValidateAccessKey(s string) error {
	if len(s) != 44 {
		return fmt.Errorf("taxid: la clave de acceso debe tener 44 dígitos, se recibieron %d caracteres", len(s))
	}
	digits := extractDigits(s)
	if len(digits) != 44 {
		return fmt.Errorf("taxid: la clave de acceso solo admite dígitos")
	}
	weights := make([]int, 43)
	w := 2
	for i := 42; i >= 0; i-- {
		weights[i] = w
		if w++; w > 9 {
			w = 2
		}
	}
	if d := checkDigit(digits[:43], weights); digits[43] != d {
		return fmt.Errorf("taxid: dígito verificador de la clave de acceso inválido: esperado %c, recibido %c", d, digits[43])
	}
	return nil
}

// checkDigit módulo 11: restos 0 y 1 dan dígito 0.
func checkDigit(base []byte, weights []int) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}

func repeated(digits []byte) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
