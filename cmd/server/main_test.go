package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/freelance/pkg/security/jwt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInvoiceCalcDomestic(t *testing.T) {
	out, err := execute(t, "invoice", "calc", "--amount", "1000", "--country", "es")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "domestic", got["scenario"])
	assert.Equal(t, 210.0, got["vat_amount"])
	assert.Equal(t, 150.0, got["irpf_amount"])
	assert.Equal(t, 1060.0, got["total_amount"])
}

func TestInvoiceCalcRejectsBadRate(t *testing.T) {
	_, err := execute(t, "invoice", "calc", "--amount", "1000", "--irpf", "120")
	require.Error(t, err)
}

func TestInvoiceValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.yaml")
	body := strings.Join([]string{
		"legal_name: Acme SL",
		"tax_id: 12345678Z",
		"address: Calle Mayor 1",
		"postal_code: '28001'",
		"city: Madrid",
		"country: ES",
		"base_amount: 1000.50",
		"description: Desarrollo web",
		"iban: ES9121000418450200051332",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := execute(t, "invoice", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)
}

func TestInvoiceValidateFileReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"country": "ES"}`), 0o600))

	out, err := execute(t, "invoice", "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "Legal name is required")
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "test-issuer")
	sub := uuid.New()

	out, err := execute(t, "token", "--sub", sub.String(), "--role", jwt.RoleAdmin)
	require.NoError(t, err)

	claims, err := jwt.Parse(strings.TrimSpace(out), "test-secret", "test-issuer")
	require.NoError(t, err)
	assert.Equal(t, sub.String(), claims.Subject)
	assert.True(t, claims.IsAdmin)
}

func TestTokenUnknownRole(t *testing.T) {
	_, err := execute(t, "token", "--sub", uuid.NewString(), "--role", "root")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
