package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/medmais/sistema-indicadores/internal/app"
	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/export"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	logger = zap.NewNop()
	cfg := config.Config{
		App:        config.AppConfig{TimeZone: "UTC"},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Lancamento: config.LancamentoConfig{SaveTimeout: 35 * time.Second, MaxRangeMonths: 12},
		Export:     config.ExportConfig{FilenamePrefix: "relatorio"},
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	a, err := app.Build(context.Background(), cfg, logger, app.Options{Clock: clock, SkipRedis: true})
	require.NoError(t, err)

	loadApp = func(context.Context) (*app.App, error) { return a, nil }
	t.Cleanup(func() { loadApp = buildApp })
	return a
}

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

func TestRulesCmd(t *testing.T) {
	defer func() { rulesFormat = "yaml" }()

	cmd, out := testCmd()
	rulesFormat = "json"
	require.NoError(t, runRules(cmd, nil))
	var fromJSON []compliance.Rule
	require.NoError(t, json.Unmarshal(out.Bytes(), &fromJSON))
	assert.Equal(t, compliance.Rules(), fromJSON)

	cmd, out = testCmd()
	rulesFormat = "yaml"
	require.NoError(t, runRules(cmd, nil))
	var fromYAML []compliance.Rule
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &fromYAML))
	assert.Equal(t, compliance.Rules(), fromYAML)

	cmd, _ = testCmd()
	rulesFormat = "xml"
	assert.Error(t, runRules(cmd, nil))
}

func TestImportCmd(t *testing.T) {
	a := newTestApp(t)
	base, err := a.Reference.CreateBase(context.Background(), operator(), "Goiânia")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "colaboradores.csv")
	require.NoError(t, os.WriteFile(file, []byte("nome,ativo\nAna Lúcia,sim\nBruno,não\n"), 0o600))

	importFile, importBase = file, base.ID
	defer func() { importFile, importBase = "", "" }()

	cmd, out := testCmd()
	require.NoError(t, runImport(cmd, nil))
	assert.Equal(t, "2 colaborador(es) imported\n", out.String())

	items, err := a.Reference.ListColaboradores(context.Background(), base.ID, false)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestImportCmdRequiresFlags(t *testing.T) {
	cmd, _ := testCmd()
	assert.EqualError(t, runImport(cmd, nil), "--file and --base are required")
}

func TestExportCmdToStdout(t *testing.T) {
	newTestApp(t)
	exportFrom, exportTo, exportOut = "2024-06-01", "2024-06-15", "-"
	defer func() { exportFrom, exportTo, exportOut = "", "", "" }()

	cmd, out := testCmd()
	require.NoError(t, runExport(cmd, nil))
	lines := strings.Split(strings.TrimRight(out.String(), "\r\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], export.BOM))
}
