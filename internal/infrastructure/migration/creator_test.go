package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add document series", "add_document_series"},
		{"Add-Fiscal-Documents", "add_fiscal_documents"},
		{"SERIES_SEQUENCES", "series_sequences"},
		{"add__stock__movements", "add_stock_movements"},
		{"Cash Registers 2026", "cash_registers_2026"},
		{"   spaces   ", "spaces"},
		{"acentuação!@#", "acentuao"},
		{"trailing_", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add document series", "Tabelas de séries e sequências")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14, "version prefix is a sortable timestamp")
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_document_series.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_document_series.down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase, "pair shares one base name")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add document series")
	assert.Contains(t, string(up), "Tabelas de séries e sequências")
	assert.Contains(t, string(up), "SQL de aplicação")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "reversão")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	_, err := CreateMigration(nested, "init schema", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	tmpDir := t.TempDir()

	for _, f := range []string{
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"000002_add_document_series.up.sql",
		"000002_add_document_series.down.sql",
		"000003_add_stock_movements.up.sql",
		"000003_add_stock_movements.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("-- sql"), 0644))
	}

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_init_schema",
		"000002_add_document_series",
		"000003_add_stock_movements",
	}, migrations)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nowhere"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_IgnoresStrays(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "000001_init.up.sql"), []byte("-- sql"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "000001_init.down.sql"), []byte("-- sql"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("notas"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "archive.up.sql"), 0755))

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init"}, migrations)
}
