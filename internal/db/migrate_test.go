package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "001_initial_schema.sql", files[0])
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestInitialSchemaKeepsTableNames(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/001_initial_schema.sql")
	require.NoError(t, err)

	schema := string(content)
	for _, table := range []string{
		"leads", "sales", "operators", "plans", "agencies", `"user"`, "account",
		"referral_sources", "states", "cities", "districts", "supervisor_advisors",
	} {
		assert.True(t, strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
	}
}
