package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "finanza-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "finanza")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/finanza")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runFinanza(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// inProject runs a command against the project initialized in dir.
func inProject(t *testing.T, dir string, args ...string) string {
	t.Helper()
	args = append([]string{"--config", filepath.Join(dir, "finanza.yaml"), "--log-level", "error"}, args...)
	out, err := runFinanza(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runFinanza(t, "init", dir, "--name", "Home")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized finanza project at")

	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{"finanza.yaml", "finanza.db", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinanza(t, "init", dir, "--name", "My Household")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "finanza.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: My Household")
	assert.Contains(t, contents, "id: 1")
	assert.Contains(t, contents, "path: finanza.db")
}

func TestInit_SeedsAccountsAndCategories(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinanza(t, "init", dir, "--name", "Home")
	require.NoError(t, err)

	out := inProject(t, dir, "account", "list")
	for _, name := range []string{"Cash", "Checking", "Savings", "Dollar Savings"} {
		assert.Contains(t, out, name)
	}

	out = inProject(t, dir, "category", "list", "--type", "INCOME")
	assert.Contains(t, out, "Salary")
	assert.NotContains(t, out, "EXPENSE")
}

func TestInit_NoSeed(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinanza(t, "init", dir, "--name", "Home", "--no-seed")
	require.NoError(t, err)

	out := inProject(t, dir, "account", "list")
	assert.NotContains(t, out, "Cash")
}

func TestInit_ErrorsIfConfigExists(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinanza(t, "init", dir, "--name", "First")
	require.NoError(t, err)

	out, err := runFinanza(t, "init", dir, "--name", "Second")
	assert.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_NameRequired(t *testing.T) {
	dir := t.TempDir()
	out, err := runFinanza(t, "init", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "required flag")
}

func TestCommand_WithoutProject(t *testing.T) {
	out, err := runFinanza(t, "--config", filepath.Join(t.TempDir(), "finanza.yaml"), "account", "list")
	assert.Error(t, err)
	assert.Contains(t, out, "error:")
}

func TestLedgerFlow(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinanza(t, "init", dir, "--name", "Home", "--no-seed")
	require.NoError(t, err)

	out := inProject(t, dir, "account", "create", "--name", "Wallet", "--balance", "1000")
	assert.Contains(t, out, "Created account 1 Wallet (1000.00 USD)")
	inProject(t, dir, "account", "create", "--name", "Savings", "--type", "SAVINGS")

	out = inProject(t, dir, "category", "create", "--name", "Food")
	assert.Contains(t, out, "Created category 1 Food (EXPENSE)")
	inProject(t, dir, "rule", "create", "--name", "supermarket", "--pattern", "super", "--category", "1")

	out = inProject(t, dir, "txn", "add", "--amount", "250.50", "--account", "1",
		"--description", "SUPER DIA", "--date", "2024-03-05")
	assert.Contains(t, out, "Recorded EXPENSE 1: 250.50 Wallet on 2024-03-05 [Food]")

	out = inProject(t, dir, "transfer", "--from", "1", "--to", "2", "--amount", "100", "--date", "2024-03-06")
	assert.Contains(t, out, "Transferred 100.00 from Wallet to Savings")

	out = inProject(t, dir, "account", "list")
	assert.Contains(t, out, "649.50")
	assert.Contains(t, out, "100.00")

	out = inProject(t, dir, "report", "monthly", "2024-03")
	assert.Contains(t, out, "Report 2024-03")
	assert.Contains(t, out, "Expenses:     250.50")
	assert.Contains(t, out, "Transactions: 1")
	assert.Contains(t, out, "Food")

	out = inProject(t, dir, "txn", "list", "--from", "2024-03-01", "--to", "2024-03-31")
	assert.Contains(t, out, "Wallet -> Savings")
	assert.Contains(t, out, "2 of 2")

	inProject(t, dir, "txn", "delete", "1")
	out = inProject(t, dir, "account", "list")
	assert.Contains(t, out, "900.00")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "audit-log.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "transaction.created")
	assert.Contains(t, string(data), "transfer.created")
	assert.Contains(t, string(data), "transaction.deleted")

	out = inProject(t, dir, "events", "log")
	assert.Contains(t, out, "transaction.deleted")
}

func TestImportFlow(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinanza(t, "init", dir, "--name", "Home", "--no-seed")
	require.NoError(t, err)
	inProject(t, dir, "account", "create", "--name", "Checking")

	csv := "date,description,amount,type\n2024-03-01,Salary,1500,INCOME\n2024-03-02,Rent,700,EXPENSE\n2024-03-03,Refund,20,REFUND\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "march.csv"), []byte(csv), 0o644))

	out := inProject(t, dir, "import", "--account", "1")
	assert.Contains(t, out, "march.csv: imported 2 of 3 rows")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "march.csv"))
	assert.NoError(t, err)

	out = inProject(t, dir, "account", "list")
	assert.Contains(t, out, "800.00")
}
