package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "mainnetInfura", cfg.DefaultNetwork)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 15, cfg.WatchInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LockupClosed)
	assert.NotNil(t, cfg.CustomRPCs)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "ropstenInfura"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "round-robin"
	cfg.LockupClosed = true

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "ropstenInfura", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.True(t, reloaded.LockupClosed)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	cfg.DefaultNetwork = "development"
	require.NoError(t, cfg.Save())

	t.Setenv("MDT_DEFAULT_NETWORK", "ropsten")
	t.Setenv("MDT_INFURA_TOKEN", "tok123")

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ropsten", reloaded.DefaultNetwork)
	assert.Equal(t, "tok123", reloaded.InfuraToken)
}

func TestDotEnvCredentials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("MDT_DEPLOYER_MNEMONIC=\"test test test test test test test test test test test junk\"\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MDT_DEPLOYER_MNEMONIC") })

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "test test test test test test test test test test test junk", cfg.DeployerMnemonic)
}

func TestSecretsNotPersisted(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	cfg.InfuraToken = "secret"
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestAddCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("ropsten", "https://custom.ropsten.rpc"))

	rpcs := cfg.GetRPCs("ropsten")
	assert.Contains(t, rpcs, "https://custom.ropsten.rpc")
}

func TestCustomRPCNetworkKeyIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("mainnetInfura", "https://eth.example"))
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://eth.example"}, reloaded.GetRPCs("mainnetInfura"))
	assert.Equal(t, []string{"https://eth.example"}, reloaded.GetRPCs("MAINNETINFURA"))
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	cfg.AddRPC("ropsten", "https://custom.ropsten.rpc") //nolint:errcheck
	err := cfg.AddRPC("ropsten", "https://custom.ropsten.rpc")
	assert.Error(t, err)
}

func TestRemoveCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.AddRPC("ropsten", "https://rpc1.ropsten") //nolint:errcheck
	cfg.AddRPC("ropsten", "https://rpc2.ropsten") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC("ropsten", "https://rpc1.ropsten"))

	rpcs := cfg.GetRPCs("ropsten")
	assert.NotContains(t, rpcs, "https://rpc1.ropsten")
	assert.Contains(t, rpcs, "https://rpc2.ropsten")
}

func TestRemoveNonExistentRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	err := cfg.RemoveRPC("ropsten", "https://nonexistent.rpc")
	assert.Error(t, err)
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "config.json should be created on save")
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.Path("wallets.json"))
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := t.TempDir() + "/subdir"
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	// Should create dir and return defaults.
	assert.Equal(t, "mainnetInfura", cfg.DefaultNetwork)
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600))

	_, err := config.Load(dir)
	assert.Error(t, err)
}
