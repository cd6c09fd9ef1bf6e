package fixtures

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// ArtifactsDir is a Truffle build directory holding MDToken and MDTokenLockup,
// both recorded on network id 3.
func ArtifactsDir() string {
	return filepath.Join(fixturesDir(), "artifacts")
}

// ArtifactPath returns the path of a fixture artifact by contract name.
func ArtifactPath(name string) string {
	return filepath.Join(ArtifactsDir(), name+".json")
}

// LoadArtifact returns the raw bytes of a fixture artifact.
func LoadArtifact(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(ArtifactPath(name))
	require.NoError(t, err, "failed to load fixture artifact: %s", name)
	return data
}
