package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, NewWithOutput(&bytes.Buffer{}, "warn", false).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput(&bytes.Buffer{}, "nonsense", false).GetLevel())
}

func TestVerboseForcesDebug(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewWithOutput(&bytes.Buffer{}, "error", true).GetLevel())
}

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "info", false)
	Component(logger, "lockup").Info("loaded")
	assert.Contains(t, buf.String(), "component=lockup")
	assert.Contains(t, buf.String(), "loaded")
}

func TestDiscardIsSilent(t *testing.T) {
	entry := Discard()
	entry.Error("nothing to see")
	assert.NotNil(t, entry.Logger)
}
