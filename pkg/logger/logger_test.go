package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestLogger_LevelsAndFormatting(t *testing.T) {
	logger := New()
	var infoBuf, warnBuf, errBuf bytes.Buffer
	logger.info.SetOutput(&infoBuf)
	logger.warn.SetOutput(&warnBuf)
	logger.error.SetOutput(&errBuf)

	logger.Info("[CACHE] hit key=%s", "posts:single:1")
	logger.Warn("[MEDIA] cleanup failed for %d objects", 2)
	logger.Error("Failed to process request %d: %s", 404, "not found")

	assert.Contains(t, infoBuf.String(), "INFO  [CACHE] hit key=posts:single:1")
	assert.Contains(t, warnBuf.String(), "WARN  [MEDIA] cleanup failed for 2 objects")
	assert.Contains(t, errBuf.String(), "ERROR Failed to process request 404: not found")
	assert.NotContains(t, infoBuf.String(), "cleanup failed")
}
