package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, map[string]any, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)

	if stdout.Len() == 0 {
		return code, nil, stderr.String()
	}
	dec := json.NewDecoder(&stdout)
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc), stdout.String())
	assert.False(t, dec.More(), "more than one JSON document on stdout")
	return code, doc, stderr.String()
}

func TestScrape_BadPlatformEmitsOneDocument(t *testing.T) {
	code, doc, _ := runCLI(t, "scrape", "--platform", "fiverr", "--data-dir", t.TempDir())

	assert.Equal(t, 1, code)
	require.NotNil(t, doc)
	assert.Equal(t, false, doc["success"])
	assert.Equal(t, "scrape", doc["operation"])
	assert.Equal(t, "INVALID_INPUT", doc["error"].(map[string]any)["type"])
}

func TestLogin_MissingFlagIsJSON(t *testing.T) {
	code, doc, _ := runCLI(t, "login", "--data-dir", t.TempDir())

	assert.Equal(t, 1, code)
	require.NotNil(t, doc)
	assert.Equal(t, "login", doc["operation"])
	assert.Equal(t, "INVALID_INPUT", doc["error"].(map[string]any)["type"])
}

func TestSendProposal_ExpiredInlineSession(t *testing.T) {
	session := `{"cookies":[{"name":"sid","value":"1"}],"expiry":"2001-01-01T00:00:00Z"}`
	code, doc, _ := runCLI(t, "send-proposal",
		"--data-dir", t.TempDir(),
		"--link", "https://www.workana.com/job/go-api",
		"--text", "hello",
		"--session", session)

	assert.Equal(t, 1, code)
	require.NotNil(t, doc)
	assert.Equal(t, "sendProposal", doc["operation"])
	assert.Equal(t, "workana", doc["platform"])
	assert.Equal(t, "https://www.workana.com/job/go-api", doc["projectLink"])
	assert.Equal(t, "INVALID_SESSION", doc["error"].(map[string]any)["type"])
}

func TestUnknownCommand(t *testing.T) {
	code, doc, _ := runCLI(t, "dance")
	assert.Equal(t, 1, code)
	require.NotNil(t, doc)
	assert.Equal(t, false, doc["success"])
}

func TestNoOperationIsInvalidInput(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {}, {"scrape", "--help"}} {
		code, doc, stderr := runCLI(t, args...)
		assert.Equal(t, 1, code, args)
		require.NotNil(t, doc, args)
		assert.Equal(t, false, doc["success"])
		assert.Equal(t, "INVALID_INPUT", doc["error"].(map[string]any)["type"])
		if len(args) > 0 {
			assert.True(t, strings.Contains(stderr, "--platform") || strings.Contains(stderr, "send-proposal"), stderr)
		}
	}
}

func TestConfigBootstrap(t *testing.T) {
	dir := t.TempDir()
	_, _, _ = runCLI(t, "scrape", "--platform", "nope", "--data-dir", dir)

	g := &globalFlags{dataDir: dir}
	cfg, err := loadConfig(g, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.True(t, strings.HasPrefix(cfg.Storage.DBPath, dir))
}
