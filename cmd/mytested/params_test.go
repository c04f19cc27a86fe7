package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*commandParams, *pflag.FlagSet) {
	var p commandParams
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	p.register(fs)
	require.NoError(t, fs.Parse(args))
	return &p, fs
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallelism: 3\ntimeout: 1s\nskip: [\"^http/\"]\n"), 0o600))

	p, fs := parse(t, "--config", path, "--timeout", "4s", "--run", "^A/", "--debug")
	cfg, filters, err := p.resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"^A/"}, cfg.Run)
	assert.Equal(t, []string{"^http/"}, cfg.Skip)
	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"A/ok-with-payload"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"B/typed-error"}}))
}

func TestInvalidRegexFlagIsRejected(t *testing.T) {
	var p commandParams
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	p.register(fs)
	assert.Error(t, fs.Parse([]string{"--run", "("}))
}

func TestMissingExplicitConfigIsAnError(t *testing.T) {
	p, fs := parse(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	_, _, err := p.resolve(fs)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRerunCommand(t *testing.T) {
	failures := []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"A/wrong-shape"}}},
		{TestID: framework.TestID{Path: []string{"http/json"}}},
	}
	assert.Equal(t, `mytested run --run '^A/wrong-shape$' --run '^http/json$'`,
		rerunCommand("mytested", ".mytested.yaml", failures))
	assert.Equal(t, `mytested run --config 'my config.yaml'`,
		rerunCommand("mytested", "my config.yaml", nil))
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run", "--run", "^A/", "--no-color", "--parallel", "2"})
	require.NoError(t, root.Execute(), out.String())
	assert.Contains(t, out.String(), "[A/ok-with-payload]")
	assert.Contains(t, out.String(), "All 4 tests passed")
}

func TestListCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"list"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "D/unexpected-error\n")
}
