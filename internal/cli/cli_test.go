package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(stdin string) (Env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return Env{
		Fs:     afero.NewMemMapFs(),
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestCompact_StdinToStdout(t *testing.T) {
	env, stdout, _ := newEnv("{ \"a\" : [1, 2.0, \"x/y\"] }\n[]\n")
	code := Run(context.Background(), env, []string{"compact"})
	require.Equal(t, 0, code)
	assert.Equal(t, "{\"a\":[1,2.0,\"x\\/y\"]}\n[]\n", stdout.String())
}

func TestYAML_FileToFile(t *testing.T) {
	env, stdout, _ := newEnv("")
	require.NoError(t, afero.WriteFile(env.Fs, "/in.yaml", []byte("b: 1\na: [x, y]\n"), 0o644))

	code := Run(context.Background(), env, []string{"yaml", "-in", "/in.yaml", "-o", "/out.json", "-flush", "8"})
	require.Equal(t, 0, code)
	assert.Empty(t, stdout.String())

	got, err := afero.ReadFile(env.Fs, "/out.json")
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":1,\"a\":[\"x\",\"y\"]}\n", string(got))
}

func TestMissingInputFails(t *testing.T) {
	env, _, stderr := newEnv("")
	code := Run(context.Background(), env, []string{"compact", "-in", "/nope.json"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "open input")
}

func TestInvalidJSONFails(t *testing.T) {
	env, _, stderr := newEnv(`{"a":`)
	code := Run(context.Background(), env, []string{"compact", "-v"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "compact failed")
}

func TestUsage(t *testing.T) {
	env, stdout, stderr := newEnv("")
	assert.Equal(t, 2, Run(context.Background(), env, nil))
	assert.Contains(t, stderr.String(), "Usage:")
	assert.Equal(t, 2, Run(context.Background(), env, []string{"bogus"}))
	assert.Equal(t, 0, Run(context.Background(), env, []string{"help"}))
	assert.Contains(t, stdout.String(), "jsonw compact")
	assert.Equal(t, 2, Run(context.Background(), env, []string{"yaml", "-unknown"}))
}
