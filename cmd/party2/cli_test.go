package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chain5j/mpc-party2/party1sim"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	expected := []string{"keygen", "derive", "pubkey", "sign", "simulate", "config"}
	for _, name := range expected {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %s", name)
	}
}

func TestReadShareErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := readShare(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0600))
	_, err = readShare(bad)
	require.Error(t, err)
	var syntax *json.SyntaxError
	assert.True(t, errors.As(err, &syntax))
	assert.Contains(t, err.Error(), "decode share")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0600))
	_, err = readShare(empty)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "config", "init", "--output", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, string(raw))

	_, err = execute(t, "config", "init", "--output", path)
	assert.Error(t, err)
}

func TestKeygenDeriveSign(t *testing.T) {
	srv := party1sim.New(party1sim.WithPaillierBits(1024), party1sim.WithAuthToken("cli"))
	ts := httptest.NewServer(srv)
	defer func() {
		ts.Close()
		srv.Close()
	}()

	share := filepath.Join(t.TempDir(), "share.json")
	common := []string{"--endpoint", ts.URL, "--auth-token", "cli"}

	_, err := execute(t, append([]string{"keygen", "--out", share}, common...)...)
	require.NoError(t, err)

	stored, err := readShare(share)
	require.NoError(t, err)
	_, ok := srv.MasterKey(stored.ID)
	assert.True(t, ok)

	out, err := execute(t, "derive", "--share", share, "--coin", "60", "--account", "0")
	require.NoError(t, err)
	var derived struct {
		XPos uint32 `json:"x_pos"`
		YPos uint32 `json:"y_pos"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &derived))
	assert.Equal(t, uint32(60), derived.XPos)

	out, err = execute(t, "pubkey", "--share", share, "--derive", "--coin", "60", "--account", "0")
	require.NoError(t, err)
	var pub pubkeyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &pub))
	assert.Regexp(t, "^0x[0-9a-fA-F]{40}$", pub.Address)
	assert.Len(t, pub.Compressed, 66)

	out, err = execute(t, append([]string{"sign", "--share", share, "--coin", "60", "--account", "0",
		"--message", "0x9c22ff5f21f0b81b113e63f7db6da94fedef11b2119b4088b89664fb9a3cb658"}, common...)...)
	require.NoError(t, err)
	var signed signOutput
	require.NoError(t, json.Unmarshal([]byte(out), &signed))
	assert.Len(t, signed.RSV, 65)
}
