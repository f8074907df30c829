// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ekarpov/elib-sub000"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes data to a file with the given name in a temporary
// directory, and returns its path.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

// writeGzip writes data compressed to a file with the given name in a
// temporary directory, and returns its path.
func writeGzip(t *testing.T, name string, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Name = strings.TrimSuffix(name, ".gz")
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return writeFile(t, name, buf.Bytes())
}

// run executes the command line args and returns its output lines.
func run(t *testing.T, args ...string) ([]string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--log-level=fatal"}, args...))
	err := cmd.Execute()
	return strings.Split(strings.TrimSpace(out.String()), "\n"), err
}

const testJSON = `{"a": [10, "x"]}`

var testJSONEvents = []string{
	`ObjectBegin@0`,
	`KeyName("a")@1`,
	`ArrayBegin@6`,
	`ValueData("10")@7`,
	`ValueString("x")@11`,
	`ArrayEnd@14`,
	`ObjectEnd@15`,
}

func TestJSONCommand(t *testing.T) {
	path := writeFile(t, "test.json", []byte(testJSON))

	for _, chunk := range []string{"1", "3", "4096"} {
		got, err := run(t, "json", "--chunk", chunk, path)
		require.NoError(t, err, "chunk %s", chunk)
		assert.Equal(t, testJSONEvents, got, "chunk %s", chunk)
	}
}

func TestJSONOptions(t *testing.T) {
	path := writeFile(t, "opts.json", []byte("[\"\\u0041\", // note\n 1,]"))

	_, err := run(t, "json", path)
	assert.Error(t, err, "comments and trailing commas are rejected by default")

	got, err := run(t, "json", "--comments", "--trailing-commas", "--decode=false", path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`ArrayBegin@0`,
		`ValueString("\\u0041")@1`,
		`Comment("// note\n")@11`,
		`ValueData("1")@20`,
		`ArrayEnd@22`,
	}, got)
}

func TestJSONTree(t *testing.T) {
	path := writeFile(t, "tree.json", []byte(`{"list": [{"x": 1}, {"x": "two"}]} [3]`))

	got, err := run(t, "json", "--tree", path)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"list":[{"x":1},{"x":"two"}]}`, `[3]`}, got)

	got, err = run(t, "json", "--tree", "--path", "list/-1/x", path)
	assert.Error(t, err, "the second value has no list")
	assert.Equal(t, []string{`"two"`}, got)
}

func TestXMLCommand(t *testing.T) {
	path := writeGzip(t, "test.xml.gz", []byte(`<a x="1">fish &amp; chips<b/></a>`))

	got, err := run(t, "xml", path)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.True(t, strings.HasPrefix(got[0], `TagBegin("a")`))
	assert.True(t, strings.HasPrefix(got[2], `AttributeValue("1")`))
	assert.True(t, strings.HasPrefix(got[3], `TagContent("fish &amp; chips")`))
	assert.True(t, strings.HasPrefix(got[6], `TagEnd("a")`))

	got, err = run(t, "xml", "--decode", path)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.True(t, strings.HasPrefix(got[3], `TagContent("fish & chips")`))
}

func TestSyntaxErrors(t *testing.T) {
	path := writeFile(t, "bad.xml", []byte(`<a><b></c></a>`))
	_, err := run(t, "xml", path)
	assert.ErrorContains(t, err, "1 syntax errors")

	path = writeFile(t, "open.json", []byte(`[1, 2`))
	_, err = run(t, "json", path)
	assert.ErrorIs(t, err, elib.ErrIncomplete)

	path = writeFile(t, "long.json", []byte(`["a long string value"]`))
	_, err = run(t, "json", "--max-token", "5", path)
	assert.ErrorIs(t, err, elib.ErrOutOfMemory)

	_, err = run(t, "json", "--chunk", "0", path)
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	cfg := writeFile(t, "config.hujson", []byte(`{
  // Settings for testing.
  "chunk": 2,
  "comments": true,
  "decode": false,
  "charset": "utf-8",
}`))
	path := writeFile(t, "test.json", []byte("/* hi */ \"\\t\""))

	got, err := run(t, "json", "--config", cfg, path)
	require.NoError(t, err)
	assert.Equal(t, []string{`Comment("/* hi */")@0`, `ValueString("\\t")@9`}, got)

	// Flags take precedence over the configuration file.
	got, err = run(t, "json", "--config", cfg, "--decode", path)
	require.NoError(t, err)
	assert.Equal(t, []string{`Comment("/* hi */")@0`, `ValueString("\t")@9`}, got)

	// Settings for flags of other commands are ignored.
	xml := writeFile(t, "test.xml", []byte(`<a/>`))
	got, err = run(t, "xml", "--config", cfg, xml)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	bad := writeFile(t, "bad.hujson", []byte(`{"chunk": [1]}`))
	_, err = run(t, "json", "--config", bad, path)
	assert.ErrorContains(t, err, "invalid value")
}

func TestOpenInput(t *testing.T) {
	const text = "caf\xe9"
	path := writeGzip(t, "latin1.txt.gz", []byte(text))

	in, err := openInput(path, "latin1")
	require.NoError(t, err)
	got, err := io.ReadAll(in)
	require.NoError(t, err)
	require.NoError(t, in.Close())
	assert.Equal(t, "café", string(got))

	_, err = openInput(path, "no-such-charset")
	assert.Error(t, err)

	_, err = openInput(filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)

	notGzip := writeFile(t, "plain.gz", []byte("plain text"))
	_, err = openInput(notGzip, "")
	assert.Error(t, err)
}
