package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\nnext\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	got, err = GetMultiline(rdr("tail"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	assert.Error(t, err)
}

func TestLoadFile_SniffsContentType(t *testing.T) {
	old := readFile
	t.Cleanup(func() { readFile = old })
	readFile = func(string) ([]byte, error) { return pngHeader, nil }

	f, err := LoadFile("/tmp/pics/me.png")
	require.NoError(t, err)
	assert.Equal(t, "me.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, int64(len(pngHeader)), f.Size)
}
