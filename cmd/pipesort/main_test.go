package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, s string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return &buf
}

func TestInputStream(t *testing.T) {
	tests := []struct {
		name  string
		input io.Reader
		want  string
	}{
		{
			name:  "plain input passes through",
			input: strings.NewReader("pear\napple\n"),
			want:  "pear\napple\n",
		},
		{
			name:  "gzip input is decompressed",
			input: gzipped(t, "pear\napple\n"),
			want:  "pear\napple\n",
		},
		{
			name:  "single byte is too short for the magic",
			input: strings.NewReader("x"),
			want:  "x",
		},
		{
			name:  "empty input",
			input: strings.NewReader(""),
			want:  "",
		},
		{
			name:  "first magic byte alone is not gzip",
			input: strings.NewReader("\x1fplain"),
			want:  "\x1fplain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := inputStream(tt.input)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestInputStreamRejectsCorruptGzip(t *testing.T) {
	// Correct magic, garbage body: surfaced as a setup error rather than
	// fed to the workers as records.
	_, err := inputStream(strings.NewReader("\x1f\x8bnot-a-gzip-stream"))
	assert.Error(t, err)
}
