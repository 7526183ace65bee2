package channel

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSplitsRecords(t *testing.T) {
	r := NewReader(strings.NewReader("alpha\nbeta\ngamma\n"), 0)

	for _, want := range []string{"alpha", "beta", "gamma"} {
		line, err := r.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	_, err := r.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestReaderFinalRecordWithoutNewline(t *testing.T) {
	r := NewReader(strings.NewReader("alpha\nbeta"), 0)

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "alpha", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "beta", line)

	_, err = r.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestReaderEmptyStream(t *testing.T) {
	r := NewReader(strings.NewReader(""), 0)

	_, err := r.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestReaderRecordTooLong(t *testing.T) {
	// Bound of 8 bytes including the newline: 7-byte records pass, 8-byte
	// records fail.
	r := NewReader(strings.NewReader("1234567\n12345678\n"), 8)

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "1234567", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, ErrRecordTooLong)
}

func TestWriterAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)

	require.NoError(t, w.WriteLine("alpha"))
	require.NoError(t, w.WriteLine("beta\n"))
	require.NoError(t, w.Close())

	assert.Equal(t, "alpha\nbeta\n", buf.String())
}

func TestWriterRejectsOversizedRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 8)

	require.NoError(t, w.WriteLine("1234567"))
	assert.ErrorIs(t, w.WriteLine("12345678"), ErrRecordTooLong)
}

func TestWriterCloseIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0)

	require.NoError(t, w.WriteLine("alpha"))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.WriteLine("beta"), ErrChannelClosed)
	assert.Equal(t, "alpha\n", buf.String())
}

func TestWriterMapsBrokenPipe(t *testing.T) {
	pr, pw := io.Pipe()
	require.NoError(t, pr.Close())

	w := NewWriter(pw, 0)
	require.NoError(t, w.WriteLine("alpha")) // buffered
	assert.ErrorIs(t, w.Close(), ErrChannelClosed)
}

func TestMemoryBlocksUntilWrite(t *testing.T) {
	m := NewMemory()

	go func() {
		m.WriteLine("alpha")
		m.Close()
	}()

	line, err := m.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "alpha", line)

	_, err = m.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestMemoryDrainsBufferedAfterClose(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.WriteLine("alpha"))
	require.NoError(t, m.WriteLine("beta\n"))
	require.NoError(t, m.Close())
	assert.Equal(t, 2, m.Len())

	line, err := m.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "alpha", line)

	line, err = m.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "beta", line)

	_, err = m.ReadLine()
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, m.Len())

	assert.ErrorIs(t, m.WriteLine("gamma"), ErrChannelClosed)
}
