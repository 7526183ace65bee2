package pipeline

import (
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calegria/pipesort/internal/channel"
)

// failingReader is a source whose stream breaks on the first read.
type failingReader struct {
	err error
}

func (f *failingReader) ReadLine() (string, error) { return "", f.err }
func (f *failingReader) Close() error              { return nil }

// recordingReader wraps a source and logs the order of reads across sources,
// making the merge's refill order observable.
type recordingReader struct {
	inner channel.LineReader
	index int
	order *[]int
}

func (r *recordingReader) ReadLine() (string, error) {
	*r.order = append(*r.order, r.index)
	return r.inner.ReadLine()
}

func (r *recordingReader) Close() error { return r.inner.Close() }

func mergeStreams(t *testing.T, streams [][]string) ([]string, error) {
	t.Helper()
	sources := make([]channel.LineReader, len(streams))
	for i, lines := range streams {
		sources[i] = memorySource(t, lines)
	}
	dst := channel.NewMemory()
	m := NewMerger(sources, dst, nil, nil)
	err := m.Run()
	return drainMemory(t, dst), err
}

func TestMergeInvariant(t *testing.T) {
	// Merging independently sorted streams must equal sorting the full
	// concatenation directly.
	tests := []struct {
		name    string
		streams [][]string
	}{
		{
			name:    "single stream",
			streams: [][]string{{"a", "b", "c"}},
		},
		{
			name: "disjoint ranges",
			streams: [][]string{
				{"a", "b"},
				{"x", "y", "z"},
			},
		},
		{
			name: "interleaved",
			streams: [][]string{
				{"apple", "mango"},
				{"banana", "pear"},
				{"cherry"},
			},
		},
		{
			name: "duplicates across streams",
			streams: [][]string{
				{"a", "b"},
				{"a", "b"},
			},
		},
		{
			name: "some streams empty",
			streams: [][]string{
				nil,
				{"m"},
				nil,
				{"k", "q"},
			},
		},
		{
			name:    "all streams empty",
			streams: [][]string{nil, nil, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var want []string
			for _, s := range tt.streams {
				want = append(want, s...)
			}
			sort.Strings(want)

			got, err := mergeStreams(t, tt.streams)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestMergeTieBreak(t *testing.T) {
	// Three sources, all heads equal: the merge must drain them in worker
	// index order. Content-equal ties make this invisible in the output, so
	// observe the read order instead.
	var order []int
	sources := []channel.LineReader{
		&recordingReader{inner: memorySource(t, []string{"x"}), index: 0, order: &order},
		&recordingReader{inner: memorySource(t, []string{"x"}), index: 1, order: &order},
		&recordingReader{inner: memorySource(t, []string{"x"}), index: 2, order: &order},
	}
	dst := channel.NewMemory()

	require.NoError(t, NewMerger(sources, dst, nil, nil).Run())

	assert.Equal(t, []string{"x", "x", "x"}, drainMemory(t, dst))
	// Preload touches 0,1,2; each refill then follows the lowest tied index.
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, order)
}

func TestMergeFailedSourceTreatedAsExhausted(t *testing.T) {
	sources := []channel.LineReader{
		&failingReader{err: channel.ErrRecordTooLong},
		memorySource(t, []string{"a", "c"}),
		memorySource(t, []string{"b"}),
	}
	dst := channel.NewMemory()

	err := NewMerger(sources, dst, nil, nil).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, channel.ErrRecordTooLong)

	// Partial results: the survivors' union, still sorted.
	assert.Equal(t, []string{"a", "b", "c"}, drainMemory(t, dst))
}

// failingWriter is a sink that rejects writes after the first few.
type failingWriter struct {
	writes    int
	failAfter int
}

func (w *failingWriter) WriteLine(string) error {
	w.writes++
	if w.writes > w.failAfter {
		return errors.New("output sink failed")
	}
	return nil
}

func (w *failingWriter) Close() error { return nil }

func TestMergeDrainsSourcesAfterOutputFailure(t *testing.T) {
	s0 := memorySource(t, []string{"a", "c", "e"})
	s1 := memorySource(t, []string{"b", "d", "f"})
	dst := &failingWriter{failAfter: 1}

	err := NewMerger([]channel.LineReader{s0, s1}, dst, nil, nil).Run()
	require.Error(t, err)

	// Every source must still be read to end-of-stream, otherwise workers
	// block flushing and can never be reaped.
	_, err0 := s0.ReadLine()
	assert.Equal(t, io.EOF, err0)
	_, err1 := s1.ReadLine()
	assert.Equal(t, io.EOF, err1)
}

func TestMergeClosesOutput(t *testing.T) {
	dst := channel.NewMemory()
	require.NoError(t, NewMerger([]channel.LineReader{memorySource(t, nil)}, dst, nil, nil).Run())

	assert.ErrorIs(t, dst.WriteLine("x"), channel.ErrChannelClosed)
}
