package reader

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"ForensicFlow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReader_ChunkedIteration(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "events.csv", []byte(
		"Start Time,Attack Name,Risk\n"+
			"01.01.2024 10:00:00,SYN Flood,High\n"+
			"02.01.2024 11:00:00,UDP Flood,Low\n"+
			"03.01.2024 12:00:00,DNS Flood,Medium\n"+
			"04.01.2024 13:00:00,SYN Flood,High\n"+
			"05.01.2024 14:00:00,ICMP Flood,Low\n"))

	r, err := Open(path, Options{ChunkSize: 2})
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, []string{"Start Time", "Attack Name", "Risk"}, r.Header().Names())

	var sizes []int
	var firstCol []string
	for {
		b, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, b.Len())
		for _, row := range b.Rows {
			v, ok := b.Value(row, "Start Time")
			require.True(t, ok)
			firstCol = append(firstCol, v)
		}
	}

	// Two full chunks, one short trailer, file order preserved.
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []string{
		"01.01.2024 10:00:00", "02.01.2024 11:00:00", "03.01.2024 12:00:00",
		"04.01.2024 13:00:00", "05.01.2024 14:00:00",
	}, firstCol)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_SkipResumesMidFile(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "events.csv", []byte(
		"Start Time,Attack Name\n"+
			"row1,a\nrow2,b\nrow3,c\nrow4,d\nrow5,e\n"))

	r, err := Open(path, Options{ChunkSize: 10})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Skip(3))

	b, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	v, _ := b.Value(b.Rows[0], "Start Time")
	assert.Equal(t, "row4", v)

	// Skipping past the end is quiet; the stream just reports EOF.
	require.NoError(t, r.Skip(100))
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_RaggedRows(t *testing.T) {
	t.Parallel()
	// Short rows surface absent values; long rows carry ignorable extras.
	path := writeFile(t, "ragged.csv", []byte(
		"Start Time,Attack Name,Risk\n"+
			"01.01.2024 10:00:00,SYN Flood\n"+
			"02.01.2024 11:00:00,UDP Flood,Low,extra,fields\n"))

	r, err := Open(path, Options{ChunkSize: 10})
	require.NoError(t, err)
	defer r.Close()

	b, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	_, ok := b.Value(b.Rows[0], "Risk")
	assert.False(t, ok, "short row must report the trailing column as absent")

	v, ok := b.Value(b.Rows[1], "Risk")
	require.True(t, ok)
	assert.Equal(t, "Low", v)

	m := b.RowMap(b.Rows[0])
	assert.Equal(t, "N/A", m["Risk"], "provenance snapshots pad short rows")
}

func TestReader_Latin1Decoding(t *testing.T) {
	t.Parallel()
	// "Café" with 0xE9: invalid UTF-8, decodable as Latin-1/cp1252.
	data := append([]byte("Start Time,Attack Name\n01.01.2024 10:00:00,"), 0x43, 0x61, 0x66, 0xE9, '\n')
	path := writeFile(t, "latin1.csv", data)

	r, err := Open(path, Options{ChunkSize: 10})
	require.NoError(t, err)
	defer r.Close()

	assert.NotEmpty(t, r.Encoding())

	b, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())
	v, ok := b.Value(b.Rows[0], "Attack Name")
	require.True(t, ok)
	assert.Equal(t, "Café", v)
}

func TestReader_UTF8BOMStripped(t *testing.T) {
	t.Parallel()
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Start Time,Attack Name\n01.01.2024 10:00:00,SYN Flood\n")...)
	path := writeFile(t, "bom.csv", data)

	r, err := Open(path, Options{ChunkSize: 10})
	require.NoError(t, err)
	defer r.Close()

	// The BOM must not leak into the first column name.
	assert.True(t, r.Header().Has("Start Time"))

	b, err := r.Next()
	require.NoError(t, err)
	v, ok := b.Value(b.Rows[0], "Start Time")
	require.True(t, ok)
	assert.Equal(t, "01.01.2024 10:00:00", v)
}

func TestReader_HeaderOnlyFile(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "empty.csv", []byte("Start Time,Attack Name\n"))

	r, err := Open(path, Options{ChunkSize: 10})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_ColumnVariantsResolved(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "variants.csv", []byte(
		"Start Time,Attack Name,Total Packets Dropped,Source IP\n"+
			"01.01.2024 10:00:00,SYN Flood,1200,10.0.0.1\n"))

	r, err := Open(path, Options{ChunkSize: 10})
	require.NoError(t, err)
	defer r.Close()

	cols := r.Columns()
	assert.Equal(t, "Total Packets Dropped", cols.Resolve(model.ColTotalPackets))
	assert.Equal(t, "Source IP", cols.Resolve(model.ColSourceIP))
	// Unmapped canonical names fall through unchanged.
	assert.Equal(t, model.ColRisk, cols.Resolve(model.ColRisk))
}
