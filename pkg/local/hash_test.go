package local

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioarchive/dsclient/pkg/errors"
)

func md5Hex(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestHashPair(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "hello world")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)

	hash, err := file.HashPair()
	require.NoError(t, err)
	assert.Equal(t, "md5", hash.Algorithm)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", hash.Value)
}

func TestHashPairEmptyFile(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/empty", "")

	file, err := NewFile("/data/empty")
	require.NoError(t, err)

	hash, err := file.HashPair()
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hash.Value)
}

func TestHashPairCached(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "hello world")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)

	first, err := file.HashPair()
	require.NoError(t, err)

	// Changing the content after the first hash doesn't change the cached
	// value.
	writeFile(t, "/data/note.txt", "changed")
	second, err := file.HashPair()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessChunks(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "abcdefghij")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)

	var chunks []string
	var hashes []string
	err = file.ProcessChunks(4, func(chunk []byte, hash HashPair) error {
		chunks = append(chunks, string(chunk))
		hashes = append(hashes, hash.Value)
		return nil
	})
	require.NoError(t, err)

	// The final chunk is short.
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
	assert.Equal(t, []string{md5Hex("abcd"), md5Hex("efgh"), md5Hex("ij")}, hashes)
}

func TestProcessChunksExactMultiple(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "abcdefgh")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)

	var chunks []string
	err = file.ProcessChunks(4, func(chunk []byte, _ HashPair) error {
		chunks = append(chunks, string(chunk))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "efgh"}, chunks)
}

func TestProcessChunksEmptyFile(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/empty", "")

	file, err := NewFile("/data/empty")
	require.NoError(t, err)

	var chunks []string
	var hashes []string
	err = file.ProcessChunks(4, func(chunk []byte, hash HashPair) error {
		chunks = append(chunks, string(chunk))
		hashes = append(hashes, hash.Value)
		return nil
	})
	require.NoError(t, err)

	// An empty file still yields one empty chunk.
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0])
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hashes[0])
}

func TestProcessChunksStopsOnError(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "abcdefghij")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)

	boom := errors.New("boom")
	var calls int
	err = file.ProcessChunks(4, func(_ []byte, _ HashPair) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
