package local

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/bioarchive/dsclient/pkg/errors"
)

// HashAlgorithm is the algorithm used for whole-file and per-chunk content
// hashes.
const HashAlgorithm = "md5"

// HashPair is a content hash and the algorithm that produced it.
type HashPair struct {
	Algorithm string
	Value     string
}

// HashPair returns the hash of the file's entire content. The hash is
// computed on first use by streaming the file, then cached.
func (f *File) HashPair() (HashPair, error) {
	if f.hash != nil {
		return *f.hash, nil
	}

	handle, err := fs.Open(f.Path)
	if err != nil {
		return HashPair{}, errors.WithContext(err, "open "+f.Path)
	}
	defer handle.Close()

	digest := md5.New()
	if _, err := io.Copy(digest, handle); err != nil {
		return HashPair{}, errors.WithContext(err, "hash "+f.Path)
	}

	f.hash = &HashPair{
		Algorithm: HashAlgorithm,
		Value:     hex.EncodeToString(digest.Sum(nil)),
	}
	return *f.hash, nil
}

// ProcessChunks streams the file's content in fixed-size chunks, calling
// process for each one with its hash. Chunks arrive in file order; a short
// final chunk is normal. An empty file yields a single empty chunk so that
// uploads always have at least one chunk to register.
func (f *File) ProcessChunks(bytesPerChunk int64,
	process func(chunk []byte, hash HashPair) error) error {

	handle, err := fs.Open(f.Path)
	if err != nil {
		return errors.WithContext(err, "open "+f.Path)
	}
	defer handle.Close()

	sentAny := false
	buffer := make([]byte, bytesPerChunk)
	for {
		n, err := io.ReadFull(handle, buffer)
		if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return errors.WithContext(err, "read "+f.Path)
		}

		chunk := buffer[:n]
		if err := process(chunk, hashChunk(chunk)); err != nil {
			return err
		}
		sentAny = true

		if n < len(buffer) {
			break
		}
	}

	if !sentAny {
		empty := []byte{}
		return process(empty, hashChunk(empty))
	}
	return nil
}

func hashChunk(chunk []byte) HashPair {
	sum := md5.Sum(chunk)
	return HashPair{
		Algorithm: HashAlgorithm,
		Value:     hex.EncodeToString(sum[:]),
	}
}
