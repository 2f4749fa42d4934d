// Package upload implements the chunked, sequential upload protocol for a
// single file's content.
package upload

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/errors"
	"github.com/bioarchive/dsclient/pkg/local"
)

// Sender uploads file contents chunk by chunk. Chunks are sent strictly in
// increasing order with no concurrency, and a failure anywhere abandons the
// whole upload session: a retry must start over with a fresh session rather
// than resume.
type Sender struct {
	api *dataservice.Client
}

// NewSender creates a Sender backed by the given API client.
func NewSender(api *dataservice.Client) *Sender {
	return &Sender{api: api}
}

// Upload sends file's content into the project under the given parent and
// returns the id of the resulting remote file. A file that already has a
// remote id gets its content replaced in place; otherwise a new file
// resource is created. The steps are strictly ordered: create an upload
// session, send every chunk, complete the session, then attach it to a file.
func (s *Sender) Upload(ctx context.Context, file *local.File, projectID,
	parentKind, parentID string) (string, error) {

	hashPair, err := file.HashPair()
	if err != nil {
		return "", err
	}
	fileHash := dataservice.Hash{
		Value:     hashPair.Value,
		Algorithm: hashPair.Algorithm,
	}

	upload, err := s.api.CreateUpload(ctx, projectID, file.Name(), file.Mimetype,
		file.Size, fileHash)
	if err != nil {
		return "", errors.WithContext(err, "create upload for "+file.Name())
	}

	if err := s.sendChunks(ctx, file, upload.ID); err != nil {
		return "", err
	}

	if err := s.api.CompleteUpload(ctx, upload.ID, fileHash); err != nil {
		return "", errors.WithContext(err, "complete upload of "+file.Name())
	}

	if existingID := file.RemoteID(); existingID != "" {
		updated, err := s.api.UpdateFile(ctx, existingID, upload.ID)
		if err != nil {
			return "", errors.WithContext(err, "update file "+file.Name())
		}
		return updated.ID, nil
	}

	created, err := s.api.CreateFile(ctx, parentKind, parentID, upload.ID)
	if err != nil {
		return "", errors.WithContext(err, "create file "+file.Name())
	}
	return created.ID, nil
}

// sendChunks streams the file through the chunk protocol: negotiate a
// destination for each chunk, then transmit the bytes there. The chunk
// number only advances after a successful transmission, so a failure on
// chunk N prevents any request for chunk N+1.
func (s *Sender) sendChunks(ctx context.Context, file *local.File, uploadID string) error {
	chunkNum := 0
	return file.ProcessChunks(s.api.BytesPerChunk(), func(chunk []byte, hash local.HashPair) error {
		chunkHash := dataservice.Hash{
			Value:     hash.Value,
			Algorithm: hash.Algorithm,
		}

		chunkURL, err := s.api.CreateUploadChunkURL(ctx, uploadID, chunkNum,
			len(chunk), chunkHash)
		if err != nil {
			return errors.UploadError{
				Path:   file.Path,
				Reason: "failed to retrieve upload url: " + err.Error(),
			}
		}

		log.WithFields(log.Fields{
			"chunk": chunkNum,
			"size":  len(chunk),
			"host":  chunkURL.Host,
		}).Debug("Sending chunk")

		status, err := s.api.SendExternal(ctx, chunkURL.HTTPVerb, chunkURL.Host,
			chunkURL.URL, chunkURL.HTTPHeaders, chunk)
		if err != nil {
			return errors.UploadError{
				Path:   file.Path,
				Reason: "failed to send chunk to external store: " + err.Error(),
			}
		}
		if status != 200 && status != 201 {
			return errors.UploadError{
				Path:       file.Path,
				StatusCode: status,
				Reason:     "failed to send chunk to external store",
			}
		}

		chunkNum++
		return nil
	})
}
