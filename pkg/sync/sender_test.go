package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/local"
)

// fakeUploader records upload calls and hands out fabricated file ids.
type fakeUploader struct {
	calls []string
}

func (u *fakeUploader) Upload(_ context.Context, file *local.File, projectID,
	parentKind, parentID string) (string, error) {

	u.calls = append(u.calls,
		fmt.Sprintf("%s project:%s parent:%s/%s", file.Name(), projectID, parentKind, parentID))
	return "file-" + uuid.NewString(), nil
}

// createServer counts project and folder creations and responds with
// fabricated ids.
type createServer struct {
	*httptest.Server
	projectCreates int
	folderCreates  []string
}

func newCreateServer(t *testing.T) *createServer {
	s := &createServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		s.projectCreates++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "project-1"}`)
	})
	mux.HandleFunc("/folders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body struct {
			Name   string `json:"name"`
			Parent struct {
				Kind string `json:"kind"`
				ID   string `json:"id"`
			} `json:"parent"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		s.folderCreates = append(s.folderCreates,
			fmt.Sprintf("%s under %s/%s", body.Name, body.Parent.Kind, body.Parent.ID))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id": "folder-%s"}`, uuid.NewString())
	})
	s.Server = httptest.NewServer(mux)
	return s
}

func TestSendCreatesEverything(t *testing.T) {
	server := newCreateServer(t)
	defer server.Close()

	api := dataservice.New(server.URL, nil, dataservice.Options{})
	uploader := &fakeUploader{}
	sender := NewContentSender(api, uploader, "", "mouse", nil)

	project := testTree()
	require.NoError(t, sender.Send(context.Background(), project))

	assert.Equal(t, 1, server.projectCreates)
	assert.Equal(t, "project-1", project.RemoteID())

	// Parents are created before their children.
	require.Len(t, server.folderCreates, 2)
	assert.Equal(t, "results under ds-project/project-1", server.folderCreates[0])

	results := project.Children[0].(*local.Folder)
	assert.Equal(t, "run1 under ds-folder/"+results.RemoteID(), server.folderCreates[1])

	// Each file was uploaded under its own parent with the created
	// project as context.
	require.Len(t, uploader.calls, 3)
	run1 := results.Children[0].(*local.Folder)
	assert.Equal(t,
		"counts.csv project:project-1 parent:ds-folder/"+run1.RemoteID(),
		uploader.calls[0])
	assert.Equal(t,
		"summary.txt project:project-1 parent:ds-folder/"+results.RemoteID(),
		uploader.calls[1])
	assert.Equal(t,
		"readme.md project:project-1 parent:ds-project/project-1",
		uploader.calls[2])

	// Every file is now marked sent.
	assert.False(t, results.Children[1].(*local.File).NeedToSend)
	assert.False(t, project.Children[1].(*local.File).NeedToSend)
}

func TestSendIsIdempotent(t *testing.T) {
	server := newCreateServer(t)
	defer server.Close()

	api := dataservice.New(server.URL, nil, dataservice.Options{})
	uploader := &fakeUploader{}
	sender := NewContentSender(api, uploader, "", "mouse", nil)

	project := testTree()
	require.NoError(t, sender.Send(context.Background(), project))

	firstFolderCreates := len(server.folderCreates)
	firstUploads := len(uploader.calls)

	// A second send finds every node already synced and does nothing.
	require.NoError(t, sender.Send(context.Background(), project))
	assert.Equal(t, 1, server.projectCreates)
	assert.Equal(t, firstFolderCreates, len(server.folderCreates))
	assert.Equal(t, firstUploads, len(uploader.calls))
}

func TestSendExistingProject(t *testing.T) {
	server := newCreateServer(t)
	defer server.Close()

	api := dataservice.New(server.URL, nil, dataservice.Options{})
	uploader := &fakeUploader{}
	sender := NewContentSender(api, uploader, "existing-project", "mouse", nil)

	project := testTree()
	require.NoError(t, project.SetRemoteID("existing-project"))
	require.NoError(t, sender.Send(context.Background(), project))

	// The project already exists, so no creation call is issued and
	// top-level children use the known project id.
	assert.Equal(t, 0, server.projectCreates)
	assert.Equal(t, "results under ds-project/existing-project", server.folderCreates[0])
	assert.Contains(t, uploader.calls[2], "project:existing-project")
}

func TestSendUpdatesExistingFileInPlace(t *testing.T) {
	server := newCreateServer(t)
	defer server.Close()

	api := dataservice.New(server.URL, nil, dataservice.Options{})
	uploader := &fakeUploader{}
	sender := NewContentSender(api, uploader, "existing-project", "mouse", nil)

	file := &local.File{FileName: "readme.md", NeedToSend: true}
	require.NoError(t, file.SetRemoteID("existing-file"))

	project := local.NewProject()
	require.NoError(t, project.SetRemoteID("existing-project"))
	project.Children = []local.Node{file}

	require.NoError(t, sender.Send(context.Background(), project))
	require.Len(t, uploader.calls, 1)

	// The file keeps its id after a content update.
	assert.Equal(t, "existing-file", file.RemoteID())
	assert.False(t, file.NeedToSend)
}
