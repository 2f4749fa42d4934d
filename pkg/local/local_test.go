package local

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) {
	oldFs := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = oldFs })
}

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
}

func TestProjectString(t *testing.T) {
	useMemFs(t)
	require.NoError(t, fs.MkdirAll("/data/emptyfolder", 0755))
	writeFile(t, "/data/note.txt", "hi")

	project := NewProject()
	require.NoError(t, project.AddPath("/data/emptyfolder"))
	require.NoError(t, project.AddPath("/data/note.txt"))

	assert.Equal(t, "project: [folder:emptyfolder [], file:note.txt]", project.String())
}

func TestNestedFolders(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/results/run1/counts.csv", "a,b")
	writeFile(t, "/data/results/summary.txt", "ok")

	project := NewProject()
	require.NoError(t, project.AddPath("/data/results"))

	assert.Equal(t,
		"project: [folder:results [folder:run1 [file:counts.csv], file:summary.txt]]",
		project.String())
}

func TestFolderNameStripsTrailingSeparator(t *testing.T) {
	useMemFs(t)
	require.NoError(t, fs.MkdirAll("/data/results", 0755))

	folder, err := NewFolder("/data/results/")
	require.NoError(t, err)
	assert.Equal(t, "results", folder.Name())
}

func TestAddPathMissing(t *testing.T) {
	useMemFs(t)

	project := NewProject()
	err := project.AddPath("/no/such/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/no/such/path")
}

func TestNewFile(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "hello")
	writeFile(t, "/data/blob.xyzunknown", "hello")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "note.txt", file.Name())
	assert.Equal(t, int64(5), file.Size)
	assert.True(t, file.NeedToSend)

	blob, err := NewFile("/data/blob.xyzunknown")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", blob.Mimetype)
}

func TestSetRemoteIDOnce(t *testing.T) {
	useMemFs(t)
	writeFile(t, "/data/note.txt", "hi")

	file, err := NewFile("/data/note.txt")
	require.NoError(t, err)
	require.NoError(t, file.SetRemoteID("id-1"))
	assert.Equal(t, "id-1", file.RemoteID())
	assert.Error(t, file.SetRemoteID("id-2"))
	assert.Equal(t, "id-1", file.RemoteID())

	project := NewProject()
	require.NoError(t, project.SetRemoteID("p-1"))
	assert.Error(t, project.SetRemoteID("p-2"))
}
