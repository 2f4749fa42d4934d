package dataservice

// Kind strings discriminate node types in the remote hierarchy. Creation
// calls take typed parent references, so callers need to know whether a
// parent is a project or a folder.
const (
	KindProject = "ds-project"
	KindFolder  = "ds-folder"
	KindFile    = "ds-file"
)

// Hash is a content hash paired with the algorithm that produced it.
type Hash struct {
	Value     string `json:"value"`
	Algorithm string `json:"algorithm"`
}

// Project is a top-level container of folders and files.
type Project struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDeleted   bool   `json:"is_deleted"`
}

// Folder is a folder resource as returned by folder creation.
type Folder struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	IsDeleted bool   `json:"is_deleted"`
}

// Child is one entry of a children listing. File entries carry their size
// under upload, but not their content hash; that requires a follow-up
// GetFile call.
type Child struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Name      string      `json:"name"`
	IsDeleted bool        `json:"is_deleted"`
	Upload    *FileUpload `json:"upload,omitempty"`
}

// File is the full detail of a file resource, including the hash of the
// upload backing it.
type File struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	IsDeleted bool       `json:"is_deleted"`
	Upload    FileUpload `json:"upload"`
}

// FileUpload describes the stored content behind a file.
type FileUpload struct {
	ID   string `json:"id,omitempty"`
	Size int64  `json:"size"`
	Hash *Hash  `json:"hash,omitempty"`
}

// Upload is an upload session correlating a file's chunks before the file
// resource itself exists.
type Upload struct {
	ID string `json:"id"`
}

// ChunkURL tells us where and how to send one chunk's bytes. Host may be an
// external object store rather than the API host.
type ChunkURL struct {
	HTTPVerb    string            `json:"http_verb"`
	Host        string            `json:"host"`
	URL         string            `json:"url"`
	HTTPHeaders map[string]string `json:"http_headers"`
}

// FileURL tells us where to download a file's content from.
type FileURL struct {
	HTTPVerb    string            `json:"http_verb"`
	Host        string            `json:"host"`
	URL         string            `json:"url"`
	HTTPHeaders map[string]string `json:"http_headers"`
}

// User is an account that can be granted access to projects.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// AuthRole is a named permission level, e.g. project_admin.
type AuthRole struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Permission links a user to their auth role on a project.
type Permission struct {
	User     User     `json:"user"`
	AuthRole AuthRole `json:"auth_role"`
}

// Transfer is a pending or resolved handoff of a project to other users.
type Transfer struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FromUser      User   `json:"from_user"`
	ToUsers       []User `json:"to_users"`
	StatusComment string `json:"status_comment,omitempty"`
}

// Activity is a provenance record describing work performed on files.
type Activity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartedOn   string `json:"started_on,omitempty"`
	EndedOn     string `json:"ended_on,omitempty"`
}
