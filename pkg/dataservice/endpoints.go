package dataservice

import (
	"context"
	"net/http"
	"net/url"
)

// CreateProject creates a new project with the given name and description.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	data := map[string]string{
		"name":        name,
		"description": description,
	}
	var project Project
	if err := c.post(ctx, "/projects", data, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns every project visible to the current user, fetching
// all pages.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var listing struct {
		Results []Project `json:"results"`
	}
	if err := c.getCollection(ctx, "/projects", url.Values{}, &listing); err != nil {
		return nil, err
	}
	return listing.Results, nil
}

// GetProject fetches one project's details.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.getSingleItem(ctx, "/projects/"+projectID, url.Values{}, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project and everything in it.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.delete(ctx, "/projects/"+projectID, url.Values{})
}

// ListProjectChildren lists the direct children of a project, optionally
// filtered to names containing nameContains.
func (c *Client) ListProjectChildren(ctx context.Context, projectID, nameContains string) ([]Child, error) {
	return c.listChildren(ctx, "/projects/"+projectID+"/children", nameContains)
}

// ListFolderChildren lists the direct children of a folder, optionally
// filtered to names containing nameContains.
func (c *Client) ListFolderChildren(ctx context.Context, folderID, nameContains string) ([]Child, error) {
	return c.listChildren(ctx, "/folders/"+folderID+"/children", nameContains)
}

func (c *Client) listChildren(ctx context.Context, suffix, nameContains string) ([]Child, error) {
	params := url.Values{}
	params.Set("name_contains", nameContains)

	var listing struct {
		Results []Child `json:"results"`
	}
	if err := c.getCollection(ctx, suffix, params, &listing); err != nil {
		return nil, err
	}
	return listing.Results, nil
}

// CreateFolder creates a folder under the given parent. parentKind must be
// KindProject or KindFolder.
func (c *Client) CreateFolder(ctx context.Context, name, parentKind, parentID string) (*Folder, error) {
	data := map[string]interface{}{
		"name": name,
		"parent": map[string]string{
			"kind": parentKind,
			"id":   parentID,
		},
	}
	var folder Folder
	if err := c.post(ctx, "/folders", data, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// GetFile fetches a file's details, including the content hash of its
// upload. The hash is only available here, not in children listings.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	if err := c.getSingleItem(ctx, "/files/"+fileID, url.Values{}, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFileURL returns a location the file's content can be downloaded from.
func (c *Client) GetFileURL(ctx context.Context, fileID string) (*FileURL, error) {
	var fileURL FileURL
	if err := c.getSingleItem(ctx, "/files/"+fileID+"/url", url.Values{}, &fileURL); err != nil {
		return nil, err
	}
	return &fileURL, nil
}

// CreateUpload starts an upload session for a file's content within a
// project. The returned upload id is what chunks are attached to.
func (c *Client) CreateUpload(ctx context.Context, projectID, name, contentType string,
	size int64, hash Hash) (*Upload, error) {

	data := map[string]interface{}{
		"name":         name,
		"content_type": contentType,
		"size":         size,
		"hash":         hash,
	}
	var upload Upload
	if err := c.post(ctx, "/projects/"+projectID+"/uploads", data, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// CreateUploadChunkURL negotiates where to send one chunk's bytes. The
// returned location may be on an external object store host.
func (c *Client) CreateUploadChunkURL(ctx context.Context, uploadID string, number int,
	size int, hash Hash) (*ChunkURL, error) {

	data := map[string]interface{}{
		"number": number,
		"size":   size,
		"hash":   hash,
	}
	var chunkURL ChunkURL
	if err := c.put(ctx, "/uploads/"+uploadID+"/chunks", data, contentTypeJSON, &chunkURL); err != nil {
		return nil, err
	}
	return &chunkURL, nil
}

// CompleteUpload marks an upload session complete once all of its chunks
// have been stored.
func (c *Client) CompleteUpload(ctx context.Context, uploadID string, hash Hash) error {
	data := url.Values{}
	data.Set("hash[value]", hash.Value)
	data.Set("hash[algorithm]", hash.Algorithm)
	return c.put(ctx, "/uploads/"+uploadID+"/complete", data, contentTypeForm, nil)
}

// CreateFile creates a file resource referencing a completed upload.
func (c *Client) CreateFile(ctx context.Context, parentKind, parentID, uploadID string) (*File, error) {
	data := map[string]interface{}{
		"parent": map[string]string{
			"kind": parentKind,
			"id":   parentID,
		},
		"upload": map[string]string{
			"id": uploadID,
		},
	}
	var file File
	if err := c.post(ctx, "/files/", data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// UpdateFile points an existing file at a new completed upload.
func (c *Client) UpdateFile(ctx context.Context, fileID, uploadID string) (*File, error) {
	data := url.Values{}
	data.Set("upload[id]", uploadID)

	var file File
	if err := c.put(ctx, "/files/"+fileID, data, contentTypeForm, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListUsers returns users, optionally filtered by a full-name-contains
// search. The filter is a server-side pre-filter only; exact matching is up
// to the caller.
func (c *Client) ListUsers(ctx context.Context, fullNameContains string) ([]User, error) {
	params := url.Values{}
	if fullNameContains != "" {
		params.Set("full_name_contains", fullNameContains)
	}

	var listing struct {
		Results []User `json:"results"`
	}
	if err := c.getCollection(ctx, "/users", params, &listing); err != nil {
		return nil, err
	}
	return listing.Results, nil
}

// GetUser fetches one user's details.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.getSingleItem(ctx, "/users/"+userID, url.Values{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCurrentUser returns the user the current token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.getSingleItem(ctx, "/current_user", url.Values{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserProjectPermission grants a user the given auth role on a project.
func (c *Client) SetUserProjectPermission(ctx context.Context, projectID, userID,
	authRole string) (*Permission, error) {

	data := url.Values{}
	data.Set("auth_role[id]", authRole)

	var permission Permission
	suffix := "/projects/" + projectID + "/permissions/" + userID
	if err := c.put(ctx, suffix, data, contentTypeForm, &permission); err != nil {
		return nil, err
	}
	return &permission, nil
}

// GetUserProjectPermission returns a user's auth role on a project.
func (c *Client) GetUserProjectPermission(ctx context.Context, projectID,
	userID string) (*Permission, error) {

	var permission Permission
	suffix := "/projects/" + projectID + "/permissions/" + userID
	if err := c.getSingleItem(ctx, suffix, url.Values{}, &permission); err != nil {
		return nil, err
	}
	return &permission, nil
}

// RevokeUserProjectPermission removes a user's access to a project.
func (c *Client) RevokeUserProjectPermission(ctx context.Context, projectID, userID string) error {
	return c.delete(ctx, "/projects/"+projectID+"/permissions/"+userID, url.Values{})
}

// ListAuthRoles returns the auth roles available in a context, either
// "project" or "system".
func (c *Client) ListAuthRoles(ctx context.Context, roleContext string) ([]AuthRole, error) {
	params := url.Values{}
	params.Set("context", roleContext)

	var listing struct {
		Results []AuthRole `json:"results"`
	}
	if err := c.getCollection(ctx, "/auth_roles", params, &listing); err != nil {
		return nil, err
	}
	return listing.Results, nil
}

// ListProjectTransfers returns the transfers associated with a project.
func (c *Client) ListProjectTransfers(ctx context.Context, projectID string) ([]Transfer, error) {
	var listing struct {
		Results []Transfer `json:"results"`
	}
	suffix := "/projects/" + projectID + "/transfers"
	if err := c.getCollection(ctx, suffix, url.Values{}, &listing); err != nil {
		return nil, err
	}
	return listing.Results, nil
}

// CreateProjectTransfer initiates handing a project off to the given users.
func (c *Client) CreateProjectTransfer(ctx context.Context, projectID string,
	toUserIDs []string) (*Transfer, error) {

	data := url.Values{}
	for _, userID := range toUserIDs {
		data.Add("to_users[][id]", userID)
	}

	var transfer Transfer
	suffix := "/projects/" + projectID + "/transfers"
	resp, err := c.do(ctx, http.MethodPost, suffix, data, contentTypeForm, false)
	if err != nil {
		return nil, err
	}
	if err := decode(resp.Body(), &transfer, suffix); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// GetProjectTransfer fetches one transfer's details.
func (c *Client) GetProjectTransfer(ctx context.Context, transferID string) (*Transfer, error) {
	var transfer Transfer
	if err := c.getSingleItem(ctx, "/project_transfers/"+transferID, url.Values{}, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// AcceptProjectTransfer accepts a pending transfer. statusComment may be
// empty.
func (c *Client) AcceptProjectTransfer(ctx context.Context, transferID,
	statusComment string) (*Transfer, error) {
	return c.processProjectTransfer(ctx, "accept", transferID, statusComment)
}

// RejectProjectTransfer rejects a pending transfer. statusComment may be
// empty.
func (c *Client) RejectProjectTransfer(ctx context.Context, transferID,
	statusComment string) (*Transfer, error) {
	return c.processProjectTransfer(ctx, "reject", transferID, statusComment)
}

// CancelProjectTransfer cancels a transfer the current user initiated.
func (c *Client) CancelProjectTransfer(ctx context.Context, transferID,
	statusComment string) (*Transfer, error) {
	return c.processProjectTransfer(ctx, "cancel", transferID, statusComment)
}

func (c *Client) processProjectTransfer(ctx context.Context, action, transferID,
	statusComment string) (*Transfer, error) {

	data := url.Values{}
	if statusComment != "" {
		data.Set("status_comment", statusComment)
	}

	var transfer Transfer
	suffix := "/project_transfers/" + transferID + "/" + action
	if err := c.put(ctx, suffix, data, contentTypeForm, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListActivities returns every provenance activity for the current user.
func (c *Client) ListActivities(ctx context.Context) ([]Activity, error) {
	var listing struct {
		Results []Activity `json:"results"`
	}
	if err := c.getCollection(ctx, "/activities", url.Values{}, &listing); err != nil {
		return nil, err
	}
	return listing.Results, nil
}

// CreateActivity records a new provenance activity. Everything but the name
// is optional.
func (c *Client) CreateActivity(ctx context.Context, name, description,
	startedOn, endedOn string) (*Activity, error) {

	data := Activity{
		Name:        name,
		Description: description,
		StartedOn:   startedOn,
		EndedOn:     endedOn,
	}
	var activity Activity
	if err := c.post(ctx, "/activities", data, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetActivity fetches one activity's details.
func (c *Client) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	var activity Activity
	if err := c.getSingleItem(ctx, "/activities/"+activityID, url.Values{}, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivity replaces an activity's metadata.
func (c *Client) UpdateActivity(ctx context.Context, activityID, name, description,
	startedOn, endedOn string) (*Activity, error) {

	data := Activity{
		Name:        name,
		Description: description,
		StartedOn:   startedOn,
		EndedOn:     endedOn,
	}
	var activity Activity
	if err := c.put(ctx, "/activities/"+activityID, data, contentTypeJSON, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// DeleteActivity deletes a provenance activity.
func (c *Client) DeleteActivity(ctx context.Context, activityID string) error {
	return c.delete(ctx, "/activities/"+activityID, url.Values{})
}
