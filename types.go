package goDrive

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ferndrop/goDrive/session"
)

// UserProfile is the authenticated account profile returned by the backend.
type UserProfile = session.User

// Session is the client session snapshot exposed to callers.
type Session = session.Session

// Credentials carries a login attempt. It is transient by contract: consumed
// by [Client.Login] and never written to the session store.
//
// Credentials instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Credentials struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LoginID, validation.Required, validation.Length(1, 254)),
		validation.Field(&c.Password, validation.Required, validation.Length(1, 512)),
	)
}

// Folder is a folder record as returned by the storage backend.
//
// Folder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Folder struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"folderId,omitempty"`
}

type loginResponse struct {
	AccessToken string        `json:"accessToken"`
	User        *session.User `json:"user"`
}

type profileResponse struct {
	User *session.User `json:"user"`
}

type folderResponse struct {
	Folder Folder `json:"folder"`
}

type folderListResponse struct {
	Folders []Folder `json:"folders"`
}

type createFolderRequest struct {
	Name     string `json:"name"`
	FolderID string `json:"folderId,omitempty"`
}

type renameFolderRequest struct {
	FolderID string `json:"folderId"`
	Name     string `json:"name"`
}
