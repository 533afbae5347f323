package menu

import "errors"

var (
	// ErrNotFound is returned when an update references an unknown item id.
	ErrNotFound = errors.New("menu item not found")

	// ErrBackendUnavailable covers storage or network failures in a repository.
	ErrBackendUnavailable = errors.New("menu backend unavailable")

	// ErrMalformed means a persisted snapshot failed to parse. It is
	// handled exactly like an unavailable backend: fall back, don't crash.
	ErrMalformed = errors.New("persisted menu data is malformed")
)

// SaveResult reports the outcome of a write. Success covers the local
// leg; Synced tells the caller whether the shared backend also took the
// write, so the admin UI can show "saved locally, sync pending" instead
// of losing data silently.
type SaveResult struct {
	Success bool   `json:"success"`
	Synced  bool   `json:"synced"`
	Message string `json:"message"`
}
