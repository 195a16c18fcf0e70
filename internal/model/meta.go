package model

// ReplayMeta describes where a replay came from. It travels alongside the
// decoded replay into storage.
type ReplayMeta struct {
	Source string `json:"source"`
	SHA256 string `json:"sha256"`
}
