package controllers

// DownloadRequest starts a fetch-and-extract job for a catalog entry.
// DownloadDir, when set, overrides the persisted destination setting.
type DownloadRequest struct {
	ID          int64  `json:"id"`
	DownloadDir string `json:"download_dir,omitempty"`
}

type DownloadResponse struct {
	JobID string `json:"job_id"`
}

type DownloadDirResponse struct {
	Path string `json:"path"`
}

type SetDownloadDirRequest struct {
	Path string `json:"path"`
}

type StatusResponse struct {
	Online bool `json:"online"`
}
