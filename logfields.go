package pubfeed

import "log/slog"

// Canonical log field names shared by the generator, server and CLI.
const (
	KeyArtifact   = "artifact"
	KeyPostID     = "post_id"
	KeyPosts      = "posts"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

func logArtifact(name string) slog.Attr { return slog.String(KeyArtifact, name) }
func logPostID(id string) slog.Attr { return slog.String(KeyPostID, id) }
func logDurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func logError(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
