package downloadcache

import (
	"fmt"
	"strings"
	"time"
)

const artifactPrefix = "toshokan_"

// invalidFilenameChars are rejected across Windows, macOS, and Linux.
var invalidFilenameChars = []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}

// ArchiveFilename names a cached download archive:
// toshokan_{label}_{UTC-date}.cbz. The date pins the artifact so stale slices
// age out of the cache naturally.
func ArchiveFilename(label string, now time.Time) string {
	return fmt.Sprintf("%s%s_%s.cbz", artifactPrefix, sanitizeLabel(label), utcDate(now))
}

// DirName names an extraction directory: {label}_{UTC-date}.
func DirName(label string, now time.Time) string {
	return fmt.Sprintf("%s_%s", sanitizeLabel(label), utcDate(now))
}

func utcDate(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

func sanitizeLabel(label string) string {
	out := label
	for _, ch := range invalidFilenameChars {
		out = strings.ReplaceAll(out, ch, "_")
	}
	out = strings.TrimSpace(out)
	if out == "" {
		out = "download"
	}
	return out
}

func isArtifactName(name string) bool {
	return strings.HasPrefix(name, artifactPrefix)
}
