package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var fileNameRegexp = regexp.MustCompile(`[^a-z0-9_.-]+`)

const maxFileNameLength = 255

// ReportFileName builds a filesystem-safe report file name of the form
// "{owner}-{repo}_{kind}_{timestamp}.{ext}".
func ReportFileName(repoFullName, kind string, at time.Time, ext string) string {
	safeRepo := strings.ToLower(strings.ReplaceAll(repoFullName, "/", "-"))
	safeRepo = fileNameRegexp.ReplaceAllString(safeRepo, "")

	name := fmt.Sprintf("%s_%s_%s.%s", safeRepo, kind, at.Format("20060102-150405"), ext)
	if len(name) > maxFileNameLength {
		name = name[:maxFileNameLength]
	}
	return name
}
