// Package storage implements service.ObjectStorage on Cloud Storage and on
// the hosted backend's object store.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// objectName builds a unique object name inside folder with an extension
// matching contentType.
func objectName(folder, contentType string, now time.Time) string {
	name := fmt.Sprintf("%s/%s-%s", strings.Trim(folder, "/"), uuid.New().String(), now.Format("20060102150405"))

	switch contentType {
	case "image/jpeg", "image/jpg":
		name += ".jpg"
	case "image/png":
		name += ".png"
	case "image/gif":
		name += ".gif"
	case "image/webp":
		name += ".webp"
	default:
		name += ".bin"
	}
	return name
}
