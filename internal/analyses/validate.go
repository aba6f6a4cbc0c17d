package analyses

import "strings"

const maxFileSize = 10 * 1024 * 1024

// validTypes lists accepted upload MIME types. Matching is by subtype
// substring, so e.g. "application/pdf; charset=binary" still passes.
var validTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
	"image/webp",
}

// ValidationError marks a rejected upload; its message is shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateUpload checks the declared MIME type and size before any processing.
func ValidateUpload(mimeType string, size int64) error {
	ok := false
	for _, t := range validTypes {
		subtype := t[strings.Index(t, "/")+1:]
		if strings.Contains(mimeType, subtype) {
			ok = true
			break
		}
	}
	if !ok {
		return &ValidationError{Message: "Invalid file type. Please upload PDF, DOC, DOCX, or image."}
	}
	if size > maxFileSize {
		return &ValidationError{Message: "File too large. Maximum 10MB."}
	}
	return nil
}

// isImage reports whether the upload is a raster image rather than a document.
func isImage(mimeType string) bool {
	return strings.Contains(mimeType, "image")
}
