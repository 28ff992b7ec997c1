package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateUpload runs the validation gate over upload metadata. Checks run
// in a fixed order and short-circuit on the first failure: extension
// allow-set, then content type, then size ceiling. No decoding happens here.
func (p *Pipeline) ValidateUpload(u Upload) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(u.Filename), "."))
	if _, ok := p.allowedExts[ext]; !ok {
		return validationError{
			kind: kindUnsupportedFormat,
			msg:  fmt.Sprintf("unsupported file format %q; allowed: %s", ext, strings.Join(p.allowedList, ", ")),
		}
	}
	if u.ContentType == "" || !strings.HasPrefix(u.ContentType, "image/") {
		return validationError{
			kind: kindInvalidContentType,
			msg:  "invalid content type; please upload an image file",
		}
	}
	if u.Size > p.maxUploadSize {
		return validationError{
			kind: kindPayloadTooLarge,
			msg:  fmt.Sprintf("file too large; maximum size: %dMB", p.maxUploadSize>>20),
		}
	}
	return nil
}

// MaxUploadSize returns the configured upload size ceiling in bytes.
func (p *Pipeline) MaxUploadSize() int64 { return p.maxUploadSize }
