package api

import (
	"fmt"
	"path/filepath"

	"github.com/ensigniasec/ascii-view/internal/validate"
)

// Column count limits accepted by the conversion service.
const (
	MinColumns     = 10
	MaxColumns     = 400
	DefaultColumns = 100
)

// invalidImageReply is the literal text the service returns in place of art
// when it cannot decode the upload.
const invalidImageReply = "Invalid image."

// ConvertRequest is one image upload with its target column count.
type ConvertRequest struct {
	Filename string `validate:"required"`
	Image    []byte `validate:"required,min=1"`
	Columns  int    `validate:"min=10,max=400"`
}

// NewConvertRequest validates the upload and column count.
func NewConvertRequest(filename string, image []byte, columns int) (ConvertRequest, error) {
	if filename != "" {
		filename = filepath.Base(filename)
	}
	req := ConvertRequest{Filename: filename, Image: image, Columns: columns}
	if err := validate.Struct(req); err != nil {
		return ConvertRequest{}, fmt.Errorf("%w: %v", ErrValidation, validate.FailedFields(err))
	}
	return req, nil
}

// ConvertResponse is the 200 body of POST /ascii/.
type ConvertResponse struct {
	ASCII string `json:"ascii"`
}

// ErrorBody is the JSON error envelope. The service uses {"error": "..."};
// proxies in front of it sometimes answer with {"detail": "..."}.
type ErrorBody struct {
	Err    string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Message returns whichever description the body carries.
func (b ErrorBody) Message() string {
	if b.Err != "" {
		return b.Err
	}
	return b.Detail
}

// ClampColumns bounds n to [MinColumns, MaxColumns].
func ClampColumns(n int) int {
	if n < MinColumns {
		return MinColumns
	}
	if n > MaxColumns {
		return MaxColumns
	}
	return n
}
