// Package picker selects exactly one route file for upload or prediction.
//
// A Picker either returns a SelectedFile, ErrCanceled when the user backed out,
// or an *Error describing why the file could not be used.
package picker

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"hikepredict/internal/common/fsutil"
	"hikepredict/pkg/types"
)

// Purpose says what the picked file will be used for.
type Purpose int

const (
	ForTraining Purpose = iota
	ForPrediction
)

func (p Purpose) String() string {
	if p == ForPrediction {
		return "prediction"
	}
	return "training"
}

// DefaultAccept lists GPX/XML-like types first and a wildcard fallback last,
// since many systems report GPX files as generic XML or octet streams.
var DefaultAccept = []string{"application/gpx+xml", "application/xml", "text/xml", "*/*"}

// ErrCanceled is returned when the user dismisses the picker. It is not a failure.
var ErrCanceled = errors.New("file selection canceled")

// Error reports a picker failure: permission denied, I/O error or a rejected type.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.Err }

// Picker resolves to one file, ErrCanceled, or an *Error.
type Picker interface {
	Pick(ctx context.Context, purpose Purpose, accept []string) (types.SelectedFile, error)
}

// Func adapts a function to the Picker interface.
type Func func(ctx context.Context, purpose Purpose, accept []string) (types.SelectedFile, error)

func (f Func) Pick(ctx context.Context, purpose Purpose, accept []string) (types.SelectedFile, error) {
	return f(ctx, purpose, accept)
}

// Path is a non-interactive picker that always resolves to one path. An empty
// path behaves like a canceled dialog.
type Path string

func (p Path) Pick(ctx context.Context, _ Purpose, accept []string) (types.SelectedFile, error) {
	if p == "" {
		return types.SelectedFile{}, ErrCanceled
	}
	if err := ctx.Err(); err != nil {
		return types.SelectedFile{}, &Error{Reason: err.Error(), Err: err}
	}
	return Describe(string(p), accept)
}

// Describe stats path, sniffs its content type and checks it against accept.
func Describe(path string, accept []string) (types.SelectedFile, error) {
	if len(accept) == 0 {
		accept = DefaultAccept
	}
	p, fi, err := fsutil.StatRegular(path)
	if err != nil {
		return types.SelectedFile{}, fileError(err)
	}
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return types.SelectedFile{}, fileError(err)
	}
	if !Match(accept, m) {
		return types.SelectedFile{}, &Error{Reason: "unsupported file type " + baseType(m.String())}
	}
	return types.SelectedFile{
		Name: filepath.Base(p),
		Size: fi.Size(),
		Path: p,
		MIME: baseType(m.String()),
	}, nil
}

func fileError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return &Error{Reason: "permission denied", Err: err}
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Reason: "file not found", Err: err}
	}
	return &Error{Reason: err.Error(), Err: err}
}
