package main

import (
	"errors"

	"github.com/minhyannv/cogni/pkg/completion"
	"github.com/minhyannv/cogni/pkg/input"
	"github.com/minhyannv/cogni/pkg/render"
)

// Process exit statuses. Each failure class gets its own code.
const (
	exitOK            = 0
	exitUsage         = 2
	exitNoContent     = 3
	exitConflict      = 4
	exitInputRead     = 5
	exitEncode        = 6
	exitTimeout       = 7
	exitTransport     = 8
	exitRemote        = 9
	exitDecode        = 10
	exitRender        = 11
	exitInternalError = 1
)

// exitCode maps err onto a status. Anything unclassified came from flag
// parsing or configuration and is a usage error.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var inErr *input.Error
	if errors.As(err, &inErr) {
		switch inErr.Kind {
		case input.KindNoContent:
			return exitNoContent
		case input.KindConflictingSource:
			return exitConflict
		case input.KindRead:
			return exitInputRead
		case input.KindInvalid:
			return exitUsage
		}
		return exitInternalError
	}

	if errors.Is(err, completion.ErrEmptyConversation) || errors.Is(err, completion.ErrUnknownRole) {
		return exitEncode
	}

	var cErr *completion.Error
	if errors.As(err, &cErr) {
		switch cErr.Kind {
		case completion.KindTimeout:
			return exitTimeout
		case completion.KindTransport:
			return exitTransport
		case completion.KindRemoteRejected:
			return exitRemote
		case completion.KindDecode:
			return exitDecode
		}
		return exitInternalError
	}

	var rErr *render.Error
	if errors.As(err, &rErr) {
		return exitRender
	}
	return exitUsage
}

// isBrokenPipe reports whether err is the reader of stdout going away.
func isBrokenPipe(err error) bool {
	var rErr *render.Error
	return errors.As(err, &rErr) && rErr.BrokenPipe
}
