package core

// error_messages.go maps internal errors to user-facing messages with codes
// users can quote to support. The web layer logs the technical error and
// returns only the mapped message.
//
// Categories:
//
//	CSV001  - Upload contained no valid rows
//	LIST001 - List not found (user-actionable, distinct from backend trouble)
//	UPL001  - Too many concurrent uploads
//	UPL002  - Request cancelled or timed out
//	DB001   - Backend failure (generic, retryable)

import (
	"context"
	"errors"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/csvparse"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/store"
)

// UserMessage is a user-friendly rendering of an internal error.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts an internal error into a UserMessage. Unrecognized
// errors map to the generic backend failure so internal details never
// leak to clients.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, csvparse.ErrNoValidRows):
		return UserMessage{
			Code:    "CSV001",
			Message: "No valid card data found in the CSV file.",
			Action:  "Check that the file has 'Scryfall ID' and 'Name' columns with data rows.",
		}
	case errors.Is(err, store.ErrNotFound):
		return UserMessage{
			Code:    "LIST001",
			Message: "Card list not found or deleted.",
			Action:  "Check the link; the list may have been removed.",
		}
	case errors.Is(err, ErrTooManyUploads):
		return UserMessage{
			Code:    "UPL001",
			Message: "Too many uploads in progress.",
			Action:  "Please wait a moment and try again.",
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Code:    "UPL002",
			Message: "The request was cancelled or timed out.",
			Action:  "Please try again.",
		}
	default:
		return UserMessage{
			Code:    "DB001",
			Message: "An error occurred while processing your request.",
			Action:  "Please try again in a few moments.",
		}
	}
}
