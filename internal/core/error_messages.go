package core

// # Error Codes Reference
//
// User-friendly error messages with codes for support reference. When users
// hit an error they can quote the code for faster diagnosis.
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Unknown field: A column was given a label outside the vocabulary
//	         Action: Pick one of the listed labels or leave the column blank
//	         Patterns: "unknown field"
//
//	MAP002 - Missing name: No column was labelled Name
//	         Action: Label the column holding recipient names as "Name"
//	         Patterns: `must contain "name"`
//
//	MAP003 - Incomplete address: Address columns do not form a full address
//	         Action: Add the missing address columns or clear the partial ones
//	         Patterns: "incomplete address"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Unreadable source: The file could not be opened or parsed
//	SRC002 - Unsupported source: The file type is not .csv, .tsv or .docx
//	SRC003 - File too large
//	SRC004 - Empty source: The file has no rows
//
// # Merge Errors (MRG001-MRG099)
//
//	MRG001 - Parse data first: A source is still pending or a side is missing
//	MRG002 - No destination: No output destination was given
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found
//	SES002 - Source not found
//	SES003 - Source already parsed
//	SES004 - Row index out of range
//
// # Template Errors (TPL001-TPL099)
//
//	TPL001 - Template not found
//	TPL002 - Template name taken
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request timeout: "context deadline exceeded"
//	REQ002 - Request cancelled: "context canceled"
//	REQ003 - Bad request: malformed JSON or form input
//	REQ004 - Too many uploads: all upload slots are busy
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application log for the
// technical error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Column mapping (MAP001-MAP003)
	// =========================================================================
	{
		pattern: "unknown field",
		msg: UserMessage{
			Message: "A column has a label that is not recognised",
			Action:  "Use one of: " + strings.Join(Labels(), ", ") + ", or leave the column blank",
			Code:    "MAP001",
		},
	},
	{
		pattern: `must contain "name"`,
		msg: UserMessage{
			Message: "No column is labelled Name",
			Action:  "Label the column holding recipient names as \"Name\"",
			Code:    "MAP002",
		},
	},
	{
		pattern: "incomplete address",
		msg: UserMessage{
			Message: "The address columns do not make up a complete address",
			Action:  "Map Street Address or Address Line 1 together with City State Postal Code or City, State and Postal Code",
			Code:    "MAP003",
		},
	},

	// =========================================================================
	// Sources (SRC001-SRC004)
	// =========================================================================
	{
		pattern: "unreadable source",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file exists and is a valid CSV or Word document",
			Code:    "SRC001",
		},
	},
	{
		pattern: "unsupported source",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv, .tsv or .docx file",
			Code:    "SRC002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum size",
			Action:  "Split the file into smaller parts",
			Code:    "SRC003",
		},
	},
	{
		pattern: "empty source",
		msg: UserMessage{
			Message: "The file has no rows",
			Action:  "Upload a file that contains recipients",
			Code:    "SRC004",
		},
	},

	// =========================================================================
	// Merge (MRG001-MRG002)
	// =========================================================================
	{
		pattern: "parse data first",
		msg: UserMessage{
			Message: "Some data has not been parsed yet",
			Action:  "Parse one recipient list and one gift document before merging",
			Code:    "MRG001",
		},
	},
	{
		pattern: "need output destination",
		msg: UserMessage{
			Message: "No output destination was given",
			Action:  "Choose where the merged CSV should be written",
			Code:    "MRG002",
		},
	},

	// =========================================================================
	// Sessions (SES001-SES004)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "The session has expired or does not exist",
			Action:  "Start a new session",
			Code:    "SES001",
		},
	},
	{
		pattern: "source not found",
		msg: UserMessage{
			Message: "The file is not part of this session",
			Action:  "Refresh the file list and try again",
			Code:    "SES002",
		},
	},
	{
		pattern: "source already parsed",
		msg: UserMessage{
			Message: "This file has already been parsed",
			Action:  "Remove and re-add the file to change its mapping",
			Code:    "SES003",
		},
	},
	{
		pattern: "row index out of range",
		msg: UserMessage{
			Message: "A selected row does not exist",
			Action:  "Refresh the preview and select the rows again",
			Code:    "SES004",
		},
	},

	// =========================================================================
	// Templates (TPL001-TPL002)
	// =========================================================================
	{
		pattern: "template not found",
		msg: UserMessage{
			Message: "The mapping template does not exist",
			Action:  "Pick another template or create a new one",
			Code:    "TPL001",
		},
	},
	{
		pattern: "template already exists",
		msg: UserMessage{
			Message: "A mapping template with this name already exists",
			Action:  "Choose a different name",
			Code:    "TPL002",
		},
	},

	// =========================================================================
	// Requests (REQ001-REQ004)
	// =========================================================================
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "bad request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body and parameters",
			Code:    "REQ003",
		},
	},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "The server is busy with other uploads",
			Action:  "Wait a moment and upload again",
			Code:    "REQ004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
