// Package attachment validates receipt files selected for a new bill.
package attachment

import (
	"path/filepath"
	"strings"

	"github.com/billedhq/expense-client/internal/domain/entity"
)

// RejectionMessage is the fixed user-facing message shown when a selected
// file has a disallowed format. The wording is part of the form contract.
const RejectionMessage = "Veuillez selectionner une image au format jpg, jpeg ou png."

// allowedExtensions holds the receipt formats accepted by the form.
// The extension is the authoritative check; MIME type is ignored.
var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases an extension and trims the leading dot
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtensionOf infers the extension of a file name, normalized.
// Names without an extension yield the empty string.
func ExtensionOf(fileName string) string {
	return NormalizeExt(filepath.Ext(fileName))
}

// Validator decides whether a selected file may be attached to a bill
type Validator struct{}

// NewValidator creates a new attachment validator
func NewValidator() *Validator {
	return &Validator{}
}

// IsAcceptable returns true if the candidate's extension is one of
// jpg, jpeg or png (case-insensitive). Files without an extension are
// rejected regardless of their declared content type.
func (v *Validator) IsAcceptable(candidate entity.AttachmentCandidate) bool {
	ext := candidate.Extension
	if ext == "" {
		ext = ExtensionOf(candidate.FileName)
	}
	_, ok := allowedExtensions[NormalizeExt(ext)]
	return ok
}
