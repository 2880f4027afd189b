package records

import (
	"context"
	"io"
	"strings"
)

// deckExtensions are the upload types accepted for pitch decks.
var deckExtensions = map[string]bool{
	"pdf": true, "pptx": true, "ppt": true,
	"png": true, "jpg": true, "jpeg": true,
}

// documentExtensions extends the deck set with spreadsheet/doc types for
// the data room.
var documentExtensions = map[string]bool{
	"pdf": true, "pptx": true, "ppt": true,
	"png": true, "jpg": true, "jpeg": true,
	"xlsx": true, "xls": true, "doc": true, "docx": true, "csv": true,
}

// textExtensions can be read back from the store as prompt context.
var textExtensions = map[string]bool{"csv": true, "txt": true}

// FileExtension returns the lowercase extension without the dot, "" when absent.
func FileExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

func DeckExtensionAllowed(ext string) bool     { return deckExtensions[ext] }
func DocumentExtensionAllowed(ext string) bool { return documentExtensions[ext] }

// ContentTypeFor maps an extension to a MIME type for storage metadata.
func ContentTypeFor(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case "ppt":
		return "application/vnd.ms-powerpoint"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "xls":
		return "application/vnd.ms-excel"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

const maxTextContext = 5000

// TextContext reads textual objects back from the store so the prompt can
// carry extracted content. Binary types return "" and rely on the file URL.
func TextContext(ctx context.Context, fs FileStore, key, ext string) string {
	if !textExtensions[ext] {
		return ""
	}
	rc, err := fs.Get(ctx, key)
	if err != nil {
		return ""
	}
	defer rc.Close()

	buf, err := io.ReadAll(io.LimitReader(rc, maxTextContext))
	if err != nil {
		return ""
	}
	return string(buf)
}
