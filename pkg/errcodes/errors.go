package errcodes

import (
	"errors"
	"fmt"
)

// Kind classifies an archive failure. Policies attached to each kind are
// enforced by the archive service: most kinds degrade to an empty return plus a
// media error report, range errors are never clamped (page selection fails and
// the operation returns its empty value after a report), and extraction
// failures propagate so callers can abort the surrounding task.
type Kind string

const (
	// KindNotAnArchive means the path exists but its content is not a readable archive.
	KindNotAnArchive Kind = "not_an_archive"
	// KindUnsupported means every backend refused the file.
	KindUnsupported Kind = "unsupported"
	// KindCorrupt means a backend failed while reading entries or streams.
	KindCorrupt Kind = "corrupt"
	// KindIo means an operating-system level read or write failed.
	KindIo Kind = "io"
	// KindEntryMissing means an expected entry (explicit cover, sidecar) is absent.
	KindEntryMissing Kind = "entry_missing"
	// KindRangeOutOfBounds means a page range exceeds the filtered image list.
	KindRangeOutOfBounds Kind = "range_out_of_bounds"
	// KindMalformedRange means a page-range string failed to parse.
	KindMalformedRange Kind = "malformed_range"
	// KindMalformedSidecar means ComicInfo.xml failed to parse.
	KindMalformedSidecar Kind = "malformed_sidecar"
	// KindExtractFailed means extraction to disk failed partway.
	KindExtractFailed Kind = "extract_failed"
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (err *Error) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("%s: %v", err.Message, err.Cause)
	}
	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Cause
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.Kind = err.Kind
	te.Message = err.Message
	te.Cause = err.Cause
	return true
}

// Is matches by kind only, so sentinel comparisons like
// errors.Is(err, errcodes.RangeOutOfBounds("")) work regardless of message.
func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.Kind == err.Kind
}

func NotAnArchive(path string) error {
	return &Error{KindNotAnArchive, path + " is not an archive.", nil}
}

func Unsupported(path string) error {
	return &Error{KindUnsupported, "no backend can open " + path + ".", nil}
}

func Corrupt(path string, cause error) error {
	return &Error{KindCorrupt, path + " is corrupt or truncated.", cause}
}

func Io(path string, cause error) error {
	return &Error{KindIo, "i/o failure reading " + path + ".", cause}
}

func EntryMissing(name string) error {
	return &Error{KindEntryMissing, "entry " + name + " not found in archive.", nil}
}

func RangeOutOfBounds(detail string) error {
	return &Error{KindRangeOutOfBounds, "page range exceeds the image list. " + detail, nil}
}

func MalformedRange(input string) error {
	return &Error{KindMalformedRange, "malformed page range " + fmt.Sprintf("%q", input) + ".", nil}
}

func MalformedSidecar(cause error) error {
	return &Error{KindMalformedSidecar, "ComicInfo.xml failed to parse.", cause}
}

func ExtractFailed(path string, cause error) error {
	return &Error{KindExtractFailed, "extraction of " + path + " failed.", cause}
}

// KindOf returns the kind carried by err, or an empty kind for foreign errors.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
