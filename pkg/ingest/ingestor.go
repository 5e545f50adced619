// Package ingest turns an uploaded file into a single bounded text blob that
// can be injected into a chat prompt as grounding context.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"legal-assistant-be/internal/constant"
)

const MaxChars = constant.IngestMaxChars

type ErrorKind string

const (
	KindLegacyFormat  ErrorKind = "legacy_format"
	KindUnsupported   ErrorKind = "unsupported"
	KindUnreadable    ErrorKind = "unreadable"
	KindEmptyWorkbook ErrorKind = "empty_workbook"
	KindParse         ErrorKind = "parse"
)

// Error is returned for every rejected upload. Message is user-facing.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

type Document struct {
	FileName  string
	Extension string
	Text      string
	Truncated bool
	// Length in code points before truncation.
	OriginalLength int
}

// Warning is the non-fatal notice shown when the text was cut, "" otherwise.
func (d *Document) Warning() string {
	if !d.Truncated {
		return ""
	}
	return TruncationWarning(utf8.RuneCountInString(d.Text))
}

type Option func(*Ingestor)

func WithMaxChars(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.maxChars = n
		}
	}
}

type Ingestor struct {
	maxChars int
}

func New(opts ...Option) *Ingestor {
	i := &Ingestor{maxChars: MaxChars}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Extension returns the lower-cased text after the last dot, or the whole
// lower-cased name when there is no dot.
func Extension(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		return strings.ToLower(fileName[idx+1:])
	}
	return strings.ToLower(fileName)
}

func (i *Ingestor) Ingest(ctx context.Context, fileName string, r io.Reader) (*Document, error) {
	ext := Extension(fileName)

	var extract func([]byte) (string, error)
	switch ext {
	case "txt", "csv", "json":
		extract = decodeText
	case "docx":
		extract = extractDocx
	case "xlsx", "xls":
		extract = extractFirstSheet
	case "doc":
		return nil, &Error{Kind: KindLegacyFormat, Message: constant.IngestLegacyDocFormat}
	default:
		return nil, &Error{Kind: KindUnsupported, Message: fmt.Sprintf(constant.IngestUnsupportedFormat, ext)}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindUnreadable, Message: constant.IngestUnreadable, Err: err}
	}
	if len(data) == 0 {
		return nil, &Error{Kind: KindUnreadable, Message: constant.IngestUnreadable}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := extract(data)
	if err != nil {
		var ingestErr *Error
		if errors.As(err, &ingestErr) {
			return nil, ingestErr
		}
		return nil, &Error{Kind: KindParse, Message: constant.IngestProcessingFailed, Err: err}
	}

	doc := &Document{
		FileName:       fileName,
		Extension:      ext,
		Text:           text,
		OriginalLength: utf8.RuneCountInString(text),
	}
	if doc.OriginalLength > i.maxChars {
		doc.Text = truncateRunes(text, i.maxChars)
		doc.Truncated = true
	}

	return doc, nil
}

// TruncationWarning formats the limit with Egyptian Arabic digit grouping.
func TruncationWarning(limit int) string {
	p := message.NewPrinter(language.MustParse(constant.IngestDisplayLocale))
	return fmt.Sprintf(constant.IngestTruncatedFormat, p.Sprintf("%d", limit))
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(data), "�"), nil
}

func truncateRunes(s string, n int) string {
	count := 0
	for idx := range s {
		if count == n {
			return s[:idx]
		}
		count++
	}
	return s
}
