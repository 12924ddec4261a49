package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// streamTag is the closed set of line tags in the gateway's streaming
// protocol. Unknown tags are no-ops.
type streamTag byte

const (
	tagText  streamTag = '0' // JSON string fragment of assistant text
	tagEnd   streamTag = 'e' // stream completion event
	tagDone  streamTag = 'd' // stream completion event
	tagOther streamTag = 0
)

func parseTag(line string) (streamTag, string) {
	if len(line) < 2 || line[1] != ':' {
		return tagOther, ""
	}
	switch streamTag(line[0]) {
	case tagText:
		return tagText, line[2:]
	case tagEnd:
		return tagEnd, line[2:]
	case tagDone:
		return tagDone, line[2:]
	}
	return tagOther, ""
}

// StreamDecoder incrementally reconstructs cleaned assistant text from a
// line-tagged byte stream. Chunks may split lines at arbitrary byte
// boundaries; partial lines are buffered until their newline arrives.
type StreamDecoder struct {
	raw     strings.Builder
	partial string
	done    bool
}

// NewStreamDecoder creates a decoder for one response stream.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Feed consumes one chunk and returns the full accumulated cleaned text so
// far. The caller always overwrites its message content with the result
// rather than appending.
func (d *StreamDecoder) Feed(chunk []byte) string {
	if d.done {
		return CleanText(d.raw.String())
	}

	data := d.partial + string(chunk)
	lines := strings.Split(data, "\n")
	d.partial = lines[len(lines)-1]

	for _, line := range lines[:len(lines)-1] {
		if d.consumeLine(line) {
			break
		}
	}

	return CleanText(d.raw.String())
}

// Flush processes a trailing unterminated line, for streams that end
// without a final newline or completion event.
func (d *StreamDecoder) Flush() string {
	if !d.done && d.partial != "" {
		d.consumeLine(d.partial)
		d.partial = ""
	}
	return CleanText(d.raw.String())
}

// Done reports whether a completion event has been seen.
func (d *StreamDecoder) Done() bool {
	return d.done
}

// consumeLine applies one protocol line; it reports true when the stream
// has completed and remaining input should be discarded.
func (d *StreamDecoder) consumeLine(line string) bool {
	tag, payload := parseTag(line)
	switch tag {
	case tagText:
		d.raw.WriteString(unescapeFragment(payload))
	case tagEnd, tagDone:
		d.done = true
		return true
	}
	return false
}

// unescapeFragment decodes a JSON string literal fragment. Payloads that
// are not well-formed literals fall back to bare quote stripping so a
// malformed line degrades instead of vanishing.
func unescapeFragment(payload string) string {
	if s, err := strconv.Unquote(payload); err == nil {
		return s
	}
	return strings.ReplaceAll(payload, `"`, "")
}

var (
	headingPattern  = regexp.MustCompile(`#{1,6} `)
	numberedPattern = regexp.MustCompile(`(\S)[ \t]+(\d{1,2}\.[ \t])`)
	bulletPattern   = regexp.MustCompile(`(\S)[ \t]+(\x{2022}[ \t])`)
	ordinalPattern  = regexp.MustCompile(`(\S)[ \t]+((?:First|Second|Third|Fourth|Fifth|Next|Then|Finally|Lastly),[ \t])`)
	listColonRun    = regexp.MustCompile(`:[ \t]+(\d{1,2}\.[ \t])`)
	newlineRun      = regexp.MustCompile(`\n{3,}`)
)

// CleanText is the best-effort beautification applied to the raw
// accumulation on every chunk: markdown control characters are removed
// and list-like structures get line breaks. Applying it to its own output
// changes nothing.
func CleanText(s string) string {
	// Literal backslash-n sequences survive only in fragments that failed
	// strict unescaping; turn them into real line breaks.
	s = strings.ReplaceAll(s, `\n`, "\n")

	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")
	s = headingPattern.ReplaceAllString(s, "")

	s = listColonRun.ReplaceAllString(s, ":\n\n$1")
	s = numberedPattern.ReplaceAllString(s, "$1\n\n$2")
	s = bulletPattern.ReplaceAllString(s, "$1\n\n$2")
	s = ordinalPattern.ReplaceAllString(s, "$1\n\n$2")

	s = newlineRun.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
