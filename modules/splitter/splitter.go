// Package splitter breaks raw text into [document.Chunk] values with
// configurable chunk size, overlap, and split granularity. It is typically
// the first module of an ingestion chain, feeding an embedder.
package splitter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/grafo-ai/grafo/document"
)

// Level selects the boundary the splitter prefers to cut on. Oversized
// segments fall back a level: phrase and paragraph fall back to word, word
// falls back to char.
type Level string

const (
	LevelChar      Level = "char"
	LevelWord      Level = "word"
	LevelPhrase    Level = "phrase"
	LevelParagraph Level = "paragraph"
)

// paragraphPattern matches blank-line paragraph breaks in Unix, Windows,
// and bare-CR form.
var paragraphPattern = regexp.MustCompile(`\n\n+|\r\n\r\n+|\r\r+`)

// TextSplitter splits strings into chunks of at most maxChar characters
// (Unicode code points, not bytes). With overlap > 0, each chunk except the
// last is extended with the beginning of its successor, so no boundary
// context is lost between consecutive chunks.
type TextSplitter struct {
	maxChar         int
	overlap         int
	level           Level
	minOverlapWords int
}

// Option configures a TextSplitter.
type Option func(*TextSplitter)

// WithMaxChar sets the maximum characters per chunk. Default 5000.
func WithMaxChar(maxChar int) Option {
	return func(s *TextSplitter) {
		s.maxChar = maxChar
	}
}

// WithOverlap sets how many characters of the following chunk are appended
// to each chunk. Default 0 (no overlap).
func WithOverlap(overlap int) Option {
	return func(s *TextSplitter) {
		s.overlap = overlap
	}
}

// WithLevel sets the split granularity. Default [LevelChar].
func WithLevel(level Level) Option {
	return func(s *TextSplitter) {
		s.level = level
	}
}

// WithMinOverlapWords sets how many words the overlap region must contain
// before whole-word overlap is used; below the threshold the overlap is taken
// character by character. Default 1.
func WithMinOverlapWords(n int) Option {
	return func(s *TextSplitter) {
		s.minOverlapWords = n
	}
}

// New creates a TextSplitter. It returns an error when the configured level
// is not one of char, word, phrase, or paragraph.
func New(opts ...Option) (*TextSplitter, error) {
	s := &TextSplitter{
		maxChar:         5000,
		overlap:         0,
		level:           LevelChar,
		minOverlapWords: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch s.level {
	case LevelChar, LevelWord, LevelPhrase, LevelParagraph:
	default:
		return nil, fmt.Errorf("splitter: invalid split level %q, must be one of: char, word, phrase, paragraph", s.level)
	}
	return s, nil
}

// Run implements the pipeline module contract: input must be a string, the
// result is []document.Chunk.
func (s *TextSplitter) Run(_ context.Context, input any) (any, error) {
	text, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("splitter: expected string input, got %T", input)
	}
	return s.Split(text), nil
}

// Split splits text into chunks. Empty input yields no chunks; input that
// already fits maxChar yields a single chunk.
func (s *TextSplitter) Split(text string) []document.Chunk {
	length := utf8.RuneCountInString(text)
	if length == 0 {
		return []document.Chunk{}
	}
	if length <= s.maxChar {
		return []document.Chunk{document.NewChunk(text)}
	}

	if s.level == LevelChar {
		return s.splitChar(text)
	}
	return s.splitWithDelimiter(text, s.level, false)
}

// step is how far the window advances between chunks. Overlap shrinks the
// step so consecutive chunks share text, but never below 1 so the splitter
// always makes progress.
func (s *TextSplitter) step() int {
	overlap := s.overlap
	if overlap < 0 {
		overlap = 0
	}
	step := s.maxChar - overlap
	if step < 1 {
		step = 1
	}
	return step
}

// splitChar slices text into fixed-size windows of maxChar runes.
func (s *TextSplitter) splitChar(text string) []document.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return []document.Chunk{}
	}
	if len(runes) <= s.maxChar {
		return []document.Chunk{document.NewChunk(text)}
	}

	step := s.step()
	chunks := []document.Chunk{}
	for start := 0; start < len(runes); start += step {
		end := start + s.maxChar
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, document.NewChunk(string(runes[start:end])))
		if end >= len(runes) {
			break
		}
	}
	return chunks
}

// splitWithDelimiter splits text at the level's boundaries and packs the
// resulting segments into chunks. Segments are joined with single spaces
// until the next segment would push the chunk past the step limit; a segment
// that alone exceeds the limit is handed to the next level down. Overlap is
// applied once over the final chunk list, including overflow chunks, unless
// skipOverlap is set (the recursive overflow calls set it so overlap is only
// applied by the outermost call).
func (s *TextSplitter) splitWithDelimiter(text string, level Level, skipOverlap bool) []document.Chunk {
	segments := make([]string, 0)
	for _, segment := range splitSegments(text, level) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) == 0 {
		return []document.Chunk{}
	}

	step := s.step()
	chunks := []document.Chunk{}
	current := ""

	for _, segment := range segments {
		test := segment
		if current != "" {
			test = current + " " + segment
		}
		if utf8.RuneCountInString(test) <= step {
			current = test
			continue
		}

		if current != "" {
			chunks = append(chunks, document.NewChunk(current))
		}

		if utf8.RuneCountInString(segment) <= step {
			current = segment
			continue
		}

		chunks = append(chunks, s.handleOverflow(segment, level)...)
		current = ""
	}

	if current != "" {
		chunks = append(chunks, document.NewChunk(current))
	}

	if !skipOverlap && s.overlap > 0 && len(chunks) > 1 {
		chunks = s.applyOverlap(chunks)
	}
	return chunks
}

// handleOverflow splits a segment that exceeds the step limit at the next
// level down: word for phrase and paragraph segments, char for single words.
func (s *TextSplitter) handleOverflow(segment string, level Level) []document.Chunk {
	if level != LevelWord {
		return s.splitWithDelimiter(segment, LevelWord, true)
	}
	return s.splitChar(segment)
}

// applyOverlap extends every chunk except the last with the beginning of its
// successor, up to the space left under maxChar (minus one for the joining
// space). The last chunk is returned unchanged.
func (s *TextSplitter) applyOverlap(chunks []document.Chunk) []document.Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	overlapped := make([]document.Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			overlapped = append(overlapped, chunk)
			continue
		}

		next := chunks[i+1]
		available := s.maxChar - utf8.RuneCountInString(chunk.Text) - 1
		if available < 0 {
			available = 0
		}
		overlapText := s.startingText(next.Text, available)

		combined := document.NewChunk(chunk.Text + " " + overlapText)
		combined.Metadata = chunk.Metadata
		overlapped = append(overlapped, combined)
	}
	return overlapped
}

// startingText extracts the overlap prefix of text, at most maxRunes runes.
// When the prefix holds more than minOverlapWords words, it is trimmed back
// to whole words; otherwise the raw character prefix is used as-is.
func (s *TextSplitter) startingText(text string, maxRunes int) string {
	runes := []rune(text)
	end := maxRunes
	if end > len(runes) {
		end = len(runes)
	}
	head := string(runes[:end])

	if len(splitWhitespace(head)) <= s.minOverlapWords {
		return head
	}

	words := splitWhitespace(text)
	candidate := ""
	for pos := 0; pos < len(words); pos++ {
		joined := strings.Join(words[:pos], " ")
		if utf8.RuneCountInString(joined) > maxRunes {
			break
		}
		candidate = joined
	}
	return candidate
}

// splitSegments splits text at the boundaries of the given level. The
// delimiters themselves are discarded.
func splitSegments(text string, level Level) []string {
	switch level {
	case LevelPhrase:
		return splitPhrases(text)
	case LevelParagraph:
		return paragraphPattern.Split(text, -1)
	default:
		return splitWhitespace(text)
	}
}

// splitPhrases splits after sentence-ending punctuation followed by
// whitespace, discarding the whitespace run.
func splitPhrases(text string) []string {
	runes := []rune(text)
	segments := []string{}
	start := 0
	i := 0
	for i < len(runes) {
		if i > 0 && unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			segments = append(segments, string(runes[start:i]))
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	segments = append(segments, string(runes[start:]))
	return segments
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitWhitespace splits text on runs of whitespace. A run at the start or
// end of the text produces an empty element, so callers that count words see
// partial boundary words the same way they would mid-text.
func splitWhitespace(text string) []string {
	runes := []rune(text)
	segments := []string{}
	start := 0
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			segments = append(segments, string(runes[start:i]))
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	segments = append(segments, string(runes[start:]))
	return segments
}
