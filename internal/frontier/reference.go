// Package frontier tracks discovered references through the crawl frontier:
// parsing stable references out of listing URLs, merging discovery cycles
// against the known-reference snapshot, and sampling balanced batches.
package frontier

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// ErrMalformedReference is returned when a URL yields no parseable
// identifying token. Such discoveries are dropped, never queued.
var ErrMalformedReference = errors.New("no parseable reference in url")

// ReferenceParser extracts source-specific identifiers from listing URLs.
// Reference formats differ per source, so each source registers its own
// parser; adding a source never touches the dedup pass logic.
type ReferenceParser interface {
	// ParseReference returns the stable per-source reference embedded in the
	// URL. Fails with ErrMalformedReference when no token is present.
	ParseReference(rawURL string) (string, error)

	// CorrelationToken returns the vehicle-identifying token used for
	// cross-source and within-source matching, or false when the URL
	// carries none. For most sources this is the reference itself.
	CorrelationToken(rawURL string) (string, bool)
}

// QueryParamParser extracts the reference from a query parameter, the
// aggregator's URL shape (e.g. ?cid=123456).
type QueryParamParser struct {
	Param string
}

// ParseReference implements ReferenceParser.
func (p QueryParamParser) ParseReference(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse reference: %w", ErrMalformedReference)
	}

	value := parsed.Query().Get(p.Param)
	if value == "" {
		return "", fmt.Errorf("parse reference: missing %s param: %w", p.Param, ErrMalformedReference)
	}

	return value, nil
}

// CorrelationToken implements ReferenceParser. The aggregator embeds the
// originating vehicle ID directly in the query parameter.
func (p QueryParamParser) CorrelationToken(rawURL string) (string, bool) {
	token, err := p.ParseReference(rawURL)
	if err != nil {
		return "", false
	}
	return token, true
}

// numericTokenPattern matches a run of at least five digits delimited by a
// path separator or key=value assignment, the shape dealer sites use.
var numericTokenPattern = regexp.MustCompile(`[/=](\d{5,})`)

// NumericTokenParser extracts the first long numeric token from the URL path
// or query, covering dealer URL shapes like /view/123456 and ?id=123456.
type NumericTokenParser struct{}

// ParseReference implements ReferenceParser.
func (NumericTokenParser) ParseReference(rawURL string) (string, error) {
	match := numericTokenPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", fmt.Errorf("parse reference: no numeric token: %w", ErrMalformedReference)
	}

	return match[1], nil
}

// CorrelationToken implements ReferenceParser.
func (NumericTokenParser) CorrelationToken(rawURL string) (string, bool) {
	token, err := NumericTokenParser{}.ParseReference(rawURL)
	if err != nil {
		return "", false
	}
	return token, true
}

// PathPatternParser extracts the reference using a custom regular expression
// with one capture group, for sources whose references are not plain numeric
// tokens (e.g. /marketplace/item/1234567890/).
type PathPatternParser struct {
	Pattern *regexp.Regexp
}

// NewPathPatternParser compiles the pattern and checks it captures a group.
func NewPathPatternParser(pattern string) (PathPatternParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return PathPatternParser{}, fmt.Errorf("invalid reference pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return PathPatternParser{}, errors.New("reference pattern needs one capture group")
	}
	return PathPatternParser{Pattern: re}, nil
}

// ParseReference implements ReferenceParser.
func (p PathPatternParser) ParseReference(rawURL string) (string, error) {
	match := p.Pattern.FindStringSubmatch(rawURL)
	if match == nil || len(match) < 2 {
		return "", fmt.Errorf("parse reference: pattern miss: %w", ErrMalformedReference)
	}

	return match[1], nil
}

// CorrelationToken implements ReferenceParser.
func (p PathPatternParser) CorrelationToken(rawURL string) (string, bool) {
	token, err := p.ParseReference(rawURL)
	if err != nil {
		return "", false
	}
	return token, true
}

// ParserRegistry maps source IDs to their reference parsers.
type ParserRegistry struct {
	parsers map[string]ReferenceParser
}

// NewParserRegistry creates an empty parser registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{parsers: make(map[string]ReferenceParser)}
}

// Register binds a parser to a source ID, replacing any previous binding.
func (r *ParserRegistry) Register(source string, parser ReferenceParser) {
	r.parsers[source] = parser
}

// Lookup returns the parser for a source.
func (r *ParserRegistry) Lookup(source string) (ReferenceParser, error) {
	parser, ok := r.parsers[source]
	if !ok {
		return nil, fmt.Errorf("no reference parser registered for source %q", source)
	}

	return parser, nil
}
