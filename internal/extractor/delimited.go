package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLines is how many leading lines are inspected when guessing the delimiter.
const sniffLines = 20

var candidateDelimiters = []rune{',', '\t', ';', '|'}

// ExtractDelimited decodes CSV or delimited text. The delimiter is detected
// from the leading lines.
func ExtractDelimited(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read delimited row: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// sniffDelimiter picks the candidate that splits the leading lines into the most
// consistent field count greater than one. Comma wins ties and the no-signal case.
func sniffDelimiter(text string) rune {
	lines := leadingLines(text, sniffLines)

	best := ','
	bestScore := 0
	for _, d := range candidateDelimiters {
		counts := make(map[int]int)
		for _, line := range lines {
			if n := strings.Count(line, string(d)); n > 0 {
				counts[n]++
			}
		}
		score := 0
		for _, c := range counts {
			if c > score {
				score = c
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func leadingLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

// decodeText honours a UTF-8 or UTF-16 byte order mark. Without one, valid
// UTF-8 is kept as is and anything else is read as Windows-1252, which maps
// every byte.
func decodeText(data []byte) (string, error) {
	fallback := encoding.Nop.NewDecoder()
	if !utf8.Valid(data) {
		fallback = charmap.Windows1252.NewDecoder()
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(decoded), nil
}
