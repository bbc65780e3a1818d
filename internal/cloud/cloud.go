// Package cloud prepares word counts for the word-cloud pane.
package cloud

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/wordcloud/internal/wordcount"
)

const (
	// Limit is the maximum number of words handed to the renderer.
	Limit = 100

	DefaultHeight = 400
	MaxWeight     = 5

	widthDivisor = 2.5
)

// Params is the contract with the cloud renderer.
type Params struct {
	Width        int
	Height       int
	ShowControls bool
	WordCounts   []wordcount.WordCount
}

// ParamsFor derives render parameters from the current viewport width.
func ParamsFor(viewportWidth int, wc []wordcount.WordCount) Params {
	return ParamsWithLimit(viewportWidth, wc, Limit)
}

// ParamsWithLimit is ParamsFor with a smaller word limit. Limits above Limit
// are capped.
func ParamsWithLimit(viewportWidth int, wc []wordcount.WordCount, limit int) Params {
	limit = min(limit, Limit)
	width := 0
	if viewportWidth > 0 {
		width = int(float64(viewportWidth) / widthDivisor)
	}
	return Params{
		Width:        width,
		Height:       DefaultHeight,
		ShowControls: true,
		WordCounts:   Truncate(wc, limit),
	}
}

// Truncate returns a copy of the first min(len(wc), n) entries in their
// original order.
func Truncate(wc []wordcount.WordCount, n int) []wordcount.WordCount {
	if n < 0 {
		n = 0
	}
	if len(wc) < n {
		n = len(wc)
	}
	out := make([]wordcount.WordCount, n)
	copy(out, wc[:n])
	return out
}

// Token is a placed word.
type Token struct {
	Word   string
	Count  int
	Weight int // 1..MaxWeight relative to the most frequent word
}

// Layout flows the words into lines no wider than p.Width display cells,
// keeping input order. At most p.Height lines are returned. A word wider than
// the line gets a line of its own.
func Layout(p Params) [][]Token {
	width := p.Width
	if width <= 0 {
		width = 1
	}

	peak := 0
	for _, wc := range p.WordCounts {
		peak = max(peak, wc.Count)
	}

	var (
		lines [][]Token
		line  []Token
		used  int
	)
	for _, wc := range p.WordCounts {
		word := strings.TrimSpace(wc.Word)
		if word == "" {
			continue
		}
		w := lipgloss.Width(word)
		if len(line) > 0 && used+1+w > width {
			lines = append(lines, line)
			line, used = nil, 0
		}
		if len(line) > 0 {
			used++
		}
		line = append(line, Token{Word: word, Count: wc.Count, Weight: weight(wc.Count, peak)})
		used += w
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}

	if p.Height > 0 && len(lines) > p.Height {
		lines = lines[:p.Height]
	}
	return lines
}

func weight(count, peak int) int {
	if count <= 0 || peak <= 0 {
		return 1
	}
	return 1 + int(math.Round(float64(count)/float64(peak)*float64(MaxWeight-1)))
}
