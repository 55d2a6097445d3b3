package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"unicode/utf8"
)

const (
	// CharWidth approximates the advance of one character at FontSize.
	CharWidth = 6.6
	FontSize  = 12.0
	minChars  = 4
)

// TextWidth estimates the rendered width of s at the default font size.
func TextWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * CharWidth
}

// Truncate shortens s so it fits into width, ending with "..".
func Truncate(s string, width float64) string {
	maxChars := max(minChars, int(width/CharWidth))
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars-2]) + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WrapHighlight wraps fn's output in a group carrying the highlight class.
func WrapHighlight(buf *bytes.Buffer, on bool, fn func()) {
	if on {
		buf.WriteString(`  <g class="focus">` + "\n")
	}
	fn()
	if on {
		buf.WriteString("  </g>\n")
	}
}

func fmtPoints(pts []Point) string {
	var b bytes.Buffer
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", p.X, p.Y)
	}
	return b.String()
}
