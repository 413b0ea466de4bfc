package laws

import (
	"strconv"
	"strings"
	"unicode"
)

// Collection names the document collection holding statutes.
const Collection = "laws"

// Law is a statute reference record.
type Law struct {
	ID          string `json:"id"`
	Paragraph   string `json:"paragraph"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Input carries the editable attributes of a statute.
type Input struct {
	Paragraph   string `json:"paragraph" validate:"required,max=32"`
	Category    string `json:"category" validate:"required,max=32"`
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"max=2000"`
}

// Less orders statutes by category, then by paragraph number.
func Less(a, b Law) bool {
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	na, sa := paragraphKey(a.Paragraph)
	nb, sb := paragraphKey(b.Paragraph)
	if na != nb {
		return na < nb
	}
	return sa < sb
}

// paragraphKey splits "§ 142a" into 142 and "a". Paragraphs without a
// number sort after numbered ones.
func paragraphKey(p string) (int, string) {
	start := strings.IndexFunc(p, unicode.IsDigit)
	if start < 0 {
		return int(^uint(0) >> 1), p
	}
	end := start
	for end < len(p) && p[end] >= '0' && p[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(p[start:end])
	if err != nil {
		return int(^uint(0) >> 1), p
	}
	return n, strings.TrimSpace(p[end:])
}
