package menu

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Tried in order; the last match of the first pattern yielding a positive
// price wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$₹€£¥₣₤₱₩]\s*(\d+(?:[.,]\d{1,2})?)`),
	regexp.MustCompile(`(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?:Rs\.?|USD|INR)\s*(\d+(?:[.,]\d{1,2})?)`),
	regexp.MustCompile(`(?i)(\d+)(?:\.\d{2})?\s*(?:only|/-)`),
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"appetizers", []string{"appetizer", "starter", "soup", "salad"}},
	{"mains", []string{"main", "entrée", "entree", "curry", "rice", "noodles", "pasta", "pizza", "burger"}},
	{"desserts", []string{"dessert", "sweet", "ice cream", "cake", "pastry"}},
	{"beverages", []string{"drink", "beverage", "coffee", "tea", "juice", "smoothie", "shake"}},
	{"sides", []string{"side", "bread", "fries", "chips"}},
}

var (
	trailingPunct = regexp.MustCompile(`[-:.…]+$`)
	numbering     = regexp.MustCompile(`^\d+\.?\s*`)
	dotLeaders    = regexp.MustCompile(`\.{2,}`)
	shoutedHeader = regexp.MustCompile(`^[A-Z\s]{20,}$`)
)

// ParseText reads "name ... price" lines. Short keyword lines without a
// price switch the current category; up to two following price-less lines
// become the description unless they are an upper-case header.
func ParseText(text string) []ExtractedItem {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	items := []ExtractedItem{}
	category := DefaultCategory
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if utf8.RuneCountInString(line) < 3 {
			continue
		}

		price, at, ok := findPrice(line)
		if !ok {
			if c, isHeader := header(line); isHeader {
				category = c
			}
			continue
		}

		name := strings.TrimSpace(line[:at])
		name = strings.TrimSpace(trailingPunct.ReplaceAllString(name, ""))
		name = numbering.ReplaceAllString(name, "")
		name = strings.TrimSpace(dotLeaders.ReplaceAllString(name, ""))
		if utf8.RuneCountInString(name) < 2 || shoutedHeader.MatchString(name) {
			continue
		}

		var desc []string
		for j := 1; j <= 2 && i+j < len(lines); j++ {
			next := lines[i+j]
			n := utf8.RuneCountInString(next)
			if _, _, hasPrice := findPrice(next); hasPrice || n <= 5 || n >= 200 {
				break
			}
			if _, isHeader := header(next); isHeader && strings.ToUpper(next) == next {
				break
			}
			desc = append(desc, next)
		}
		i += len(desc)

		items = append(items, ExtractedItem{
			Name:        truncate(name, 100),
			Description: truncate(strings.Join(desc, " "), 500),
			Price:       math.Round(price*100) / 100,
			Category:    category,
		})
	}
	return items
}

func findPrice(line string) (price float64, at int, ok bool) {
	for _, re := range pricePatterns {
		matches := re.FindAllStringSubmatchIndex(line, -1)
		if len(matches) == 0 {
			continue
		}
		m := matches[len(matches)-1]
		raw := strings.Replace(line[m[2]:m[3]], ",", ".", 1)
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v, m[0], true
		}
	}
	return 0, 0, false
}

func header(line string) (string, bool) {
	if utf8.RuneCountInString(line) >= 40 {
		return "", false
	}
	lower := strings.ToLower(line)
	for _, c := range categoryKeywords {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.category, true
			}
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
