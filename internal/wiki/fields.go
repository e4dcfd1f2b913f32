package wiki

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FieldRenderer turns one infobox detail cell into display text. Cells come
// in a handful of recognizable markup shapes; classification is a fixed
// priority chain where the first matching shape wins.
type FieldRenderer struct {
	client   *Client
	pagename string
}

func NewFieldRenderer(client *Client, pagename string) *FieldRenderer {
	return &FieldRenderer{client: client, pagename: pagename}
}

// Render picks the rendering branch for a detail cell. The section label
// participates in classification: "Sell Price" cells keep their sub-table
// markup out of the table branch so coin amounts stay on one line.
func (fr *FieldRenderer) Render(section string, detail *goquery.Selection) string {
	if tbl := detail.Find("table").First(); tbl.Length() > 0 && strings.TrimSpace(section) != "Sell Price" {
		return fr.renderSubTable(tbl)
	}

	if span := detail.Find("span.no-wrap").First(); span.Length() > 0 {
		return fr.linkOrText(span)
	}

	if hidden := detail.Find(`span[style="display: none;"]`).First(); hidden.Length() > 0 {
		return fr.renderHiddenSpan(detail, hidden)
	}

	if spans := detail.Find("span.nametemplate"); spans.Length() > 0 {
		return fr.renderJoined(spans)
	}

	if ps := detail.Find("p").Not(".mw-empty-elt"); ps.Length() > 0 {
		return fr.renderJoined(ps)
	}

	if hasQualityImage(detail) {
		return fr.renderQualityPairs(detail)
	}

	return fr.linkOrText(detail)
}

// renderSubTable reconstructs a multi-row text block from a nested infobox
// table. Simple cells group onto one line; styled cells force a break.
func (fr *FieldRenderer) renderSubTable(tbl *goquery.Selection) string {
	var b strings.Builder

	rows := tbl.Find("tr")
	rows.Each(func(ri int, row *goquery.Selection) {
		// layout separator rows hold further nested tables
		if row.Find("tr").Length() > 0 {
			return
		}

		cells := row.Find("td")
		n := cells.Length()
		doNewline := true

		var rowText strings.Builder
		cells.Each(func(i int, td *goquery.Selection) {
			if back := td.Find("div.backimage img").First(); back.Length() > 0 {
				src, _ := back.Attr("src")
				if glyph := identifyIcon(src, td.Find("div.foreimage"), fr.pagename); glyph != "" {
					rowText.WriteString(glyph + " ")
				}
			}

			inner := normalizeSpace(td.Text())
			if inner == "" {
				return
			}

			if style, ok := td.Attr("style"); ok && strings.Contains(style, "vertical-align: bottom") {
				rowText.WriteString(inner + " ")
				return
			}

			rowText.WriteString(inner + " ")

			if isPlainCell(td) {
				if i+1 < n && isPlainCell(cells.Eq(i+1)) {
					doNewline = false
				} else if ri > 0 && i == n-1 {
					doNewline = false
				}
			}
		})

		text := rowText.String()
		if text == "" {
			return
		}
		b.WriteString(text)
		if doNewline {
			b.WriteString("\n")
		}
	})

	return strings.TrimRight(b.String(), " \n")
}

// isPlainCell reports whether a cell carries no attributes and no element
// children, i.e. bare text that can share a line with its neighbor.
func isPlainCell(td *goquery.Selection) bool {
	if td.Length() == 0 {
		return false
	}
	return len(td.Get(0).Attr) == 0 && td.Children().Length() == 0
}

// renderHiddenSpan strips a duplicate-suppression span's text out of the
// cell. If the hidden span links somewhere, the cleaned text becomes the
// link label.
func (fr *FieldRenderer) renderHiddenSpan(detail, hidden *goquery.Selection) string {
	cleaned := strings.Replace(detail.Text(), hidden.Text(), "", 1)
	cleaned = normalizeSpace(cleaned)

	if a := hidden.Find("a").First(); a.Length() > 0 {
		href, _ := a.Attr("href")
		return balanceParens(fmt.Sprintf("[%s](%s)", cleaned, fr.client.ResolveRef(href)))
	}
	return cleaned
}

func (fr *FieldRenderer) renderJoined(sels *goquery.Selection) string {
	items := make([]string, 0, sels.Length())
	sels.Each(func(_ int, s *goquery.Selection) {
		items = append(items, fr.linkOrText(s))
	})
	return strings.Join(items, ", ")
}

func hasQualityImage(detail *goquery.Selection) bool {
	found := false
	detail.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if alt, ok := img.Attr("alt"); ok && strings.HasSuffix(alt, " Quality.png") {
			found = true
			return false
		}
		return true
	})
	return found
}

// renderQualityPairs walks the cell's direct children as an alternating
// text/image sequence, mapping each quality badge to its glyph. Leading
// text with no icon renders bare.
func (fr *FieldRenderer) renderQualityPairs(detail *goquery.Selection) string {
	type pair struct {
		text string
		icon string
	}

	contents := detail.Contents()
	var pairs []pair
	skip := false
	contents.Each(func(i int, ch *goquery.Selection) {
		if skip {
			skip = false
			return
		}
		node := ch.Get(0)
		if node.Type == html.ElementNode && node.Data == "img" {
			src, _ := ch.Attr("src")
			text := ""
			if i+1 < contents.Length() {
				text = stripNonASCII(contents.Eq(i + 1).Text())
			}
			pairs = append(pairs, pair{text: text, icon: src})
			skip = true
			return
		}
		pairs = append(pairs, pair{text: ch.Text()})
	})

	var b strings.Builder
	for _, p := range pairs {
		if p.icon != "" {
			b.WriteString(fmt.Sprintf("%s %s ", GetQualityFromPath(p.icon), p.text))
		} else {
			b.WriteString(p.text)
		}
	}
	return strings.TrimSpace(b.String())
}

// linkOrText renders an element's anchors as markdown hyperlinks with
// absolute hrefs, preserving surrounding sibling text. Elements without
// anchors render as plain text.
func (fr *FieldRenderer) linkOrText(sel *goquery.Selection) string {
	if sel.Find("a").Length() == 0 {
		return normalizeSpace(sel.Text())
	}

	var b strings.Builder
	sel.Contents().Each(func(_ int, ch *goquery.Selection) {
		node := ch.Get(0)
		if node.Type != html.ElementNode {
			b.WriteString(ch.Text())
			return
		}
		if node.Data == "a" {
			href, _ := ch.Attr("href")
			label := normalizeSpace(ch.Text())
			b.WriteString(fmt.Sprintf("[%s](%s)", label, fr.client.ResolveRef(href)))
			return
		}
		if ch.Find("a").Length() > 0 {
			b.WriteString(fr.linkOrText(ch))
			return
		}
		b.WriteString(ch.Text())
	})

	return balanceParens(normalizeSpace(b.String()))
}

// balanceParens closes (or opens) unmatched parentheses left behind by
// stripped markup. Single pass over counts, not a parser.
func balanceParens(s string) string {
	opens := strings.Count(s, "(")
	closes := strings.Count(s, ")")
	switch {
	case opens > closes:
		return s + strings.Repeat(")", opens-closes)
	case closes > opens:
		return strings.Repeat("(", closes-opens) + s
	}
	return s
}

// normalizeSpace collapses tabs, non-breaking spaces, newlines and runs of
// spaces into single spaces, trimming the ends.
func normalizeSpace(s string) string {
	s = strings.NewReplacer("\t", " ", " ", " ", "\r", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func stripNonASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
