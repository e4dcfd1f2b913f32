package wiki

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	siteSuffix      = " - Stardew Valley Wiki"
	mainLogoPath    = "/mediawiki/images/6/68/Main_Logo.png"
	licenseIconPath = "/mediawiki/resources/assets/licenses/cc-by-nc-sa.png"
)

// dangling sort-key markup leaks into paragraph text on some pages
var sortValueRe = regexp.MustCompile(`data-sort-value="[a-zA-Z0-9-_ ]+"`)

// Extractor converts page HTML at a resolved URL into a Summary. It does no
// caching; the cache layer sits in front of it.
type Extractor struct {
	client *Client
	logger *zap.Logger
}

func NewExtractor(client *Client, logger *zap.Logger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

func (e *Extractor) Parse(ctx context.Context, pageURL string) (*Summary, error) {
	if pageURL == "" ||
		strings.Contains(pageURL, "/Special:Search") ||
		strings.Contains(pageURL, "/mediawiki/index.php?search=") {
		return e.Help(), nil
	}

	e.logger.Info("Parsing page", zap.String("url", pageURL))

	doc, _, err := e.client.Document(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	summary := &Summary{SourceURL: pageURL}
	e.resolveImages(doc, summary)

	heading := doc.Find("h1#firstHeading").First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("page heading not found at %s", pageURL)
	}
	pagename := strings.TrimSpace(heading.Text())
	summary.Title = pagename + siteSuffix

	infobox := doc.Find("table#infoboxtable").First()
	if infobox.Length() > 0 {
		e.extractInfobox(infobox, pagename, summary)
		return summary, nil
	}

	body := doc.Find("div.mw-parser-output").First()
	if body.Length() == 0 {
		return nil, fmt.Errorf("page body not found at %s", pageURL)
	}

	var paragraphs []string
	body.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		if i >= 2 {
			return false
		}
		text := strings.TrimSpace(sortValueRe.ReplaceAllString(p.Text(), ""))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		return true
	})
	summary.Description = strings.Join(paragraphs, "\n\n")

	return summary, nil
}

// resolveImages picks the first non-responsive image as the thumbnail. The
// license icon is never a legitimate thumbnail; it and the no-image case
// both fall back to the wiki logo.
func (e *Extractor) resolveImages(doc *goquery.Document, summary *Summary) {
	img := doc.Find("img:not([srcset])").First()
	if img.Length() == 0 {
		summary.ImageURL = e.client.ResolveRef(mainLogoPath)
		return
	}

	src, ok := img.Attr("src")
	if !ok || src == "" {
		summary.ImageURL = e.client.ResolveRef(mainLogoPath)
		return
	}

	resolved := e.client.ResolveRef(src)
	if resolved == e.client.ResolveRef(licenseIconPath) {
		summary.ImageURL = e.client.ResolveRef(mainLogoPath)
		return
	}
	summary.ThumbnailURL = resolved
}

// extractInfobox walks infobox rows top to bottom, stopping at the
// full-width separator table that marks the end of the meaningful rows.
func (e *Extractor) extractInfobox(infobox *goquery.Selection, pagename string, summary *Summary) {
	renderer := NewFieldRenderer(e.client, pagename)

	infobox.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.Find(`table[style="width:101%;"]`).Length() > 0 {
			return false
		}

		section := row.Find("td#infoboxsection").First()
		detail := row.Find("td#infoboxdetail").First()
		if section.Length() == 0 || detail.Length() == 0 {
			return true
		}

		name := strings.TrimSpace(section.Text())
		summary.Fields = append(summary.Fields, FieldEntry{
			Name:   name,
			Value:  renderer.Render(name, detail),
			Inline: false,
		})
		return true
	})
}

// Help is the fixed artifact shown when no page could be resolved.
func (e *Extractor) Help() *Summary {
	return HelpSummary(e.client.BaseURL())
}

func HelpSummary(baseURL string) *Summary {
	return &Summary{
		Title:     "Stardew Valley Wiki",
		SourceURL: baseURL,
		ImageURL:  strings.TrimRight(baseURL, "/") + mainLogoPath,
		Description: "No results found for that search.\n\n" +
			"Try the exact page name (for example `Parsnip` or `Leah`), " +
			"or browse the wiki directly at " + baseURL + ".",
	}
}
