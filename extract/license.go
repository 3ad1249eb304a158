package extract

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"airbnb-host-scraper/browser"
)

// License resolution strategy. The license code is the hardest field: the
// label vocabulary spans languages, the value shape varies, and the value
// often sits behind a collapsed "Show more" disclosure rather than in the
// initially rendered DOM. Procedure, first success wins:
//
//  1. open a collapsed disclosure if one is interactable; if a dialog
//     appeared, restrict scanning to it
//  2. find a license/registration label and take the value next to it
//  3. scan the region for accepted code shapes directly (low confidence)
//
// Any opened dialog is closed before returning so no state leaks into the
// next extraction. An empty result is the normal "not published" outcome.

const disclosureSettle = 700 * time.Millisecond

// ResolveLicense runs the full strategy against a live page. pg may be nil
// (fixture tests), in which case only the already-captured snapshot is
// scanned.
func ResolveLicense(ctx context.Context, pg browser.Page, snap *Snapshot) string {
	region := snap.Doc.Find("body")

	if pg != nil {
		if expanded := expandDisclosure(ctx, pg); expanded != nil {
			region = expanded
			defer func() { _ = pg.CloseDialogs(ctx) }()
		}
	}

	return LicenseFromNodes(TextNodes(region))
}

// expandDisclosure clicks a known disclosure control and re-captures the
// page. Returns the region to scan, or nil when nothing was opened.
func expandDisclosure(ctx context.Context, pg browser.Page) *goquery.Selection {
	clicked, err := pg.ClickByText(ctx, disclosureLabels, 3*time.Second)
	if err != nil || !clicked {
		return nil
	}
	_ = pg.Wait(ctx, disclosureSettle)

	raw, err := pg.HTML(ctx)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	if dialog := doc.Find(`[role="dialog"], [aria-modal="true"]`).First(); dialog.Length() > 0 {
		return dialog
	}
	return doc.Find("body")
}

// LicenseFromNodes scans an ordered sequence of text nodes: label-adjacent
// value first, then bare shape matching over the whole region.
func LicenseFromNodes(nodes []string) string {
	for i, node := range nodes {
		loc := licenseLabelRe.FindStringIndex(node)
		if loc == nil {
			continue
		}

		// Value on the same node, trailing the label.
		tail := strings.TrimLeft(node[loc[1]:], " \t:;-–—.")
		if v := licenseValueIn(tail); v != "" {
			return v
		}

		// Otherwise the next non-empty node within a short window.
		for j := i + 1; j < len(nodes) && j <= i+3; j++ {
			if strings.TrimSpace(nodes[j]) == "" {
				continue
			}
			if v := licenseValueIn(nodes[j]); v != "" {
				return v
			}
			break
		}
	}

	// Label-less fallback: first accepted shape anywhere in the region.
	// Documented low-confidence last resort; the bare numeric form can
	// false-positive on unrelated numbers.
	all := strings.Join(nodes, "\n")
	if m := licenseCodeRe.FindString(all); m != "" {
		return m
	}
	return licenseNumericRe.FindString(all)
}

// licenseValueIn returns the first accepted license value inside s, or "".
func licenseValueIn(s string) string {
	if m := licenseCodeRe.FindString(s); m != "" {
		return m
	}
	if m := licenseNumericRe.FindString(s); m != "" {
		return m
	}
	return licenseExemptRe.FindString(s)
}

// TextNodes flattens a selection into its text nodes in document order,
// trimmed, skipping script and style content. Keeping nodes distinct (rather
// than one concatenated blob) is what lets the label→sibling rule work.
func TextNodes(sel *goquery.Selection) []string {
	var out []string
	for _, root := range sel.Nodes {
		collectTextNodes(root, &out)
	}
	return out
}

func collectTextNodes(n *html.Node, out *[]string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*out = append(*out, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTextNodes(c, out)
	}
}
