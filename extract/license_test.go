package extract

import (
	"context"
	"testing"
)

func TestLicenseFromNodesLabelThenValue(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		want  string
	}{
		{
			name:  "value on the next text node",
			nodes: []string{"About this place", "Registration number:", "ABC-DEF-1234", "Great view"},
			want:  "ABC-DEF-1234",
		},
		{
			name:  "value trailing the label on the same node",
			nodes: []string{"License number: 98765432"},
			want:  "98765432",
		},
		{
			name:  "french label",
			nodes: []string{"Numéro d'enregistrement", "1100042"},
			want:  "1100042",
		},
		{
			name:  "exemption statement",
			nodes: []string{"Registration number", "Exempt"},
			want:  "Exempt",
		},
		{
			name:  "no label and no code shape",
			nodes: []string{"Cosy flat near the beach", "Two bedrooms"},
			want:  "",
		},
		{
			name:  "nothing at all",
			nodes: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LicenseFromNodes(tt.nodes); got != tt.want {
				t.Errorf("LicenseFromNodes(%v) = %q; want %q", tt.nodes, got, tt.want)
			}
		})
	}
}

func TestLicenseFromNodesShapeOnlyFallback(t *testing.T) {
	// No recognizable label anywhere: the hyphenated shape still wins over
	// the bare numeric one.
	nodes := []string{"Some text", "DTC-TRA-40221", "price 1,200"}
	if got := LicenseFromNodes(nodes); got != "DTC-TRA-40221" {
		t.Errorf("got %q; want the hyphenated code", got)
	}

	// Bare numeric last resort.
	nodes = []string{"Some text", "code 1100042 somewhere"}
	if got := LicenseFromNodes(nodes); got != "1100042" {
		t.Errorf("got %q; want the numeric token", got)
	}
}

func TestResolveLicenseFromSnapshotOnly(t *testing.T) {
	html := `<html><body>
		<div>
			<span>Registration number:</span>
			<span>ABC-DEF-1234</span>
		</div>
		<script>var ignored = "LIC-ENS-99999";</script>
	</body></html>`
	snap := mustSnapshot(t, html)

	// nil page: no disclosure interaction, scan the captured DOM directly.
	if got := ResolveLicense(context.Background(), nil, snap); got != "ABC-DEF-1234" {
		t.Errorf("ResolveLicense = %q; want %q", got, "ABC-DEF-1234")
	}
}

func TestResolveLicenseEmptyIsNotAnError(t *testing.T) {
	snap := mustSnapshot(t, `<html><body><p>No codes here.</p></body></html>`)
	if got := ResolveLicense(context.Background(), nil, snap); got != "" {
		t.Errorf("ResolveLicense = %q; want empty string", got)
	}
}

func TestTextNodesSkipsScriptAndStyle(t *testing.T) {
	snap := mustSnapshot(t, `<html><body>
		<p>visible</p>
		<script>var hidden = 1234567;</script>
		<style>.x{}</style>
	</body></html>`)

	nodes := TextNodes(snap.Doc.Find("body"))
	for _, n := range nodes {
		if n == "var hidden = 1234567;" || n == ".x{}" {
			t.Errorf("script/style content leaked into text nodes: %q", n)
		}
	}
}
