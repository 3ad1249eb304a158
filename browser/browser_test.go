package browser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

func TestInterceptable(t *testing.T) {
	tests := []struct {
		name string
		typ  network.ResourceType
		mime string
		url  string
		want bool
	}{
		{
			name: "detail-page sections fetch",
			typ:  network.ResourceTypeFetch,
			mime: "application/json",
			url:  "https://www.airbnb.com/api/v3/StaysPdpSections?operationName=StaysPdpSections",
			want: true,
		},
		{
			name: "search feed fetch",
			typ:  network.ResourceTypeFetch,
			mime: "application/json",
			url:  "https://www.airbnb.com/api/v3/StaysSearch?operationName=StaysSearch",
			want: false,
		},
		{
			name: "profile lookup xhr",
			typ:  network.ResourceTypeXHR,
			mime: "application/json; charset=utf-8",
			url:  "https://www.airbnb.com/api/v2/users/123",
			want: true,
		},
		{
			name: "top-level document",
			typ:  network.ResourceTypeDocument,
			mime: "text/html",
			url:  "https://www.airbnb.com/rooms/1",
			want: false,
		},
		{
			name: "non-json body",
			typ:  network.ResourceTypeXHR,
			mime: "text/html",
			url:  "https://www.airbnb.com/api/v2/users/123",
			want: false,
		},
		{
			name: "json from outside the api",
			typ:  network.ResourceTypeXHR,
			mime: "application/json",
			url:  "https://cdn.example.com/listing.json",
			want: false,
		},
	}

	for _, tt := range tests {
		if got := interceptable(tt.typ, tt.mime, tt.url); got != tt.want {
			t.Errorf("%s: interceptable = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestResponseBufferDropsStaleBodies(t *testing.T) {
	var b responseBuffer

	stale := b.generation()
	b.add(stale, []byte(`{"fromFeed":true}`))
	b.reset()

	// A body whose fetch finished after the document was replaced.
	b.add(stale, []byte(`{"late":true}`))
	if got := b.drain(); len(got) != 0 {
		t.Fatalf("drained %d bodies from a previous document; want 0", len(got))
	}

	b.add(b.generation(), []byte(`{"current":true}`))
	got := b.drain()
	if len(got) != 1 || string(got[0]) != `{"current":true}` {
		t.Fatalf("got %q; want the current document's body only", got)
	}
	if got := b.drain(); len(got) != 0 {
		t.Errorf("second drain returned %d bodies; want 0", len(got))
	}
}

// Responses captured before a navigation (the search feed's payloads) must
// never surface as the next document's data.
func TestNavigateDropsPreviousDocumentResponses(t *testing.T) {
	p := &ChromePage{
		ctx:  context.Background(),
		exec: func(context.Context, ...chromedp.Action) error { return nil },
	}
	p.buf.add(p.buf.generation(), []byte(`{"listings":[{"license":"555555"}]}`))

	if err := p.Navigate(context.Background(), "https://www.airbnb.com/rooms/1", time.Second); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := p.DrainResponses(); len(got) != 0 {
		t.Fatalf("detail page inherited %d buffered bodies; want 0", len(got))
	}
}

func TestNavigateReappliesWebDriverPatch(t *testing.T) {
	var actionCount int
	p := &ChromePage{
		ctx: context.Background(),
		exec: func(_ context.Context, actions ...chromedp.Action) error {
			actionCount = len(actions)
			return nil
		},
	}

	if err := p.Navigate(context.Background(), "https://www.airbnb.com/rooms/1", time.Second); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if actionCount != 2 {
		t.Errorf("navigation ran %d actions; want the load plus the webdriver patch", actionCount)
	}
}

func TestRunReleasesTabWhenCallerGivesUp(t *testing.T) {
	released := make(chan struct{})
	p := &ChromePage{
		ctx: context.Background(),
		exec: func(ctx context.Context, _ ...chromedp.Action) error {
			<-ctx.Done()
			close(released)
			return ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.run(ctx, 0); err == nil {
		t.Fatal("run returned nil for a cancelled caller")
	}
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned action kept the tab busy")
	}
}
