package model

import "testing"

func TestParsePublishersDropsBlanksAndDuplicates(t *testing.T) {
	got := ParsePublishers([]string{" BBC.co.uk ", "", "bbc.co.uk", "pressassociation.com"})
	if len(got) != 2 {
		t.Fatalf("expected 2 publishers, got %v", got)
	}
	if got[0] != PublisherBBC || got[1] != PublisherPA {
		t.Fatalf("unexpected publishers: %v", got)
	}
	if PublisherPA.Name() != "Press Association" {
		t.Fatalf("unexpected display name %q", PublisherPA.Name())
	}
	if Publisher("example.org").Name() != "example.org" {
		t.Fatal("expected unknown publisher name to fall back to key")
	}
}

func TestChannelSameAsCopiesDoNotAlias(t *testing.T) {
	ch := Channel{ID: 1, URI: "http://a", Aliases: []Alias{{Namespace: "ns", Value: " X "}}}
	linked := ch.WithSameAs(ChannelRef{ID: 2, URI: "http://b"})
	if len(ch.SameAs) != 0 {
		t.Fatal("expected original channel to be unchanged")
	}
	if !linked.LinksTo("http://b") {
		t.Fatalf("expected link to http://b, got %+v", linked.SameAs)
	}
	relinked := linked.WithSameAs(ChannelRef{ID: 3, URI: "http://c"})
	if len(relinked.SameAs) != 1 || relinked.SameAs[0].URI != "http://c" {
		t.Fatalf("expected single replaced link, got %+v", relinked.SameAs)
	}
	if len(relinked.WithoutSameAs().SameAs) != 0 {
		t.Fatal("expected link cleared")
	}
	value, ok := ch.AliasValue("ns")
	if !ok || value != "X" {
		t.Fatalf("unexpected alias lookup: %q %v", value, ok)
	}
	if _, ok := ch.AliasValue("other"); ok {
		t.Fatal("expected missing namespace to report false")
	}
}

func TestKindIsContainer(t *testing.T) {
	if !KindBrand.IsContainer() || !KindSeries.IsContainer() {
		t.Fatal("expected brand and series to be containers")
	}
	if KindEpisode.IsContainer() || KindItem.IsContainer() {
		t.Fatal("expected episode and item not to be containers")
	}
}
