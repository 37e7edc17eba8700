package testfixtures

import (
	"testing"
	"time"
)

func TestEventFixtureAppliesOverrides(t *testing.T) {
	start := time.Date(2024, time.March, 4, 13, 0, 0, 0, time.UTC)
	fixture := NewEventFixture(WithIssueKey("XYZ-9"), WithAuthor("acct-9"), WithStart(start), WithMinutes(90))

	event := fixture.Event()
	if event.Resource.IssueKey != "XYZ-9" || event.Resource.AuthorAccountID != "acct-9" {
		t.Fatalf("overrides not applied: %+v", event.Resource)
	}
	if !event.Start.Equal(start) || !event.End.Equal(start.Add(90*time.Minute)) {
		t.Fatalf("unexpected bounds: %v - %v", event.Start, event.End)
	}
}

func TestEventFixturesAreDistinct(t *testing.T) {
	first := NewEventFixture()
	second := NewEventFixture()

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %q twice", first.ID)
	}
}

func TestCatalogueResolvesCaseInsensitively(t *testing.T) {
	catalogue := Catalogue("ABC-1")

	if _, ok := catalogue.Lookup("abc-1"); !ok {
		t.Fatalf("expected case-insensitive lookup to resolve")
	}
}
