// Package scraper defines the Scraper collaborator of §6 and provides one
// stub implementation per bracket provider in the original source's scope
// (TIO file, Challonge URL, SmashGG URL). The core only ever consumes the
// interface; dispatch between concrete scrapers is by the tagged
// models.SourceType value, never a type switch.
package scraper

import "time"

// Match is the scraper-side match shape: raw alias strings, not player ids.
type Match struct {
	Winner string
	Loser  string
}

// Scraper is the external collaborator the Pending Tournament Store
// consumes (§6). Any concrete scraper satisfies it by duck typing.
type Scraper interface {
	GetName() string
	GetDate() time.Time
	GetRaw() string
	GetPlayers() []string
	GetMatches() []Match
	GetUrl() string
}

// TIOScraper holds the already-decoded contents of a locally-uploaded .tio
// bracket file; it does no parsing of the TIO binary format itself. Raw
// carries whatever bytes were uploaded so an operator can re-parse or audit
// it later.
type TIOScraper struct {
	Name    string
	Date    time.Time
	Raw     string
	Players []string
	Matches []Match
	URL     string
}

func (s *TIOScraper) GetName() string      { return s.Name }
func (s *TIOScraper) GetDate() time.Time   { return s.Date }
func (s *TIOScraper) GetRaw() string       { return s.Raw }
func (s *TIOScraper) GetPlayers() []string { return s.Players }
func (s *TIOScraper) GetMatches() []Match  { return s.Matches }
func (s *TIOScraper) GetUrl() string       { return s.URL }

// ChallongeScraper wraps a single already-fetched Challonge bracket. The
// HTTP fetch against challonge.com's API is intentionally not implemented
// here: wiring a real client is an operational concern, not a core-domain
// one, and the core never calls out to it directly (§6: "the core consumes
// only these methods").
type ChallongeScraper struct {
	Name    string
	Date    time.Time
	Raw     string
	Players []string
	Matches []Match
	URL     string
}

func (s *ChallongeScraper) GetName() string      { return s.Name }
func (s *ChallongeScraper) GetDate() time.Time   { return s.Date }
func (s *ChallongeScraper) GetRaw() string       { return s.Raw }
func (s *ChallongeScraper) GetPlayers() []string { return s.Players }
func (s *ChallongeScraper) GetMatches() []Match  { return s.Matches }
func (s *ChallongeScraper) GetUrl() string       { return s.URL }

// SmashGGScraper wraps a single already-fetched smash.gg bracket.
type SmashGGScraper struct {
	Name    string
	Date    time.Time
	Raw     string
	Players []string
	Matches []Match
	URL     string
}

func (s *SmashGGScraper) GetName() string      { return s.Name }
func (s *SmashGGScraper) GetDate() time.Time   { return s.Date }
func (s *SmashGGScraper) GetRaw() string       { return s.Raw }
func (s *SmashGGScraper) GetPlayers() []string { return s.Players }
func (s *SmashGGScraper) GetMatches() []Match  { return s.Matches }
func (s *SmashGGScraper) GetUrl() string       { return s.URL }

var (
	_ Scraper = (*TIOScraper)(nil)
	_ Scraper = (*ChallongeScraper)(nil)
	_ Scraper = (*SmashGGScraper)(nil)
)
