package contracts

// CustomDomain is a user-defined ticker group. The server is authoritative.
type CustomDomain struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
}

// Preferences is the user's saved domain list; the first entry is the
// preferred default domain
type Preferences struct {
	Domains []string `json:"domains"`
}

// DomainList is the body of GET /api/domains
type DomainList struct {
	Domains []string `json:"domains"`
}
