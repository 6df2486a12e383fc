// pkg/content/schema.go
package content

// Site is everything the page renders besides the contact wizard.
type Site struct {
	Version    string         `yaml:"version"`
	Meta       Meta           `yaml:"meta"`
	Brand      Brand          `yaml:"brand"`
	Nav        []NavItem      `yaml:"nav"`
	Hero       Hero           `yaml:"hero"`
	Work       Work           `yaml:"work"`
	Sections   []Section      `yaml:"sections"`
	Philosophy Philosophy     `yaml:"philosophy"`
	Contact    ContactSection `yaml:"contact"`
}

type Meta struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Keywords    []string  `yaml:"keywords"`
	BaseURL     string    `yaml:"base_url"`
	OpenGraph   OpenGraph `yaml:"open_graph"`
}

type OpenGraph struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	SiteName    string `yaml:"site_name"`
}

type Brand struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
}

type NavItem struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type Hero struct {
	Eyebrow      string `yaml:"eyebrow"`
	Headline     string `yaml:"headline"`
	Lede         string `yaml:"lede"`
	PrimaryCTA   Link   `yaml:"primary_cta"`
	SecondaryCTA Link   `yaml:"secondary_cta"`
}

// Section is a headed list of cards. Numbered sections render their items
// as ordered steps.
type Section struct {
	ID       string `yaml:"id"`
	Eyebrow  string `yaml:"eyebrow"`
	Heading  string `yaml:"heading"`
	Intro    string `yaml:"intro"`
	Numbered bool   `yaml:"numbered"`
	Items    []Item `yaml:"items"`
}

type Item struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Work struct {
	ID          string      `yaml:"id"`
	Eyebrow     string      `yaml:"eyebrow"`
	Heading     string      `yaml:"heading"`
	Intro       string      `yaml:"intro"`
	CaseStudies []CaseStudy `yaml:"case_studies"`
}

type CaseStudy struct {
	ID          int      `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Metrics     Metrics  `yaml:"metrics"`
	Tags        []string `yaml:"tags"`
}

type Metrics struct {
	Lighthouse int    `yaml:"lighthouse"`
	SEO        int    `yaml:"seo"`
	LCP        string `yaml:"lcp"`
}

type Philosophy struct {
	Statement  string   `yaml:"statement"`
	Paragraphs []string `yaml:"paragraphs"`
	Pillars    []string `yaml:"pillars"`
}

type ContactSection struct {
	ID      string          `yaml:"id"`
	Heading string          `yaml:"heading"`
	Intro   string          `yaml:"intro"`
	Details []ContactDetail `yaml:"details"`
}

type ContactDetail struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Href  string `yaml:"href,omitempty"`
}
