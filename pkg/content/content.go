// pkg/content/content.go
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"devstudio-site/internal/common/validation"
)

//go:embed content.yaml
var defaultContent []byte

// TopAnchor is the id of the hero section.
const TopAnchor = "top"

// Default returns the content bundled into the binary.
func Default() (*Site, error) {
	return Parse(defaultContent)
}

// Load reads a content file. An empty path selects the bundled content.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML content. Unknown keys are rejected so typos surface.
func Parse(data []byte) (*Site, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	return &site, nil
}

// Save writes site as YAML, creating the directory if needed.
func Save(site *Site, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(site); err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write content file: %w", err)
	}
	return nil
}

// Anchors lists every in-page anchor in render order.
func (s *Site) Anchors() []string {
	anchors := []string{TopAnchor}
	if s.Work.ID != "" {
		anchors = append(anchors, s.Work.ID)
	}
	for _, sec := range s.Sections {
		anchors = append(anchors, sec.ID)
	}
	if s.Contact.ID != "" {
		anchors = append(anchors, s.Contact.ID)
	}
	return anchors
}

// Section returns the section with id.
func (s *Site) Section(id string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// ValidationError lists every problem found in a content file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content has %d problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks required copy, anchor integrity and contact links.
func (s *Site) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if s.Meta.Title == "" {
		add("meta.title is required")
	}
	if s.Meta.BaseURL != "" && !validation.ValidateURL(s.Meta.BaseURL) {
		add("meta.base_url %q is not a URL", s.Meta.BaseURL)
	}
	if s.Brand.Name == "" {
		add("brand.name is required")
	}
	if s.Hero.Headline == "" {
		add("hero.headline is required")
	}

	anchors := map[string]bool{}
	for _, a := range s.Anchors() {
		if a == "" {
			add("section is missing an id")
			continue
		}
		if anchors[a] {
			add("duplicate anchor %q", a)
		}
		anchors[a] = true
	}

	for _, sec := range s.Sections {
		if sec.Heading == "" {
			add("section %q is missing a heading", sec.ID)
		}
		if len(sec.Items) == 0 {
			add("section %q has no items", sec.ID)
		}
		for i, item := range sec.Items {
			if item.Title == "" {
				add("section %q item %d is missing a title", sec.ID, i+1)
			}
		}
	}

	navIDs := map[string]bool{}
	for _, item := range s.Nav {
		if navIDs[item.ID] {
			add("duplicate nav item %q", item.ID)
		}
		navIDs[item.ID] = true
		if !anchors[item.ID] {
			add("nav item %q points to no section", item.ID)
		}
	}
	for _, cta := range []Link{s.Hero.PrimaryCTA, s.Hero.SecondaryCTA} {
		if strings.HasPrefix(cta.Href, "#") && !anchors[strings.TrimPrefix(cta.Href, "#")] {
			add("hero link %q points to no section", cta.Href)
		}
	}

	caseIDs := map[int]bool{}
	for _, cs := range s.Work.CaseStudies {
		if caseIDs[cs.ID] {
			add("duplicate case study id %d", cs.ID)
		}
		caseIDs[cs.ID] = true
		if cs.Title == "" {
			add("case study %d is missing a title", cs.ID)
		}
		if cs.Metrics.Lighthouse < 0 || cs.Metrics.Lighthouse > 100 {
			add("case study %d lighthouse score %d out of range", cs.ID, cs.Metrics.Lighthouse)
		}
		if cs.Metrics.SEO < 0 || cs.Metrics.SEO > 100 {
			add("case study %d seo score %d out of range", cs.ID, cs.Metrics.SEO)
		}
	}

	for _, d := range s.Contact.Details {
		if d.Label == "" || d.Value == "" {
			add("contact detail %q needs a label and a value", d.Label)
		}
		if d.Href != "" && !validContactHref(d.Href) {
			add("contact detail %q has an invalid link %q", d.Label, d.Href)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validContactHref(href string) bool {
	switch {
	case strings.HasPrefix(href, "mailto:"):
		return validation.ValidateEmail(strings.TrimPrefix(href, "mailto:"))
	case strings.HasPrefix(href, "tel:"):
		return validation.ValidatePhone(strings.TrimPrefix(href, "tel:"))
	default:
		return validation.ValidateURL(href)
	}
}
