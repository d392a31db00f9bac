package domain

import "fmt"

// TagConfig is the tag taxonomy: the ordered list of tag names available to
// the UI and the display color of each tag.
//
// Colors are opaque strings. A color may exist for a name that is not in
// AvailableTags; RemoveTag deletes both.
type TagConfig struct {
	AvailableTags []string          `json:"available_tags" yaml:"available_tags"`
	TagColors     map[string]string `json:"tag_colors" yaml:"tag_colors"`
}

// Has reports whether name is one of the available tags.
// Names are compared exactly (case-sensitive).
func (c *TagConfig) Has(name string) bool {
	for _, t := range c.AvailableTags {
		if t == name {
			return true
		}
	}
	return false
}

// AddTag appends name if absent and, when color is non-nil, sets its color.
func (c *TagConfig) AddTag(name string, color *string) {
	if !c.Has(name) {
		c.AvailableTags = append(c.AvailableTags, name)
	}
	if color != nil {
		if c.TagColors == nil {
			c.TagColors = make(map[string]string)
		}
		c.TagColors[name] = *color
	}
}

// RemoveTag drops name from the list and deletes its color. Removing an
// unknown name is a no-op.
func (c *TagConfig) RemoveTag(name string) {
	kept := make([]string, 0, len(c.AvailableTags))
	for _, t := range c.AvailableTags {
		if t != name {
			kept = append(kept, t)
		}
	}
	c.AvailableTags = kept
	delete(c.TagColors, name)
}

// Normalize replaces nil collections with empty ones so the configuration
// always serializes as `[]` and `{}`.
func (c *TagConfig) Normalize() {
	if c.AvailableTags == nil {
		c.AvailableTags = []string{}
	}
	if c.TagColors == nil {
		c.TagColors = map[string]string{}
	}
}

// Validate checks that no tag name appears twice.
func (c *TagConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.AvailableTags))
	for _, t := range c.AvailableTags {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("duplicate tag %q", t)
		}
		seen[t] = struct{}{}
	}
	return nil
}
