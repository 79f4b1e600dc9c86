package metamodel

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultListLimit is the SMW query limit used when a topic sets none
const DefaultListLimit = 200

// PluralName returns the plural name, defaulting to Name+"s"
func (t *Topic) PluralName() string {
	if t.Plural != "" {
		return t.Plural
	}
	return t.Name + "s"
}

// ListLimit returns the configured list limit or DefaultListLimit
func (t *Topic) ListLimit() int {
	if t.Limit != nil && *t.Limit > 0 {
		return *t.Limit
	}
	return DefaultListLimit
}

// Property looks up one of the topic's own properties by name
func (t *Topic) Property(name string) (*Property, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// PropertiesByIndex returns the properties sorted by their index facet.
// Properties without an index keep definition order after the indexed ones.
func (t *Topic) PropertiesByIndex() []*Property {
	props := make([]*Property, len(t.Properties))
	copy(props, t.Properties)
	sort.SliceStable(props, func(i, j int) bool {
		a, b := props[i].Facets.Index, props[j].Facets.Index
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return props
}

// ExtendsTopics returns the chain of topics this topic extends, nearest first.
// Unknown names end the chain; cycles are cut at the first repeat.
func (t *Topic) ExtendsTopics() []*Topic {
	var chain []*Topic
	if t.context == nil {
		return chain
	}
	seen := map[string]bool{t.Name: true}
	for name := t.Extends; name != "" && !seen[name]; {
		parent, ok := t.context.Topic(name)
		if !ok {
			break
		}
		seen[name] = true
		chain = append(chain, parent)
		name = parent.Extends
	}
	return chain
}

// AllProperties returns inherited properties (most distant ancestor first)
// followed by the topic's own properties
func (t *Topic) AllProperties() []*Property {
	var props []*Property
	chain := t.ExtendsTopics()
	for i := len(chain) - 1; i >= 0; i-- {
		props = append(props, chain[i].Properties...)
	}
	return append(props, t.Properties...)
}

// RelatedTopics returns the topics at the other end of this topic's links,
// deduplicated, in link order
func (t *Topic) RelatedTopics() []*Topic {
	var related []*Topic
	seen := map[string]bool{}
	add := func(other *Topic) {
		if other == nil || other == t || seen[other.Name] {
			return
		}
		seen[other.Name] = true
		related = append(related, other)
	}
	for _, link := range t.SourceTopicLinks {
		add(link.TargetTopic)
	}
	for _, link := range t.TargetTopicLinks {
		add(link.SourceTopic)
	}
	return related
}

// AskOptions tune AskQuery
type AskOptions struct {
	// MainLabel defaults to the topic name
	MainLabel string
	// FilterShowInGrid drops properties whose showInGrid facet is false
	FilterShowInGrid bool
	// ListLimit defaults to the topic's ListLimit()
	ListLimit int
}

// AskQuery renders a Semantic MediaWiki #ask query listing the topic's instances
func (t *Topic) AskQuery(opts AskOptions) string {
	mainLabel := opts.MainLabel
	if mainLabel == "" {
		mainLabel = t.Name
	}
	limit := opts.ListLimit
	if limit <= 0 {
		limit = t.ListLimit()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "{{#ask: [[Concept:%s]]\n", t.Name)
	fmt.Fprintf(&sb, "|mainlabel=%s\n", mainLabel)
	for _, prop := range t.PropertiesByIndex() {
		if opts.FilterShowInGrid && !prop.Facets.VisibleInGrid() {
			continue
		}
		fmt.Fprintf(&sb, "|?%s %s = %s\n", t.Name, prop.Name, prop.Name)
	}
	fmt.Fprintf(&sb, "|limit=%d\n", limit)
	sb.WriteString("}}")
	return sb.String()
}
