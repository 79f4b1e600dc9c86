// Package metamodel holds the read-only object graph that generation runs
// against: a Context of Topics, their Properties and the TopicLinks between
// them. The graph is built once by Load/Parse and never mutated afterwards.
package metamodel

// Element is a model element that a target can generate a page for.
// Implemented by *Topic and *Property.
type Element interface {
	ElementName() string
}

// Context is a named set of topics and the links between them
type Context struct {
	Name       string       `yaml:"name"`
	WikiURL    string       `yaml:"wikiUrl,omitempty"`
	Topics     []*Topic     `yaml:"topics"`
	TopicLinks []*TopicLink `yaml:"topicLinks,omitempty"`

	topicsByName map[string]*Topic
}

// Topic describes one concept type, e.g. "City"
type Topic struct {
	Name              string      `yaml:"name"`
	Plural            string      `yaml:"pluralName,omitempty"`
	Icon              string      `yaml:"icon,omitempty"`
	IconURL           string      `yaml:"iconUrl,omitempty"`
	Documentation     string      `yaml:"documentation,omitempty"`
	WikiDocumentation string      `yaml:"wikiDocumentation,omitempty"`
	Extends           string      `yaml:"extends,omitempty"`
	DefaultStoreMode  string      `yaml:"defaultstoremode,omitempty"`
	Limit             *int        `yaml:"listLimit,omitempty"`
	Cargo             bool        `yaml:"cargo,omitempty"`
	Properties        []*Property `yaml:"properties,omitempty"`

	// Populated by Context.link
	SourceTopicLinks []*TopicLink `yaml:"-"`
	TargetTopicLinks []*TopicLink `yaml:"-"`
	context          *Context
}

// Property is one named attribute of a Topic
type Property struct {
	Name          string `yaml:"name"`
	Label         string `yaml:"label,omitempty"`
	Type          string `yaml:"type,omitempty"`
	Documentation string `yaml:"documentation,omitempty"`
	LinkName      string `yaml:"topicLink,omitempty"`
	Facets        Facets `yaml:",inline"`

	// Topic is the name of the owning topic, set by Context.link
	Topic string `yaml:"-"`
	// TopicLink is the resolved LinkName, nil when the property is not a link
	TopicLink *TopicLink `yaml:"-"`
}

// TopicLink is a relation between two topics
type TopicLink struct {
	Name           string  `yaml:"name"`
	Source         string  `yaml:"source"`
	SourceRole     string  `yaml:"sourceRole,omitempty"`
	SourceMultiple bool    `yaml:"sourceMultiple,omitempty"`
	Target         string  `yaml:"target"`
	TargetRole     string  `yaml:"targetRole,omitempty"`
	TargetMultiple bool    `yaml:"targetMultiple,omitempty"`
	Separator      *string `yaml:"separator,omitempty"`

	SourceTopic *Topic `yaml:"-"`
	TargetTopic *Topic `yaml:"-"`
}

// ElementName implements Element
func (t *Topic) ElementName() string { return t.Name }

// ElementName implements Element
func (p *Property) ElementName() string { return p.Name }

// Topic looks up a topic by name
func (c *Context) Topic(name string) (*Topic, bool) {
	t, ok := c.topicsByName[name]
	return t, ok
}

// TopicNames returns the topic names in definition order
func (c *Context) TopicNames() []string {
	names := make([]string, len(c.Topics))
	for i, t := range c.Topics {
		names[i] = t.Name
	}
	return names
}

// IsLink reports whether the property refers to another topic
func (p *Property) IsLink() bool {
	return p.TopicLink != nil
}

// TypeName returns the SMW type of the property, "Text" when unset
func (p *Property) TypeName() string {
	if p.Type == "" {
		return "Text"
	}
	return p.Type
}

// LabelText returns the display label, falling back to the name
func (p *Property) LabelText() string {
	if p.Label == "" {
		return p.Name
	}
	return p.Label
}

// LinkedTopicName returns the topic at the other end of the property's link,
// relative to the owning topic. Empty when the property is not a link.
func (p *Property) LinkedTopicName() string {
	if p.TopicLink == nil {
		return ""
	}
	if p.TopicLink.Source == p.Topic {
		return p.TopicLink.Target
	}
	return p.TopicLink.Source
}

// ContextName returns the name of the context the topic belongs to
func (t *Topic) ContextName() string {
	if t.context == nil {
		return ""
	}
	return t.context.Name
}
