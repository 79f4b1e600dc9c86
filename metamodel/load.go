package metamodel

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/ypgen/errors"
)

// Load reads a context description from a YAML or JSON file
func Load(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read context %s", path)
	}
	ctx, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load context %s", path)
	}
	return ctx, nil
}

// Parse decodes a context description. JSON is accepted as a YAML subset.
// Unknown keys are rejected so typos in facet names surface early.
func Parse(data []byte) (*Context, error) {
	var ctx Context
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ctx); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid context description"), errors.ErrInvalidRequest)
	}
	if err := ctx.link(); err != nil {
		return nil, err
	}
	return &ctx, nil
}

// New builds a linked context from topics and links constructed in code
func New(name string, topics []*Topic, links []*TopicLink) (*Context, error) {
	ctx := &Context{Name: name, Topics: topics, TopicLinks: links}
	if err := ctx.link(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// link resolves names into pointers. It runs once, before the context is shared.
func (c *Context) link() error {
	c.topicsByName = make(map[string]*Topic, len(c.Topics))
	for i, t := range c.Topics {
		if t == nil {
			return errors.NewInvalidRequestError("context %q: topic %d is empty", c.Name, i+1)
		}
		for j, p := range t.Properties {
			if p == nil {
				return errors.NewInvalidRequestError("topic %q: property %d is empty", t.Name, j+1)
			}
		}
		if t.Name == "" {
			return errors.NewInvalidRequestError("context %q has a topic without a name", c.Name)
		}
		if _, dup := c.topicsByName[t.Name]; dup {
			return errors.NewInvalidRequestError("duplicate topic %q in context %q", t.Name, c.Name)
		}
		c.topicsByName[t.Name] = t
		t.context = c
		t.SourceTopicLinks = nil
		t.TargetTopicLinks = nil
	}

	linksByName := make(map[string]*TopicLink, len(c.TopicLinks))
	for i, link := range c.TopicLinks {
		if link == nil {
			return errors.NewInvalidRequestError("context %q: topic link %d is empty", c.Name, i+1)
		}
		source, ok := c.topicsByName[link.Source]
		if !ok {
			return errors.NewInvalidRequestError("topic link %q: unknown source topic %q", link.Name, link.Source)
		}
		target, ok := c.topicsByName[link.Target]
		if !ok {
			return errors.NewInvalidRequestError("topic link %q: unknown target topic %q", link.Name, link.Target)
		}
		link.SourceTopic = source
		link.TargetTopic = target
		source.SourceTopicLinks = append(source.SourceTopicLinks, link)
		target.TargetTopicLinks = append(target.TargetTopicLinks, link)
		linksByName[link.Name] = link
	}

	for _, t := range c.Topics {
		seen := make(map[string]bool, len(t.Properties))
		for _, p := range t.Properties {
			if seen[p.Name] {
				return errors.NewInvalidRequestError("topic %q: duplicate property %q", t.Name, p.Name)
			}
			seen[p.Name] = true
			p.Topic = t.Name
			p.TopicLink = nil
			if p.LinkName == "" {
				continue
			}
			link, ok := linksByName[p.LinkName]
			if !ok {
				return errors.NewInvalidRequestError("property %s.%s: unknown topic link %q", t.Name, p.Name, p.LinkName)
			}
			p.TopicLink = link
		}
	}
	return nil
}
