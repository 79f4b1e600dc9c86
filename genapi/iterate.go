package genapi

import (
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/metamodel"
	"github.com/teranos/ypgen/target"
)

// Pair is one (element, target) combination of a batch. Element is the
// topic itself, or one of its properties for property targets.
type Pair struct {
	Topic   *metamodel.Topic
	Element metamodel.Element
	Target  *target.Target
}

// FilterTargets selects targets by key in registry order. Without names
// only grid targets are selected, so bulk runs never touch hidden targets.
// Explicitly named targets are selected even when hidden from the grid.
// Unknown names are dropped with a warning.
func (g *Generator) FilterTargets(names []string) []*target.Target {
	if names == nil {
		return g.registry.GridTargets()
	}
	selected, unknown := g.registry.Filter(names)
	for _, name := range unknown {
		g.logger.Warnw("Unknown target ignored", logger.FieldTarget, name, "known", g.registry.Keys())
	}
	return selected
}

// FilterTopics selects topics by name in context order. Nil selects all.
// Unknown names are dropped with a warning.
func (g *Generator) FilterTopics(names []string) []*metamodel.Topic {
	if names == nil {
		return g.context.Topics
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := g.context.Topic(name); !ok {
			g.logger.Warnw("Unknown topic ignored", logger.FieldTopic, name)
			continue
		}
		wanted[name] = true
	}
	var topics []*metamodel.Topic
	for _, topic := range g.context.Topics {
		if wanted[topic.Name] {
			topics = append(topics, topic)
		}
	}
	return topics
}

// Iterate returns the selected pairs topic-major, target-minor. A property
// target named explicitly yields one pair per property of each topic.
func (g *Generator) Iterate(topicNames, targetNames []string) []Pair {
	targets := g.FilterTargets(targetNames)
	var pairs []Pair
	for _, topic := range g.FilterTopics(topicNames) {
		for _, t := range targets {
			if !t.ForProperties() {
				pairs = append(pairs, Pair{Topic: topic, Element: topic, Target: t})
				continue
			}
			for _, prop := range topic.Properties {
				pairs = append(pairs, Pair{Topic: topic, Element: prop, Target: t})
			}
		}
	}
	return pairs
}
