// Package testing holds fixtures shared by package tests.
package testing

import (
	"testing"

	"github.com/teranos/ypgen/metamodel"
)

// CityYAML describes the City/Country context used across tests
const CityYAML = `name: CityContext
wikiUrl: https://wiki.example.org
topics:
  - name: City
    pluralName: Cities
    icon: city
    documentation: a settlement
    wikiDocumentation: A '''City''' is a large settlement
    defaultstoremode: property
    properties:
      - name: name
        type: Text
        label: Name
        index: 1
        mandatory: true
      - name: population
        type: Number
        label: Population
        index: 2
  - name: Country
    pluralName: Countries
    documentation: a nation state
    wikiDocumentation: A '''Country''' is a nation state
    defaultstoremode: property
    properties:
      - name: name
        type: Text
        index: 1
topicLinks:
  - name: countryCities
    source: Country
    sourceRole: country
    target: City
    targetRole: cities
    targetMultiple: true
`

// CityContext returns a freshly parsed City/Country context.
// City has exactly two properties: name (Text) and population (Number).
func CityContext(t *testing.T) *metamodel.Context {
	t.Helper()
	ctx, err := metamodel.Parse([]byte(CityYAML))
	if err != nil {
		t.Fatalf("Failed to parse city context: %v", err)
	}
	return ctx
}

// City returns the City topic of a fresh CityContext
func City(t *testing.T) *metamodel.Topic {
	t.Helper()
	city, ok := CityContext(t).Topic("City")
	if !ok {
		t.Fatal("City topic missing from fixture")
	}
	return city
}
