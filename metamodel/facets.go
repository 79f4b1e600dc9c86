package metamodel

import "strconv"

// Facets are the optional attributes of a property. A nil field means the
// facet is absent; a non-nil zero value is present and rendered.
type Facets struct {
	Index         *int    `yaml:"index,omitempty"`
	SortPos       *int    `yaml:"sortPos,omitempty"`
	PrimaryKey    *bool   `yaml:"primaryKey,omitempty"`
	Mandatory     *bool   `yaml:"mandatory,omitempty"`
	Namespace     *string `yaml:"namespace,omitempty"`
	Size          *int    `yaml:"size,omitempty"`
	Uploadable    *bool   `yaml:"uploadable,omitempty"`
	DefaultValue  *string `yaml:"defaultValue,omitempty"`
	InputType     *string `yaml:"inputType,omitempty"`
	AllowedValues *string `yaml:"allowedValues,omitempty"`
	ValuesFrom    *string `yaml:"values_from,omitempty"`
	FormatterURI  *string `yaml:"formatterURI,omitempty"`
	ShowInGrid    *bool   `yaml:"showInGrid,omitempty"`
}

// FacetEntry is one present facet rendered as text
type FacetEntry struct {
	Name  string
	Value string
}

// Entries returns the present facets in canonical order
func (f Facets) Entries() []FacetEntry {
	var entries []FacetEntry
	addInt := func(name string, v *int) {
		if v != nil {
			entries = append(entries, FacetEntry{name, strconv.Itoa(*v)})
		}
	}
	addBool := func(name string, v *bool) {
		if v != nil {
			entries = append(entries, FacetEntry{name, strconv.FormatBool(*v)})
		}
	}
	addString := func(name string, v *string) {
		if v != nil {
			entries = append(entries, FacetEntry{name, *v})
		}
	}

	addInt("index", f.Index)
	addInt("sortPos", f.SortPos)
	addBool("primaryKey", f.PrimaryKey)
	addBool("mandatory", f.Mandatory)
	addString("namespace", f.Namespace)
	addInt("size", f.Size)
	addBool("uploadable", f.Uploadable)
	addString("defaultValue", f.DefaultValue)
	addString("inputType", f.InputType)
	addString("allowedValues", f.AllowedValues)
	addString("values_from", f.ValuesFrom)
	addString("formatterURI", f.FormatterURI)
	addBool("showInGrid", f.ShowInGrid)
	return entries
}

// IsMandatory reports whether the mandatory facet is present and true
func (f Facets) IsMandatory() bool { return f.Mandatory != nil && *f.Mandatory }

// IsUploadable reports whether the uploadable facet is present and true
func (f Facets) IsUploadable() bool { return f.Uploadable != nil && *f.Uploadable }

// VisibleInGrid reports whether the property shows up in list queries.
// Absent means visible.
func (f Facets) VisibleInGrid() bool { return f.ShowInGrid == nil || *f.ShowInGrid }

// String returns the value of a string facet or "" when absent
func String(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
