package datacite

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// TypeDOIs is the JSONAPI resource type for DOI records.
const TypeDOIs = "dois"

// Payload is the JSONAPI document enclosing a single DOI resource, the
// shape the API expects on create and update.
type Payload struct {
	Data Resource `json:"data"`
}

// Resource is the JSONAPI resource object for a DOI.
type Resource struct {
	ID         string     `json:"id,omitempty"`
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

// Attributes carries the registration metadata for a DOI. Only the fields
// this client works with are modeled; the API ignores absent ones and the
// full kernel schema is enforced separately.
type Attributes struct {
	DOI             string    `json:"doi,omitempty"`
	Prefix          string    `json:"prefix,omitempty"`
	Suffix          string    `json:"suffix,omitempty"`
	Event           string    `json:"event,omitempty"`
	URL             string    `json:"url,omitempty"`
	Creators        []Creator `json:"creators,omitempty"`
	Titles          []Title   `json:"titles,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationYear int       `json:"publicationYear,omitempty"`
	Types           *Types    `json:"types,omitempty"`
	Subjects        []Subject `json:"subjects,omitempty"`
	Language        string    `json:"language,omitempty"`
	SchemaVersion   string    `json:"schemaVersion,omitempty"`
}

// Creator is a person or organization responsible for the resource.
type Creator struct {
	Name       string `json:"name"`
	NameType   string `json:"nameType,omitempty"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`

	// Affiliation is schema-version dependent: plain strings up to
	// kernel 4.2, objects from 4.3 on. Kept loose so both round-trip.
	Affiliation []any `json:"affiliation,omitempty"`
}

// Title is one name of the resource, optionally language-tagged.
type Title struct {
	Title string `json:"title"`
	Lang  string `json:"lang,omitempty"`
}

// Types classifies the resource a DOI points at.
type Types struct {
	ResourceTypeGeneral string `json:"resourceTypeGeneral,omitempty"`
	ResourceType        string `json:"resourceType,omitempty"`
}

// Subject is a keyword or classification code describing the resource.
type Subject struct {
	Subject       string `json:"subject"`
	SubjectScheme string `json:"subjectScheme,omitempty"`
}

// NewPayload builds the JSONAPI document for registering doi with the
// given metadata attributes.
func NewPayload(doi string, attrs Attributes) *Payload {
	if attrs.DOI == "" {
		attrs.DOI = doi
	}
	return &Payload{
		Data: Resource{
			ID:         doi,
			Type:       TypeDOIs,
			Attributes: attrs,
		},
	}
}

// Validate checks that the document is structurally sound. This is the
// JSONAPI envelope check only, not kernel schema validation.
func (p *Payload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Data),
	)
}

// Validate checks the resource object.
func (r Resource) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(TypeDOIs)),
		validation.Field(&r.Attributes),
	)
}

// Validate checks the attribute values this client understands.
func (a Attributes) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Event, validation.In("publish", "register", "hide")),
		validation.Field(&a.URL, is.URL),
		validation.Field(&a.PublicationYear,
			validation.When(a.PublicationYear != 0, validation.Min(1000), validation.Max(9999))),
		validation.Field(&a.Titles),
	)
}

// Validate requires a title string.
func (t Title) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required),
	)
}

// Encode validates the document and renders it as JSONAPI bytes ready to
// send.
func (p *Payload) Encode() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// AttributesFromMap decodes a loosely typed metadata map into Attributes.
// Decoding is weakly typed because YAML front matter and hand-written JSON
// tend to carry years as strings and similar near-misses.
func AttributesFromMap(m map[string]any) (Attributes, error) {
	var attrs Attributes
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &attrs,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Attributes{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Attributes{}, fmt.Errorf("decoding attributes: %w", err)
	}
	return attrs, nil
}

// ParseMetadata reads a metadata document from JSON or YAML bytes into a
// map. JSON is tried first so that JSON files are not misread by the YAML
// parser's type coercions.
func ParseMetadata(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err == nil {
		return m, nil
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("metadata is neither valid JSON nor YAML: %w", err)
	}
	return m, nil
}
