// Package schema validates DOI metadata against the DataCite kernel
// metadata schemas. Registration payloads that fail here would be
// rejected by the API anyway, so callers validate before spending a
// round trip.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnsupportedVersion is returned for kernel schema versions this
// package has no schema for.
var ErrUnsupportedVersion = errors.New("unsupported kernel schema version")

// Version selects which kernel metadata schema to validate against.
type Version string

const (
	// V42 is kernel schema 4.2, the last release with plain-string
	// affiliations.
	V42 Version = "4.2"

	// V43 is kernel schema 4.3, which turned affiliations into
	// structured objects.
	V43 Version = "4.3"
)

// DefaultVersion is used when no version is given.
const DefaultVersion = V43

// Versions lists the supported kernel schema versions, oldest first.
func Versions() []Version {
	return []Version{V42, V43}
}

// ParseVersion maps a version string onto a supported Version.
func ParseVersion(s string) (Version, error) {
	switch Version(strings.TrimPrefix(s, "v")) {
	case V42:
		return V42, nil
	case V43:
		return V43, nil
	}
	return "", fmt.Errorf("%w %q (supported: 4.2, 4.3)", ErrUnsupportedVersion, s)
}

//go:embed schemas/datacite-*.json
var embedded embed.FS

// Error reports that a metadata document does not conform to a kernel
// schema version. Err aggregates one entry per violation, each prefixed
// with the JSON pointer of the offending value.
type Error struct {
	Version Version
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("metadata does not conform to kernel schema %s: %v", e.Version, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidatorConfig configures a metadata validator.
type ValidatorConfig struct {
	// SchemaDir optionally points at a directory holding
	// datacite-<version>.json files that replace the embedded schemas,
	// for repositories tracking unreleased schema revisions.
	SchemaDir string

	// Fs is the filesystem SchemaDir is resolved on. Defaults to the
	// OS filesystem.
	Fs afero.Fs

	// Logger for validation diagnostics. Defaults to a null logger.
	Logger hclog.Logger
}

// Validator checks metadata documents against compiled kernel schemas.
// It is safe for concurrent use.
type Validator struct {
	schemas map[Version]*jsonschema.Schema
	log     hclog.Logger
}

// NewValidator compiles the kernel schemas for every supported version.
func NewValidator(cfg ValidatorConfig) (*Validator, error) {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	log := cfg.Logger.Named("schema")

	compiler := jsonschema.NewCompiler()
	schemas := make(map[Version]*jsonschema.Schema, len(Versions()))
	for _, version := range Versions() {
		raw, source, err := schemaSource(cfg, version)
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing kernel schema %s: %w", version, err)
		}
		loc := schemaURL(version)
		if err := compiler.AddResource(loc, doc); err != nil {
			return nil, fmt.Errorf("adding kernel schema %s: %w", version, err)
		}
		compiled, err := compiler.Compile(loc)
		if err != nil {
			return nil, fmt.Errorf("compiling kernel schema %s: %w", version, err)
		}
		schemas[version] = compiled
		log.Debug("kernel schema loaded", "version", version, "source", source)
	}

	return &Validator{
		schemas: schemas,
		log:     log,
	}, nil
}

// ValidateBytes checks a raw JSON metadata document against the kernel
// schema for the given version. A nil return means the document conforms.
func (v *Validator) ValidateBytes(version Version, b []byte) error {
	compiled, ok := v.schemas[version]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnsupportedVersion, version)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("metadata is not valid JSON: %w", err)
	}

	return v.validate(version, compiled, inst)
}

// Validate checks any JSON-marshalable metadata value, maps and structs
// included, against the kernel schema for the given version.
func (v *Validator) Validate(version Version, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return v.ValidateBytes(version, b)
}

func (v *Validator) validate(version Version, compiled *jsonschema.Schema, inst any) error {
	err := compiled.Validate(inst)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var merr *multierror.Error
	for _, leaf := range leaves(ve) {
		merr = multierror.Append(merr, fmt.Errorf("%s: %s",
			instancePointer(leaf.InstanceLocation),
			leaf.ErrorKind.LocalizedString(englishPrinter),
		))
	}

	v.log.Debug("metadata failed kernel schema validation",
		"version", version,
		"violations", len(merr.Errors),
	)
	return &Error{Version: version, Err: merr.ErrorOrNil()}
}

var englishPrinter = message.NewPrinter(language.English)

// leaves collects the innermost causes of a validation error tree; the
// intermediate nodes only restate which subschemas failed.
func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

func instancePointer(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

func schemaSource(cfg ValidatorConfig, version Version) ([]byte, string, error) {
	name := fmt.Sprintf("datacite-%s.json", version)
	if cfg.SchemaDir != "" {
		p := filepath.Join(cfg.SchemaDir, name)
		raw, err := afero.ReadFile(cfg.Fs, p)
		if err != nil {
			return nil, "", fmt.Errorf("reading kernel schema %s: %w", p, err)
		}
		return raw, p, nil
	}
	raw, err := embedded.ReadFile(path.Join("schemas", name))
	if err != nil {
		return nil, "", fmt.Errorf("embedded kernel schema %s: %w", name, err)
	}
	return raw, "embedded", nil
}

func schemaURL(version Version) string {
	return fmt.Sprintf("https://schema.datacite.org/meta/kernel-%s/metadata.json", version)
}
