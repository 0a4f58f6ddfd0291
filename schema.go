package directory

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ObjectClassKind distinguishes structural, auxiliary and abstract object
// classes.
type ObjectClassKind string

const (
	ClassStructural ObjectClassKind = "structural"
	ClassAuxiliary  ObjectClassKind = "auxiliary"
	ClassAbstract   ObjectClassKind = "abstract"
)

// AttributeSyntax names the value syntax an attribute type enforces.
type AttributeSyntax string

const (
	SyntaxString    AttributeSyntax = "string"
	SyntaxInteger   AttributeSyntax = "integer"
	SyntaxBoolean   AttributeSyntax = "boolean"
	SyntaxBinary    AttributeSyntax = "binary"
	SyntaxTimestamp AttributeSyntax = "timestamp"
	SyntaxDN        AttributeSyntax = "dn"
)

// ObjectClassDef declares which attributes entries of a class must and may
// carry.
type ObjectClassDef struct {
	Name               string          `yaml:"name" json:"name"`
	SuperClass         string          `yaml:"superClass,omitempty" json:"superClass,omitempty"`
	Kind               ObjectClassKind `yaml:"kind,omitempty" json:"kind,omitempty"`
	RequiredAttributes []string        `yaml:"requiredAttributes,omitempty" json:"requiredAttributes,omitempty"`
	OptionalAttributes []string        `yaml:"optionalAttributes,omitempty" json:"optionalAttributes,omitempty"`
}

// AttributeTypeDef declares the syntax and cardinality of an attribute, and
// whether the store maintains an equality index for it.
type AttributeTypeDef struct {
	Name        string          `yaml:"name" json:"name"`
	Syntax      AttributeSyntax `yaml:"syntax" json:"syntax"`
	SingleValue bool            `yaml:"singleValue,omitempty" json:"singleValue,omitempty"`
	Indexed     bool            `yaml:"indexed,omitempty" json:"indexed,omitempty"`
}

// DirectorySchema is a named collection of object-class and attribute-type
// definitions. Several schemas can be registered at once; validation
// considers all of them.
type DirectorySchema struct {
	ID             string             `yaml:"id" json:"id"`
	Name           string             `yaml:"name,omitempty" json:"name,omitempty"`
	ObjectClasses  []ObjectClassDef   `yaml:"objectClasses,omitempty" json:"objectClasses,omitempty"`
	AttributeTypes []AttributeTypeDef `yaml:"attributeTypes,omitempty" json:"attributeTypes,omitempty"`
}

// Clone returns a deep copy of the schema.
func (s *DirectorySchema) Clone() *DirectorySchema {
	if s == nil {
		return nil
	}
	clone := *s
	clone.ObjectClasses = make([]ObjectClassDef, len(s.ObjectClasses))
	for i, oc := range s.ObjectClasses {
		oc.RequiredAttributes = append([]string(nil), oc.RequiredAttributes...)
		oc.OptionalAttributes = append([]string(nil), oc.OptionalAttributes...)
		clone.ObjectClasses[i] = oc
	}
	clone.AttributeTypes = append([]AttributeTypeDef(nil), s.AttributeTypes...)
	return &clone
}

// ValidationResult reports the outcome of validating one entry: Valid is
// true exactly when Errors is empty.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// RegisterSchema stores a schema under its ID, replacing any schema already
// registered with the same ID, and rebuilds the attribute index to honor the
// schema's indexed attribute types. Returns a copy of the stored schema.
func (d *Directory) RegisterSchema(schema *DirectorySchema) (*DirectorySchema, error) {
	if schema == nil || strings.TrimSpace(schema.ID) == "" {
		return nil, operationError("RegisterSchema", "", fmt.Errorf("schema id must not be empty"))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registerSchemaLocked(schema)
	d.logger.Debug("schema_registered",
		slog.String("schema_id", schema.ID),
		slog.Int("object_class_count", len(schema.ObjectClasses)))
	return schema.Clone(), nil
}

// registerSchemaLocked stores the schema and rebuilds the index. Caller
// holds the write lock (or is inside New, before the Directory escapes).
func (d *Directory) registerSchemaLocked(schema *DirectorySchema) {
	if _, exists := d.schemas[schema.ID]; !exists {
		d.schemaOrder = append(d.schemaOrder, schema.ID)
	}
	d.schemas[schema.ID] = schema.Clone()
	d.rebuildIndex()
}

// GetSchema returns a copy of the schema registered under id, or
// ErrSchemaNotFound.
func (d *Directory) GetSchema(id string) (*DirectorySchema, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	schema, ok := d.schemas[id]
	if !ok {
		return nil, operationError("GetSchema", "", ErrSchemaNotFound).WithContext("schema_id", id)
	}
	return schema.Clone(), nil
}

// ValidateEntry checks entry against every registered schema and reports all
// violations. For each object-class definition named in the entry's
// objectClass list, every required attribute must be present as a top-level
// field or an attributes-map key. Independently, attribute values are
// checked against their declared syntax and cardinality wherever a matching
// attribute-type definition exists.
//
// Validation is advisory: it never fails the call and is not run
// automatically by AddEntry or ModifyEntry.
func (d *Directory) ValidateEntry(entry *Entry) ValidationResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var errs []string
	if entry == nil {
		return ValidationResult{Valid: false, Errors: []string{"entry is nil"}}
	}
	for _, id := range d.schemaOrder {
		schema := d.schemas[id]
		for _, oc := range schema.ObjectClasses {
			if !entry.HasObjectClass(oc.Name) {
				continue
			}
			for _, required := range oc.RequiredAttributes {
				if !entry.HasAttribute(required) {
					errs = append(errs, fmt.Sprintf("Missing required attribute '%s' for object class '%s'", required, oc.Name))
				}
			}
		}
		for _, at := range schema.AttributeTypes {
			value, ok := resolveAttributeKey(entry, at.Name)
			if !ok {
				continue
			}
			if at.SingleValue && value.IsList() {
				errs = append(errs, fmt.Sprintf("Attribute '%s' must be single-valued", at.Name))
			}
			for _, elem := range value.Elements() {
				if !checkSyntax(elem, at.Syntax) {
					errs = append(errs, fmt.Sprintf("Invalid value '%s' for attribute '%s': expected %s syntax", elem.Render(), at.Name, at.Syntax))
				}
			}
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// resolveAttributeKey finds an attributes-map value by case-insensitive key.
// Unlike Entry.Resolve it never falls back to top-level fields; syntax rules
// only apply to the attribute map.
func resolveAttributeKey(entry *Entry, name string) (Value, bool) {
	if entry.Attributes == nil {
		return Value{}, false
	}
	if v, ok := entry.Attributes[name]; ok {
		return v, true
	}
	for k, v := range entry.Attributes {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return Value{}, false
}

// timestampLayouts are accepted when checking timestamp syntax.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// checkSyntax reports whether a scalar value satisfies the declared syntax.
func checkSyntax(v Value, syntax AttributeSyntax) bool {
	switch syntax {
	case SyntaxString, "":
		return true
	case SyntaxInteger:
		switch v.Kind() {
		case KindInt:
			return true
		case KindFloat:
			f, _ := v.numeric()
			return f == float64(int64(f))
		default:
			_, err := strconv.ParseInt(v.Render(), 10, 64)
			return err == nil
		}
	case SyntaxBoolean:
		if v.Kind() == KindBool {
			return true
		}
		s := strings.ToLower(v.Render())
		return s == "true" || s == "false"
	case SyntaxBinary:
		// Binary payloads travel as strings; any other scalar shape is a
		// modelling mistake.
		return v.Kind() == KindString
	case SyntaxTimestamp:
		for _, layout := range timestampLayouts {
			if _, err := time.Parse(layout, v.Render()); err == nil {
				return true
			}
		}
		return false
	case SyntaxDN:
		return strings.Contains(v.Render(), "=")
	default:
		return true
	}
}

// DefaultSchema returns the built-in minimal schema covering the common
// object classes used across IAM subsystems. Register it via
// WithDefaultSchema or RegisterSchema.
func DefaultSchema() *DirectorySchema {
	return &DirectorySchema{
		ID:   "default",
		Name: "Default Directory Schema",
		ObjectClasses: []ObjectClassDef{
			{Name: "top", Kind: ClassAbstract},
			{Name: "person", SuperClass: "top", Kind: ClassStructural, RequiredAttributes: []string{"cn", "sn"}, OptionalAttributes: []string{"mail", "uid", "telephoneNumber", "department"}},
			{Name: "inetOrgPerson", SuperClass: "person", Kind: ClassStructural, RequiredAttributes: []string{"cn", "sn"}, OptionalAttributes: []string{"mail", "uid", "displayName", "employeeNumber"}},
			{Name: "groupOfNames", SuperClass: "top", Kind: ClassStructural, RequiredAttributes: []string{"cn"}, OptionalAttributes: []string{"member", "description", "owner"}},
			{Name: "organizationalUnit", SuperClass: "top", Kind: ClassStructural, RequiredAttributes: []string{"ou"}, OptionalAttributes: []string{"description"}},
			{Name: "organization", SuperClass: "top", Kind: ClassStructural, RequiredAttributes: []string{"o"}, OptionalAttributes: []string{"description"}},
			{Name: "domain", SuperClass: "top", Kind: ClassStructural, RequiredAttributes: []string{"dc"}, OptionalAttributes: []string{"description"}},
		},
		AttributeTypes: []AttributeTypeDef{
			{Name: "cn", Syntax: SyntaxString, Indexed: true},
			{Name: "sn", Syntax: SyntaxString},
			{Name: "uid", Syntax: SyntaxString, SingleValue: true, Indexed: true},
			{Name: "mail", Syntax: SyntaxString, Indexed: true},
			{Name: "ou", Syntax: SyntaxString},
			{Name: "o", Syntax: SyntaxString},
			{Name: "dc", Syntax: SyntaxString, SingleValue: true},
			{Name: "member", Syntax: SyntaxDN},
			{Name: "owner", Syntax: SyntaxDN, SingleValue: true},
			{Name: "description", Syntax: SyntaxString},
			{Name: "displayName", Syntax: SyntaxString, SingleValue: true},
			{Name: "employeeNumber", Syntax: SyntaxInteger, SingleValue: true},
			{Name: "telephoneNumber", Syntax: SyntaxString},
			{Name: "department", Syntax: SyntaxString, SingleValue: true, Indexed: true},
			{Name: EntryUUIDAttribute, Syntax: SyntaxString, SingleValue: true},
		},
	}
}
