package directory

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// knownSyntaxes guards schema documents against typos in syntax names.
var knownSyntaxes = map[AttributeSyntax]struct{}{
	"":              {},
	SyntaxString:    {},
	SyntaxInteger:   {},
	SyntaxBoolean:   {},
	SyntaxBinary:    {},
	SyntaxTimestamp: {},
	SyntaxDN:        {},
}

// LoadSchema decodes a DirectorySchema from a YAML document.
//
// Example document:
//
//	id: corp
//	name: Corporate Schema
//	objectClasses:
//	  - name: person
//	    kind: structural
//	    requiredAttributes: [cn, sn]
//	attributeTypes:
//	  - name: sn
//	    syntax: string
//	  - name: employeeNumber
//	    syntax: integer
//	    singleValue: true
func LoadSchema(r io.Reader) (*DirectorySchema, error) {
	var schema DirectorySchema
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&schema); err != nil {
		return nil, fmt.Errorf("decoding schema document: %w", err)
	}
	if strings.TrimSpace(schema.ID) == "" {
		return nil, fmt.Errorf("schema document is missing an id")
	}
	for _, at := range schema.AttributeTypes {
		if _, ok := knownSyntaxes[at.Syntax]; !ok {
			return nil, fmt.Errorf("attribute type %q declares unknown syntax %q", at.Name, at.Syntax)
		}
	}
	return &schema, nil
}

// LoadSchemaFile reads and decodes a YAML schema document from path.
func LoadSchemaFile(path string) (*DirectorySchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schema file: %w", err)
	}
	defer f.Close()
	schema, err := LoadSchema(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// RegisterSchemaFile loads a YAML schema document and registers it in one
// step.
func (d *Directory) RegisterSchemaFile(path string) (*DirectorySchema, error) {
	schema, err := LoadSchemaFile(path)
	if err != nil {
		return nil, err
	}
	return d.RegisterSchema(schema)
}

// LoadVirtualDirectoryConfig decodes a VirtualDirectoryConfig from a YAML
// document.
func LoadVirtualDirectoryConfig(r io.Reader) (*VirtualDirectoryConfig, error) {
	var cfg VirtualDirectoryConfig
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding virtual directory document: %w", err)
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, fmt.Errorf("virtual directory document is missing an id")
	}
	return &cfg, nil
}

// LoadVirtualDirectoryConfigFile reads and decodes a YAML virtual directory
// document from path.
func LoadVirtualDirectoryConfigFile(path string) (*VirtualDirectoryConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening virtual directory file: %w", err)
	}
	defer f.Close()
	cfg, err := LoadVirtualDirectoryConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
