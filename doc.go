// Package directory provides an in-memory hierarchical directory service
// with LDAP-style distinguished-name addressing.
//
// The package maintains a live tree of entries keyed by normalized DN, with
// parent/child links kept bidirectionally consistent on every mutation. On
// top of the tree it offers:
//   - compound boolean filter evaluation (AND/OR/NOT plus equality,
//     substring, presence, approximate and ordering operators)
//   - multi-scope search (base, one-level, subtree) with sorting, size
//     limits and attribute projection
//   - structural moves that re-key whole subtrees while preserving them
//   - schema registration and advisory entry validation
//   - keyed storage for virtual-directory federation configuration
//
// It is designed as the directory-service building block of an IAM stack:
// identity, credential and session subsystems use it as a DN-addressable
// attribute store through plain function calls. There is no network
// protocol and no persistence.
//
// # Basic Usage
//
//	dir := directory.New(directory.WithDefaultSchema())
//
//	_, err := dir.AddEntry(&directory.Entry{
//		DN:          "dc=example,dc=com",
//		ObjectClass: []string{"domain"},
//		CN:          "example",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := dir.Search(directory.SearchRequest{
//		BaseDN: "dc=example,dc=com",
//		Scope:  directory.ScopeSubtree,
//		Filter: directory.Eq("department", directory.String("Engineering")),
//	})
//
// All returned entries are independent copies; mutating a result never
// affects stored state. Every Directory instance owns its own stores and is
// safe for concurrent use.
//
// # Distinguished names
//
// The DN codec is positional: components are split on commas and attribute
// names are lower-cased, without escape handling for commas embedded in
// values. ValidateDN exposes a strict RFC 4514 syntax check for callers that
// need one.
package directory
