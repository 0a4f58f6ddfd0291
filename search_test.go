package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchDNs(t *testing.T, d *Directory, req SearchRequest) []string {
	t.Helper()
	results, err := d.Search(req)
	require.NoError(t, err)
	dns := make([]string, len(results))
	for i, e := range results {
		dns[i] = e.DN
	}
	return dns
}

func TestSearchScopes(t *testing.T) {
	d := buildTestTree(t)

	t.Run("base", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{BaseDN: "ou=Users,dc=example,dc=com", Scope: ScopeBase})
		assert.Equal(t, []string{"ou=Users,dc=example,dc=com"}, dns)
	})

	t.Run("one-level excludes base and grandchildren", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{BaseDN: "dc=example,dc=com", Scope: ScopeOneLevel})
		assert.ElementsMatch(t, []string{
			"ou=Users,dc=example,dc=com",
			"ou=Groups,dc=example,dc=com",
		}, dns)
	})

	t.Run("subtree includes base", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{BaseDN: "ou=Users,dc=example,dc=com", Scope: ScopeSubtree})
		assert.Equal(t, []string{
			"ou=Users,dc=example,dc=com",
			"cn=John,ou=Users,dc=example,dc=com",
			"cn=Jane,ou=Users,dc=example,dc=com",
		}, dns)
	})

	t.Run("empty scope defaults to subtree", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{BaseDN: "dc=example,dc=com"})
		assert.Len(t, dns, 6)
	})
}

func TestSearchUnknownBase(t *testing.T) {
	d := buildTestTree(t)

	results, err := d.Search(SearchRequest{BaseDN: "ou=Missing,dc=example,dc=com"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestSearchFilter(t *testing.T) {
	d := buildTestTree(t)

	t.Run("case-insensitive equality", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{
			BaseDN: "dc=example,dc=com",
			Filter: Eq("department", String("engineering")),
		})
		assert.Equal(t, []string{"cn=John,ou=Users,dc=example,dc=com"}, dns)
	})

	t.Run("compound", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{
			BaseDN: "dc=example,dc=com",
			Filter: And(Eq("objectClass", String("inetOrgPerson")), Ge("level", Int(4))),
		})
		assert.Equal(t, []string{"cn=Jane,ou=Users,dc=example,dc=com"}, dns)
	})

	t.Run("parsed filter", func(t *testing.T) {
		f, err := ParseFilter("(|(sn=Doe)(sn=Smith))")
		require.NoError(t, err)
		dns := searchDNs(t, d, SearchRequest{BaseDN: "ou=Users,dc=example,dc=com", Filter: f})
		assert.Len(t, dns, 2)
	})

	t.Run("scope restricts filter matches", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{
			BaseDN: "ou=Groups,dc=example,dc=com",
			Filter: Eq("department", String("Engineering")),
		})
		assert.Empty(t, dns)
	})
}

func TestSearchSorting(t *testing.T) {
	d := buildTestTree(t)
	people := Eq("entryType", String("user"))

	t.Run("ascending numeric", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{BaseDN: "dc=example,dc=com", Filter: people, SortBy: "level"})
		assert.Equal(t, []string{
			"cn=John,ou=Users,dc=example,dc=com",
			"cn=Jane,ou=Users,dc=example,dc=com",
		}, dns)
	})

	t.Run("descending string", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{
			BaseDN: "dc=example,dc=com", Filter: people, SortBy: "sn", SortDescending: true,
		})
		assert.Equal(t, []string{
			"cn=Jane,ou=Users,dc=example,dc=com", // Smith
			"cn=John,ou=Users,dc=example,dc=com", // Doe
		}, dns)
	})

	t.Run("missing sort key keeps traversal order", func(t *testing.T) {
		dns := searchDNs(t, d, SearchRequest{
			BaseDN: "ou=Users,dc=example,dc=com", SortBy: "telephoneNumber",
		})
		assert.Equal(t, []string{
			"ou=Users,dc=example,dc=com",
			"cn=John,ou=Users,dc=example,dc=com",
			"cn=Jane,ou=Users,dc=example,dc=com",
		}, dns)
	})
}

func TestSearchSizeLimit(t *testing.T) {
	d := buildTestTree(t)

	results, err := d.Search(SearchRequest{
		BaseDN:    "dc=example,dc=com",
		Filter:    Eq("entryType", String("user")),
		SortBy:    "level",
		SizeLimit: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cn=John,ou=Users,dc=example,dc=com", results[0].DN, "limit applies after sorting")
}

func TestSearchProjection(t *testing.T) {
	d := buildTestTree(t)

	results, err := d.Search(SearchRequest{
		BaseDN:     "cn=John,ou=Users,dc=example,dc=com",
		Scope:      ScopeBase,
		Attributes: []string{"Department", "nonexistent"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	require.Len(t, got.Attributes, 1)
	dept, ok := got.Resolve("department")
	require.True(t, ok)
	assert.Equal(t, "Engineering", dept.Render())

	// Top-level fields survive projection.
	assert.Equal(t, "John", got.CN)
	assert.Equal(t, []string{"inetOrgPerson"}, got.ObjectClass)
}

func TestSearchReturnsCopies(t *testing.T) {
	d := buildTestTree(t)

	results, err := d.Search(SearchRequest{BaseDN: "cn=Jane,ou=Users,dc=example,dc=com", Scope: ScopeBase})
	require.NoError(t, err)
	require.Len(t, results, 1)
	results[0].Attributes["department"] = String("tampered")
	results[0].CN = "tampered"

	fresh, err := d.GetEntry("cn=Jane,ou=Users,dc=example,dc=com")
	require.NoError(t, err)
	dept, _ := fresh.Resolve("department")
	assert.Equal(t, "Sales", dept.Render())
	assert.Equal(t, "Jane", fresh.CN)
}

func TestSearchIndexEquivalence(t *testing.T) {
	// The default schema marks department as indexed; with indexing on, a
	// single-equality search takes the fast path. Results must be identical
	// with and without it.
	run := func(d *Directory) []string {
		return searchDNs(t, d, SearchRequest{
			BaseDN: "dc=example,dc=com",
			Filter: Eq("department", String("ENGINEERING")),
		})
	}

	indexed := buildTestTree(t, WithDefaultSchema(), WithIndexing(true))
	plain := buildTestTree(t, WithDefaultSchema(), WithIndexing(false))

	want := []string{"cn=John,ou=Users,dc=example,dc=com"}
	assert.Equal(t, want, run(indexed))
	assert.Equal(t, want, run(plain))
}

func TestSearchIndexCoversTopLevelFields(t *testing.T) {
	// cn is indexed by the default schema but lives on the entry struct, not
	// in the attribute map; the fast path must still find it.
	d := buildTestTree(t, WithDefaultSchema(), WithIndexing(true))

	dns := searchDNs(t, d, SearchRequest{
		BaseDN: "dc=example,dc=com",
		Filter: Eq("cn", String("john")),
	})
	assert.Equal(t, []string{"cn=John,ou=Users,dc=example,dc=com"}, dns)
}

func TestSearchIndexedMissBypassesScan(t *testing.T) {
	d := buildTestTree(t, WithDefaultSchema(), WithIndexing(true))

	dns := searchDNs(t, d, SearchRequest{
		BaseDN: "dc=example,dc=com",
		Filter: Eq("department", String("Finance")),
	})
	assert.Empty(t, dns)
}

func TestCompare(t *testing.T) {
	d := buildTestTree(t)

	tests := []struct {
		name      string
		dn        string
		attribute string
		value     Value
		want      bool
	}{
		{"match", "cn=John,ou=Users,dc=example,dc=com", "department", String("Engineering"), true},
		{"case-insensitive match", "cn=John,ou=Users,dc=example,dc=com", "department", String("ENGINEERING"), true},
		{"mismatch", "cn=John,ou=Users,dc=example,dc=com", "department", String("Sales"), false},
		{"top-level field", "cn=John,ou=Users,dc=example,dc=com", "cn", String("John"), true},
		{"numeric coercion", "cn=John,ou=Users,dc=example,dc=com", "level", String("3"), true},
		{"absent attribute", "cn=John,ou=Users,dc=example,dc=com", "telephoneNumber", String("x"), false},
		{"list membership", "cn=Admins,ou=Groups,dc=example,dc=com", "member", String("cn=john,ou=users,dc=example,dc=com"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Compare(tt.dn, tt.attribute, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := d.Compare("cn=ghost,dc=example,dc=com", "cn", String("ghost"))
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
