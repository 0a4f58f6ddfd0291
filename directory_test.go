package directory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDirectoryLifecycle drives one directory through the full surface:
// building a tree, validating against a schema, searching, reorganizing and
// cleaning up.
func TestDirectoryLifecycle(t *testing.T) {
	d := New(WithDefaultSchema())

	for _, e := range []*Entry{
		{DN: "dc=example,dc=com", ObjectClass: []string{"domain"}, CN: "example",
			Attributes: map[string]Value{"dc": String("example")}},
		{DN: "ou=Users,dc=example,dc=com", ObjectClass: []string{"organizationalUnit"}, CN: "Users",
			Attributes: map[string]Value{"ou": String("Users")}},
		{DN: "ou=Archive,dc=example,dc=com", ObjectClass: []string{"organizationalUnit"}, CN: "Archive",
			Attributes: map[string]Value{"ou": String("Archive")}},
		{DN: "cn=Alice,ou=Users,dc=example,dc=com", ObjectClass: []string{"inetOrgPerson"}, CN: "Alice",
			Attributes: map[string]Value{"sn": String("Anders"), "mail": String("alice@example.com"), "department": String("Engineering")}},
		{DN: "cn=Carol,ou=Users,dc=example,dc=com", ObjectClass: []string{"inetOrgPerson"}, CN: "Carol",
			Attributes: map[string]Value{"sn": String("Chen"), "department": String("Engineering")}},
	} {
		_, err := d.AddEntry(e)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, d.EntryCount())

	// Every stored person conforms to the default schema.
	for _, entry := range d.GetChildren("ou=Users,dc=example,dc=com") {
		result := d.ValidateEntry(entry)
		assert.True(t, result.Valid, "%s: %v", entry.DN, result.Errors)
	}

	// Filter search via the string parser.
	f, err := ParseFilter("(&(objectClass=inetOrgPerson)(department=engineering))")
	require.NoError(t, err)
	engineers, err := d.Search(SearchRequest{BaseDN: "dc=example,dc=com", Filter: f, SortBy: "cn"})
	require.NoError(t, err)
	require.Len(t, engineers, 2)
	assert.Equal(t, "cn=Alice,ou=Users,dc=example,dc=com", engineers[0].DN)

	// Modify, then compare.
	_, err = d.ModifyEntry("cn=Carol,ou=Users,dc=example,dc=com", map[string]Value{
		"department": String("Platform"),
		"modifiedBy": String("cn=admin"),
	})
	require.NoError(t, err)
	equal, err := d.Compare("cn=Carol,ou=Users,dc=example,dc=com", "department", String("platform"))
	require.NoError(t, err)
	assert.True(t, equal)
	carol, err := d.GetEntry("cn=Carol,ou=Users,dc=example,dc=com")
	require.NoError(t, err)
	assert.Equal(t, "cn=admin", carol.ModifiedBy)

	// Reorganize: archive Carol, then retire her record.
	_, err = d.MoveEntry("cn=Carol,ou=Users,dc=example,dc=com", "ou=Archive,dc=example,dc=com")
	require.NoError(t, err)
	require.NoError(t, d.DeleteEntry("cn=Carol,ou=Archive,dc=example,dc=com"))
	assert.Equal(t, 4, d.EntryCount())

	remaining, err := d.Search(SearchRequest{BaseDN: "dc=example,dc=com", Filter: Eq("entryType", String("user"))})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "cn=Alice,ou=Users,dc=example,dc=com", remaining[0].DN)
}

func TestDirectoryInstancesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	_, err := a.AddEntry(&Entry{DN: "dc=a", CN: "a"})
	require.NoError(t, err)

	assert.Equal(t, 1, a.EntryCount())
	assert.Equal(t, 0, b.EntryCount())
	_, err = b.GetEntry("dc=a")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestDirectoryConcurrentAccess(t *testing.T) {
	d := New(WithDefaultSchema())
	_, err := d.AddEntry(&Entry{DN: "dc=example,dc=com", ObjectClass: []string{"domain"}, CN: "example"})
	require.NoError(t, err)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				dn := fmt.Sprintf("cn=user-%d-%d,dc=example,dc=com", w, i)
				if _, err := d.AddEntry(&Entry{DN: dn, ObjectClass: []string{"person"}, CN: fmt.Sprintf("user-%d-%d", w, i)}); err != nil {
					t.Error(err)
					return
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := d.Search(SearchRequest{BaseDN: "dc=example,dc=com", Filter: Present("cn")}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1+writers*perWriter, d.EntryCount())
}
