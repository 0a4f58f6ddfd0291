package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryClone(t *testing.T) {
	original := &Entry{
		DN:          "cn=John,ou=Users,dc=example,dc=com",
		ObjectClass: []string{"inetOrgPerson"},
		CN:          "John",
		Attributes:  map[string]Value{"mail": Strings("a@x", "b@x")},
		ParentDN:    "ou=Users,dc=example,dc=com",
		Children:    []string{"cn=device,cn=John,ou=Users,dc=example,dc=com"},
	}

	clone := original.Clone()
	clone.ObjectClass[0] = "tampered"
	clone.Children[0] = "tampered"
	clone.Attributes["mail"].Elements()[0] = String("tampered")

	assert.Equal(t, "inetOrgPerson", original.ObjectClass[0])
	assert.Equal(t, "cn=device,cn=John,ou=Users,dc=example,dc=com", original.Children[0])
	mail, _ := original.Resolve("mail")
	assert.Equal(t, "a@x", mail.Elements()[0].Render())

	var none *Entry
	assert.Nil(t, none.Clone())
}

func TestEntryCloneKeepsEmptySlicesNonNil(t *testing.T) {
	original := &Entry{DN: "dc=example", ObjectClass: []string{}, Children: []string{}}

	clone := original.Clone()
	require.NotNil(t, clone.Children)
	require.NotNil(t, clone.ObjectClass)
	assert.Empty(t, clone.Children)

	// Nil stays nil; the clone does not invent slices.
	bare := (&Entry{DN: "dc=example"}).Clone()
	assert.Nil(t, bare.Children)
	assert.Nil(t, bare.ObjectClass)
}
