package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ana@example.com"))
	assert.True(t, IsValidEmail("ana.souza+tag@sub.example.com.br"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("ana"))
	assert.False(t, IsValidEmail("ana@"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail("ana @example.com"))
	assert.False(t, IsValidEmail("ana@example"))
}

func TestIsValidCPF(t *testing.T) {
	// Valid check digits.
	assert.True(t, IsValidCPF("52998224725"))
	assert.True(t, IsValidCPF("529.982.247-25"))
	assert.True(t, IsValidCPF("15350946056"))

	// Wrong check digit.
	assert.False(t, IsValidCPF("52998224726"))
	// Repeated digits pass the checksum but are not real CPFs.
	assert.False(t, IsValidCPF("11111111111"))
	assert.False(t, IsValidCPF("00000000000"))
	// Wrong length.
	assert.False(t, IsValidCPF("1234567890"))
	assert.False(t, IsValidCPF(""))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Abcdef12"))
	assert.True(t, IsStrongPassword("S3nhaForte"))

	assert.False(t, IsStrongPassword("Abc12"))      // too short
	assert.False(t, IsStrongPassword("abcdef12"))   // no upper case
	assert.False(t, IsStrongPassword("ABCDEF12"))   // no lower case
	assert.False(t, IsStrongPassword("Abcdefgh"))   // no digit
}

func TestCanActOn(t *testing.T) {
	collaborator := User{ID: "c-1", Role: RoleCollaborator, ManagerID: "m-1"}
	teammate := User{ID: "c-2", Role: RoleCollaborator, ManagerID: "m-1"}
	manager := User{ID: "m-1", Role: RoleManager}
	otherManager := User{ID: "m-2", Role: RoleManager}
	director := User{ID: "d-1", Role: RoleDirector}

	assert.True(t, CanActOn(collaborator, collaborator))
	assert.False(t, CanActOn(collaborator, teammate))
	assert.True(t, CanActOn(manager, collaborator))
	assert.False(t, CanActOn(otherManager, collaborator))
	assert.True(t, CanActOn(director, collaborator))
	assert.True(t, CanActOn(director, manager))
}
