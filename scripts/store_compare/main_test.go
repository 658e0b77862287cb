package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

func TestDiffRegistries(t *testing.T) {
	remote := []models.Donor{
		{ID: "1", Name: "John Doe", Phone: "+1234567890", Version: 1},
		{ID: "2", Name: "Sarah Smith", IsBlocked: true},
		{ID: "4", Name: "Remote Only"},
	}
	local := []models.Donor{
		{ID: "1", Name: "John Doe", Phone: "+1234567890", Version: 9, PasswordHash: "x"},
		{ID: "2", Name: "Sarah Smith"},
		{ID: "3", Name: "Local Only"},
	}

	diffs := diffRegistries(remote, local)
	assert.Equal(t, []difference{
		{ID: "2", Kind: "changed", Fields: []string{"isBlocked"}},
		{ID: "3", Kind: "local-only"},
		{ID: "4", Kind: "remote-only"},
	}, diffs)
}

func TestDiffRegistriesIdentical(t *testing.T) {
	donors := []models.Donor{{ID: "1", Name: "A"}}
	assert.Empty(t, diffRegistries(donors, donors))
}
