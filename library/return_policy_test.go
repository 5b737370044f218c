package library_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DevinCastillo5/Library-App/library"
)

func Test_ParseReturnPolicy(t *testing.T) {
	policy, err := library.ParseReturnPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, library.RejectReReturn, policy)

	policy, err = library.ParseReturnPolicy(" Ignore ")
	assert.NoError(t, err)
	assert.Equal(t, library.IgnoreReReturn, policy)
	assert.Equal(t, "ignore", policy.String())

	_, err = library.ParseReturnPolicy("promote")
	assert.ErrorIs(t, err, library.ErrUnknownReturnPolicy)
}
