package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/backend/internal/domain/filters"
	apperrors "github.com/artisanmarket/backend/pkg/errors"
)

func TestUnavailableAdapterRejectsTextSearch(t *testing.T) {
	adapter := NewUnavailableAdapter()

	f := filters.New()
	f.Text = "ceramic vase"
	records, err := adapter.Retrieve(context.Background(), f)

	require.Error(t, err)
	assert.Nil(t, records)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}
