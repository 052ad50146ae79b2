package errors_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindOfWalksWrappedChain(t *testing.T) {
	err := errors.Wrap(apperrors.ErrNoAccessToTenant, "[Resolver] binding")

	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	require.True(t, apperrors.Is(err, apperrors.ErrNoAccessToTenant))
	require.Equal(t, apperrors.ErrNoAccessToTenant.Message, apperrors.Message(err))
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("connection reset")

	require.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	require.Equal(t, apperrors.ErrInternal.Message, apperrors.Message(err))
}

func TestInvalidFormatsMessage(t *testing.T) {
	err := apperrors.Invalid("name must have at least %d characters", 3)

	require.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
	require.Equal(t, "name must have at least 3 characters", err.Error())
}

func TestWrapfNil(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "context"))
	require.ErrorIs(t, apperrors.Wrapf(apperrors.ErrTenantNotFound, "lookup %s", "acme"), apperrors.ErrTenantNotFound)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "upstream_failure", apperrors.KindUpstreamFailure.String())
	require.Equal(t, "internal", apperrors.Kind(99).String())
}
