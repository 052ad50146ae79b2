package fakecampaignrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-tenant-auth/campaigns"
	fakecampaignrepo "github.com/jrsteele09/go-tenant-auth/campaigns/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeCampaignRepoScopesByTenant(t *testing.T) {
	ctx := context.Background()
	repo := fakecampaignrepo.NewFakeCampaignRepo()

	c := &campaigns.Campaign{TenantID: "t1", Name: "Summer Sale", TargetGender: campaigns.TargetBoth, StartDate: time.Now()}
	require.NoError(t, repo.Create(ctx, c))

	found, err := repo.GetByName(ctx, "t1", "summer sale")
	require.NoError(t, err)
	require.Equal(t, c.ID, found.ID)

	other, err := repo.Get(ctx, "t2", c.ID)
	require.NoError(t, err)
	require.Nil(t, other)

	list, err := repo.List(ctx, "t2")
	require.NoError(t, err)
	require.Empty(t, list)

	require.Error(t, repo.Delete(ctx, "t2", c.ID))
	require.NoError(t, repo.Delete(ctx, "t1", c.ID))

	gone, err := repo.Get(ctx, "t1", c.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestTargetGenderValid(t *testing.T) {
	require.True(t, campaigns.TargetFemale.Valid())
	require.False(t, campaigns.TargetGender("other").Valid())
}
