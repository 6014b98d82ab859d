package accounts

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

func account(id string, status sweeptypes.AccountStatus) sweeptypes.Account {
	return sweeptypes.Account{ID: id, Name: "acct-" + id, Status: status}
}

func TestDirectory_ListFollowsEveryPage(t *testing.T) {
	pages := map[string]*organizations.ListAccountsOutput{
		"": testutil.AccountsOutput(
			account("111111111111", sweeptypes.AccountStatusActive),
			account("222222222222", sweeptypes.AccountStatusSuspended),
		),
		"page-2": testutil.AccountsOutput(
			account("333333333333", sweeptypes.AccountStatusActive),
		),
	}
	pages[""].NextToken = aws.String("page-2")

	var tokens []string
	client := &testutil.MockOrganizationsClient{
		ListAccountsFunc: func(_ context.Context, params *organizations.ListAccountsInput, _ ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
			token := aws.ToString(params.NextToken)
			tokens = append(tokens, token)
			return pages[token], nil
		},
	}

	got, err := New(client).List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"", "page-2"}, tokens)
	assert.Equal(t, []sweeptypes.Account{
		account("111111111111", sweeptypes.AccountStatusActive),
		account("222222222222", sweeptypes.AccountStatusSuspended),
		account("333333333333", sweeptypes.AccountStatusActive),
	}, got)
}

func TestDirectory_ListFailure(t *testing.T) {
	client := &testutil.MockOrganizationsClient{
		ListAccountsFunc: func(context.Context, *organizations.ListAccountsInput, ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
			return nil, testutil.APIError("AccessDeniedException")
		},
	}

	got, err := New(client).List(context.Background())

	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, sweeperrors.ErrListAccounts)
	assert.ErrorIs(t, err, sweeperrors.ErrAccessDenied)
}

func TestDirectory_ListEmptyOrganization(t *testing.T) {
	got, err := New(&testutil.MockOrganizationsClient{}).List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPartition(t *testing.T) {
	all := []sweeptypes.Account{
		account("111111111111", sweeptypes.AccountStatusSuspended),
		account("222222222222", sweeptypes.AccountStatusActive),
		account("333333333333", sweeptypes.AccountStatusPendingClosure),
		account("444444444444", sweeptypes.AccountStatusActive),
	}

	active, ignored := Partition(all)

	assert.Equal(t, []sweeptypes.Account{all[1], all[3]}, active)
	assert.Equal(t, []sweeptypes.Account{all[0], all[2]}, ignored)
}
