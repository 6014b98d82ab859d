package accounts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/awsapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// Directory lists the accounts of an organization.
type Directory struct {
	client awsapi.OrganizationsAPI
}

// New creates a new Directory.
func New(client awsapi.OrganizationsAPI) *Directory {
	return &Directory{client: client}
}

// List returns every account of the organization in listing order.
// A failure on any page fails the whole listing.
func (d *Directory) List(ctx context.Context) ([]sweeptypes.Account, error) {
	var accounts []sweeptypes.Account

	paginator := organizations.NewListAccountsPaginator(d.client, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sweeperrors.ErrListAccounts, sweeperrors.Classify(err))
		}
		for _, a := range page.Accounts {
			accounts = append(accounts, sweeptypes.Account{
				ID:     aws.ToString(a.Id),
				Name:   aws.ToString(a.Name),
				Status: sweeptypes.AccountStatus(a.Status),
			})
		}
	}

	return accounts, nil
}

// Partition splits accounts into those eligible for sweeping and those to ignore,
// preserving order in both.
func Partition(accounts []sweeptypes.Account) (active, ignored []sweeptypes.Account) {
	for _, a := range accounts {
		if a.Active() {
			active = append(active, a)
			continue
		}
		ignored = append(ignored, a)
	}
	return active, ignored
}
