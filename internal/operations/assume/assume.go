package assume

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/awsapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// Defaults used when a Config leaves a field empty.
const (
	DefaultRoleName    = "AWSCloudFormationStackSetExecutionRole"
	DefaultPartition   = "aws"
	DefaultSessionName = "delete-buckets"
)

// Config holds the role assumption parameters shared by every account.
type Config struct {
	RoleName    string
	Partition   string
	SessionName string

	// Duration is the requested credential lifetime, 0 leaves it to STS
	Duration time.Duration

	// ExternalID is sent when non-empty
	ExternalID string
}

// RoleAssumer exchanges the caller identity for per-account credentials.
type RoleAssumer struct {
	client awsapi.STSAPI
	config Config
}

// New creates a new RoleAssumer, filling empty Config fields with defaults.
func New(client awsapi.STSAPI, config Config) *RoleAssumer {
	if config.RoleName == "" {
		config.RoleName = DefaultRoleName
	}
	if config.Partition == "" {
		config.Partition = DefaultPartition
	}
	if config.SessionName == "" {
		config.SessionName = DefaultSessionName
	}
	return &RoleAssumer{client: client, config: config}
}

// RoleARN returns the ARN of the role assumed in accountID.
func (r *RoleAssumer) RoleARN(accountID string) string {
	return fmt.Sprintf("arn:%s:iam::%s:role/%s", r.config.Partition, accountID, r.config.RoleName)
}

// Assume obtains delegated credentials for accountID.
func (r *RoleAssumer) Assume(ctx context.Context, accountID string) (sweeptypes.Credentials, error) {
	if err := validation.ValidateAccountID(accountID); err != nil {
		return sweeptypes.Credentials{}, err
	}

	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(r.RoleARN(accountID)),
		RoleSessionName: aws.String(r.config.SessionName),
	}
	if r.config.Duration > 0 {
		input.DurationSeconds = aws.Int32(int32(r.config.Duration / time.Second))
	}
	if r.config.ExternalID != "" {
		input.ExternalId = aws.String(r.config.ExternalID)
	}

	output, err := r.client.AssumeRole(ctx, input)
	if err != nil {
		return sweeptypes.Credentials{}, fmt.Errorf("%w: %w", sweeperrors.ErrAssumeRole, sweeperrors.Classify(err))
	}
	if output.Credentials == nil {
		return sweeptypes.Credentials{}, sweeperrors.ErrMissingCredentials
	}

	return sweeptypes.Credentials{
		AccessKeyID:     aws.ToString(output.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(output.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(output.Credentials.SessionToken),
		Expires:         aws.ToTime(output.Credentials.Expiration),
	}, nil
}
