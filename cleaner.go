package bucketsweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/awsapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/operations/accounts"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/operations/assume"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/operations/buckets"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/operations/purge"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/retry"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/throttle"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

const (
	defaultRegion         = "us-east-1"
	minSessionDuration    = 15 * time.Minute
	maxSessionDuration    = 12 * time.Hour
	defaultPurgePageSize  = purge.MaxBatchSize
	defaultAccountWorkers = 1
)

// StorageFactory builds an S3 client for one account from its delegated credentials.
// The client lives only for that account's sweep.
type StorageFactory func(ctx context.Context, creds sweeptypes.Credentials) (awsapi.S3API, error)

// Cleaner sweeps prefixed buckets across the organization.
// A Cleaner may be Run more than once; each run lists the accounts afresh.
type Cleaner struct {
	prefix    string
	config    sweeptypes.ClientConfig
	directory *accounts.Directory
	assumer   *assume.RoleAssumer
	storage   StorageFactory
	limiter   *rate.Limiter
	logger    *slog.Logger
	reporter  sweeptypes.Reporter
}

func defaultConfig() sweeptypes.ClientConfig {
	return sweeptypes.ClientConfig{
		RoleName:       assume.DefaultRoleName,
		Partition:      assume.DefaultPartition,
		SessionName:    assume.DefaultSessionName,
		Concurrency:    defaultAccountWorkers,
		MaxRetries:     retry.DefaultMaxAttempts,
		DeleteAttempts: buckets.DefaultDeleteAttempts,
		PageSize:       defaultPurgePageSize,
	}
}

// New creates a Cleaner for buckets starting with prefix. Entry-point
// credentials come from the default AWS credential chain unless a custom
// configuration is supplied.
//
// Example:
//
//	cleaner, err := bucketsweep.New(ctx, "tmp-",
//	    bucketsweep.WithRegion("us-east-1"),
//	    bucketsweep.WithDeleteAttempts(5),
//	)
func New(ctx context.Context, prefix string, opts ...sweeptypes.Option) (*Cleaner, error) {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(&clientCfg)
	}
	if err := validateConfig(prefix, &clientCfg); err != nil {
		return nil, err
	}

	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = clientCfg.CustomAWSConfig.Copy()
		if cfg.Retryer == nil {
			cfg.Retryer = retry.Provider(clientCfg.MaxRetries)
		}
	} else {
		loadOpts := []func(*config.LoadOptions) error{
			config.WithRetryer(retry.Provider(clientCfg.MaxRetries)),
		}
		if clientCfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(clientCfg.Region))
		}
		if clientCfg.Profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(clientCfg.Profile))
		}

		var err error
		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if clientCfg.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(clientCfg.Endpoint)
	}

	orgClient := organizations.NewFromConfig(cfg)
	stsClient := sts.NewFromConfig(cfg)

	return build(prefix, clientCfg, orgClient, stsClient, NewStorageFactory(cfg, clientCfg.ForcePathStyle)), nil
}

// NewWithClients creates a Cleaner with custom collaborators.
// This is primarily used for testing with mocked clients.
func NewWithClients(
	prefix string,
	orgClient awsapi.OrganizationsAPI,
	stsClient awsapi.STSAPI,
	storage StorageFactory,
	opts ...sweeptypes.Option,
) (*Cleaner, error) {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(&clientCfg)
	}
	if err := validateConfig(prefix, &clientCfg); err != nil {
		return nil, err
	}
	return build(prefix, clientCfg, orgClient, stsClient, storage), nil
}

func build(
	prefix string,
	clientCfg sweeptypes.ClientConfig,
	orgClient awsapi.OrganizationsAPI,
	stsClient awsapi.STSAPI,
	storage StorageFactory,
) *Cleaner {
	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reporter := clientCfg.Reporter
	if reporter == nil {
		reporter = sweeptypes.NopReporter{}
	}
	limiter := throttle.NewLimiter(clientCfg.RateLimit)

	return &Cleaner{
		prefix:    prefix,
		config:    clientCfg,
		directory: accounts.New(orgClient),
		assumer: assume.New(throttle.STS(stsClient, limiter), assume.Config{
			RoleName:    clientCfg.RoleName,
			Partition:   clientCfg.Partition,
			SessionName: clientCfg.SessionName,
			Duration:    clientCfg.SessionDuration,
			ExternalID:  clientCfg.ExternalID,
		}),
		storage:  storage,
		limiter:  limiter,
		logger:   logger,
		reporter: reporter,
	}
}

// NewStorageFactory builds account clients from a copy of base with the
// delegated credentials swapped in.
func NewStorageFactory(base aws.Config, forcePathStyle bool) StorageFactory {
	return func(_ context.Context, creds sweeptypes.Credentials) (awsapi.S3API, error) {
		cfg := base.Copy()
		cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretAccessKey,
			creds.SessionToken,
		))
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = forcePathStyle
		}), nil
	}
}

func validateConfig(prefix string, c *sweeptypes.ClientConfig) error {
	if err := validation.ValidatePrefix(prefix); err != nil {
		return err
	}
	if err := validation.ValidateRoleName(c.RoleName); err != nil {
		return err
	}
	if err := validation.ValidateSessionName(c.SessionName); err != nil {
		return err
	}
	if err := validation.ValidatePartition(c.Partition); err != nil {
		return err
	}
	if err := validation.ValidatePageSize(c.PageSize); err != nil {
		return err
	}
	if c.SessionDuration != 0 && (c.SessionDuration < minSessionDuration || c.SessionDuration > maxSessionDuration) {
		return errors.NewError("validateConfig", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("session duration must be between %s and %s", minSessionDuration, maxSessionDuration))
	}
	return nil
}

// Prefix returns the bucket name prefix this Cleaner matches.
func (c *Cleaner) Prefix() string {
	return c.prefix
}

// Run sweeps every ACTIVE account of the organization.
//
// Non-ACTIVE accounts are reported and skipped. A failure to assume the role
// in an account or to list its buckets fails that account only; a failure to
// delete one bucket does not stop the others. Run returns the report together
// with an error wrapping errors.ErrRunFailed when anything was left behind.
// A failure to list the organization's accounts aborts the run before any
// account is touched.
func (c *Cleaner) Run(ctx context.Context) (*sweeptypes.Report, error) {
	report := &sweeptypes.Report{
		RunID:   uuid.NewString(),
		Prefix:  c.prefix,
		Started: time.Now(),
	}
	logger := c.logger.With("run_id", report.RunID, "prefix", c.prefix)
	logger.Info("starting bucket sweep", "concurrency", c.config.Concurrency)

	all, err := c.directory.List(ctx)
	if err != nil {
		report.Finished = time.Now()
		logger.Error("failed to list organization accounts", "error", err)
		return report, errors.NewError("run", err)
	}

	active, ignored := accounts.Partition(all)
	report.Ignored = ignored
	report.Accounts = make([]sweeptypes.AccountResult, len(active))

	var g errgroup.Group
	g.SetLimit(c.config.Concurrency)

	for _, account := range ignored {
		logger.Info("ignoring account", "account_id", account.ID, "status", account.Status)
		c.reporter.AccountIgnored(account)
	}

	for i, account := range active {
		g.Go(func() error {
			report.Accounts[i] = c.sweepAccount(ctx, logger, account)
			return nil
		})
	}
	_ = g.Wait()

	report.Finished = time.Now()
	logger.Info("bucket sweep finished",
		"accounts", len(report.Accounts),
		"ignored", len(report.Ignored),
		"buckets_deleted", report.BucketsDeleted(),
		"objects_deleted", report.ObjectsDeleted(),
		"account_failures", report.AccountFailures(),
		"bucket_failures", report.BucketFailures(),
		"duration", report.Duration(),
	)

	if report.Failed() {
		err := fmt.Errorf("%w: %d account(s) and %d bucket(s) failed",
			errors.ErrRunFailed, report.AccountFailures(), report.BucketFailures())
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		return report, err
	}
	return report, nil
}

// sweepAccount is the per-account failure boundary.
func (c *Cleaner) sweepAccount(
	ctx context.Context,
	logger *slog.Logger,
	account sweeptypes.Account,
) sweeptypes.AccountResult {
	result := sweeptypes.AccountResult{Account: account}
	log := logger.With("account_id", account.ID)

	fail := func(op string, err error) sweeptypes.AccountResult {
		result.Err = errors.NewAccountError(op, account.ID, err)
		log.Warn("account sweep failed", "op", op, "error", err)
		c.reporter.AccountFailed(account.ID, result.Err)
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail("sweepAccount", err)
	}

	c.reporter.AccountStarted(account.ID)
	log.Info("sweeping account")

	creds, err := c.assumer.Assume(ctx, account.ID)
	if err != nil {
		return fail("assumeRole", err)
	}

	client, err := c.storage(ctx, creds)
	if err != nil {
		return fail("storageClient", err)
	}
	client = throttle.S3(client, c.limiter)

	manager := buckets.New(client,
		buckets.WithDeleteAttempts(c.config.DeleteAttempts),
		buckets.WithLogger(log),
	)
	purger := purge.New(client,
		purge.WithPageSize(c.config.PageSize),
		purge.WithLogger(log),
	)

	matched, err := manager.List(ctx, c.prefix)
	if err != nil {
		return fail("listBuckets", err)
	}
	log.Debug("listed matching buckets", "count", len(matched))

	for _, bucket := range matched {
		if err := ctx.Err(); err != nil {
			result.Buckets = append(result.Buckets, sweeptypes.BucketResult{
				Name:   bucket.Name,
				Region: bucket.Region,
				Err:    errors.NewBucketError("sweepBucket", account.ID, bucket.Name, err),
			})
			continue
		}
		result.Buckets = append(result.Buckets, c.sweepBucket(ctx, log, account.ID, bucket, manager, purger))
	}

	return result
}

// sweepBucket purges then deletes one bucket. The purge always runs first.
func (c *Cleaner) sweepBucket(
	ctx context.Context,
	logger *slog.Logger,
	accountID string,
	bucket sweeptypes.Bucket,
	manager *buckets.Manager,
	purger *purge.Purger,
) sweeptypes.BucketResult {
	result := sweeptypes.BucketResult{Name: bucket.Name, Region: bucket.Region}
	log := logger.With("bucket", bucket.Name)

	var optFns []func(*s3.Options)
	if bucket.Region != "" {
		region := bucket.Region
		optFns = append(optFns, func(o *s3.Options) {
			o.Region = region
		})
	}

	result.Purge = purger.Purge(ctx, bucket.Name, optFns...)
	log.Info("purged bucket",
		"pages", result.Purge.Pages,
		"batches", result.Purge.Batches,
		"deleted", result.Purge.Deleted,
		"failed", result.Purge.Failed,
		"duration", result.Purge.Duration,
	)

	if !result.Purge.Complete() {
		c.reporter.PurgeFailed(accountID, bucket.Name, result.Purge)
		log.Warn("purge incomplete", "error", PurgeError(result.Purge))
		if !c.config.DeleteOnPartialPurge {
			result.Err = errors.NewBucketError("purge", accountID, bucket.Name, PurgeError(result.Purge))
			return result
		}
	}

	attempts, err := manager.Delete(ctx, bucket.Name, optFns...)
	result.Attempts = attempts
	if err != nil {
		result.Err = errors.NewBucketError("deleteBucket", accountID, bucket.Name, err)
		log.Warn("failed to delete bucket", "attempts", attempts, "error", err)
		c.reporter.BucketFailed(accountID, bucket.Name, err)
		return result
	}

	result.Deleted = true
	log.Info("deleted bucket", "attempts", attempts)
	c.reporter.BucketDeleted(accountID, bucket.Name, result.Purge)
	return result
}

// PurgeError describes why a purge was incomplete, or returns nil for a complete purge.
// The result wraps errors.ErrPurgeIncomplete.
func PurgeError(p sweeptypes.PurgeResult) error {
	switch {
	case p.Err != nil:
		return fmt.Errorf("%w: %w", errors.ErrPurgeIncomplete, p.Err)
	case p.Failed > 0 && len(p.Errors) == 0:
		return fmt.Errorf("%w: %d record(s) not deleted", errors.ErrPurgeIncomplete, p.Failed)
	case p.Failed > 0:
		first := p.Errors[0]
		return fmt.Errorf("%w: %d record(s) not deleted, first %s (version %s): %s: %s",
			errors.ErrPurgeIncomplete, p.Failed, first.Key, first.VersionID, first.Code, first.Message)
	default:
		return nil
	}
}
