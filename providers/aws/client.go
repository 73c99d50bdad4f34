package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog"

	"github.com/yairfalse/awsvars/types"
)

// Client issues paginated discovery calls for one (profile, region)
// pair. It is purely data-returning; the only side effects are the
// network calls themselves.
type Client struct {
	clients *ClientSet
	profile string
	region  string
	retry   RetryConfig
	timeout time.Duration
	logger  zerolog.Logger
}

// Options configures a Client.
type Options struct {
	Retry       RetryConfig
	CallTimeout time.Duration
	Logger      zerolog.Logger
}

// NewClient creates a client over an existing ClientSet.
func NewClient(clients *ClientSet, profile, region string, opts Options) *Client {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryConfig()
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 30 * time.Second
	}
	return &Client{
		clients: clients,
		profile: profile,
		region:  region,
		retry:   opts.Retry,
		timeout: opts.CallTimeout,
		logger:  opts.Logger,
	}
}

// LoadProfileConfig resolves the AWS config for a named shared-config
// profile in a region. The profile "default" falls back to the ambient
// credential chain so environments without a [default] section still
// work. When creds belongs to this profile, its temporary credentials
// replace the profile's own for the rest of the run.
func LoadProfileConfig(ctx context.Context, profile, region string, creds *types.CredentialSet) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" && profile != "default" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if creds != nil && creds.Profile == profile {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}
	return cfg, nil
}

// List returns all resources of the given type, handling pagination
// transparently. Results preserve API order.
func (c *Client) List(ctx context.Context, rt types.ResourceType) ([]types.Resource, error) {
	switch rt {
	case types.TypeVPC:
		return c.listVPCs(ctx)
	case types.TypeSubnet:
		return c.listSubnets(ctx)
	case types.TypeSecurityGroup:
		return c.listSecurityGroups(ctx)
	case types.TypeTargetGroup:
		return c.listTargetGroups(ctx)
	}
	return nil, fmt.Errorf("unknown resource type %q", rt)
}

// Profile returns the account profile this client fetches under.
func (c *Client) Profile() string { return c.profile }

// Region returns the region this client fetches from.
func (c *Client) Region() string { return c.region }
