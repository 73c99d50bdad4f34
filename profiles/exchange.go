package profiles

import (
	"context"
	"fmt"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	awsprov "github.com/yairfalse/awsvars/providers/aws"
	"github.com/yairfalse/awsvars/types"
)

// CredentialError is fatal: the run aborts before producing output.
type CredentialError struct {
	Profile string
	Err     error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential exchange failed for profile %q: %v", e.Profile, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// SessionDuration is the lifetime requested for exchanged credentials.
const SessionDuration = time.Hour

// STSFactory builds the STS client for a named profile.
type STSFactory func(ctx context.Context, profile string) (awsprov.STSAPI, error)

// DefaultSTSFactory loads the profile's shared config and returns a
// real STS client.
func DefaultSTSFactory(ctx context.Context, profile string) (awsprov.STSAPI, error) {
	cfg, err := awsprov.LoadProfileConfig(ctx, profile, "", nil)
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(cfg), nil
}

// Exchanger swaps a matched profile's base credentials for temporary
// session credentials. The exchange happens at most once per run; the
// result is held for the run's duration and never refreshed.
type Exchanger struct {
	factory STSFactory

	mu        sync.Mutex
	exchanged *types.CredentialSet
}

// NewExchanger creates an Exchanger. A nil factory uses the real STS
// client.
func NewExchanger(factory STSFactory) *Exchanger {
	if factory == nil {
		factory = DefaultSTSFactory
	}
	return &Exchanger{factory: factory}
}

// Exchange obtains temporary credentials for profile. Repeat calls
// return the credentials from the first exchange.
func (e *Exchanger) Exchange(ctx context.Context, profile string) (*types.CredentialSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.exchanged != nil {
		return e.exchanged, nil
	}

	client, err := e.factory(ctx, profile)
	if err != nil {
		return nil, &CredentialError{Profile: profile, Err: err}
	}

	output, err := client.GetSessionToken(ctx, &sts.GetSessionTokenInput{
		DurationSeconds: awssdk.Int32(int32(SessionDuration / time.Second)),
	})
	if err != nil {
		return nil, &CredentialError{Profile: profile, Err: err}
	}
	if output.Credentials == nil {
		return nil, &CredentialError{Profile: profile, Err: fmt.Errorf("GetSessionToken returned no credentials")}
	}

	creds := output.Credentials
	e.exchanged = &types.CredentialSet{
		AccessKeyID:     awssdk.ToString(creds.AccessKeyId),
		SecretAccessKey: awssdk.ToString(creds.SecretAccessKey),
		SessionToken:    awssdk.ToString(creds.SessionToken),
		ExpiresAt:       awssdk.ToTime(creds.Expiration),
		Profile:         profile,
	}
	return e.exchanged, nil
}
