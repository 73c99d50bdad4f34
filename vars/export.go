package vars

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"

	awsprov "github.com/yairfalse/awsvars/providers/aws"
	"github.com/yairfalse/awsvars/types"
)

// envCleaner strips characters that cannot appear in an environment
// variable name.
var envCleaner = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// CredentialEnv renders the exchanged credentials as the standard AWS
// environment variables. AWS_SECURITY_TOKEN is the legacy alias still
// read by older SDKs.
func CredentialEnv(creds *types.CredentialSet) map[string]string {
	if creds == nil {
		return nil
	}
	return map[string]string{
		"AWS_ACCESS_KEY_ID":     creds.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": creds.SecretAccessKey,
		"AWS_SECURITY_TOKEN":    creds.SessionToken,
		"AWS_SESSION_TOKEN":     creds.SessionToken,
	}
}

// ProfileEnvPrefix converts a profile name to its env var prefix:
// non-alphanumerics become underscores and the result is uppercased.
func ProfileEnvPrefix(profile string) string {
	return strings.ToUpper(envCleaner.ReplaceAllString(profile, "_"))
}

// ProfileCredentialEnv renders one profile's base credentials under
// its prefixed variable names, so collaborators can address any
// configured account regardless of the selected profile.
func ProfileCredentialEnv(profile string, creds awssdk.Credentials) map[string]string {
	prefix := ProfileEnvPrefix(profile)
	return map[string]string{
		prefix + "_AWS_ACCESS_KEY_ID":     creds.AccessKeyID,
		prefix + "_AWS_SECRET_ACCESS_KEY": creds.SecretAccessKey,
		prefix + "_AWS_SECURITY_TOKEN":    creds.SessionToken,
		prefix + "_AWS_SESSION_TOKEN":     creds.SessionToken,
	}
}

// BaseCredentialsFunc resolves a profile's own (non-exchanged)
// credentials.
type BaseCredentialsFunc func(ctx context.Context, profile string) (awssdk.Credentials, error)

// ResolveBaseCredentials is the production BaseCredentialsFunc, backed
// by the shared config credential chain.
func ResolveBaseCredentials(ctx context.Context, profile string) (awssdk.Credentials, error) {
	cfg, err := awsprov.LoadProfileConfig(ctx, profile, "", nil)
	if err != nil {
		return awssdk.Credentials{}, err
	}
	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return awssdk.Credentials{}, fmt.Errorf("failed to resolve credentials for profile %q: %w", profile, err)
	}
	return creds, nil
}
