package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AccountID resolves the numeric AWS account ID for the client's
// credentials via STS GetCallerIdentity.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	var output *sts.GetCallerIdentityOutput
	err := c.callWithRetry(ctx, "GetCallerIdentity", func(ctx context.Context) error {
		var err error
		output, err = c.clients.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		return err
	})
	if err != nil {
		return "", err
	}
	if output.Account == nil {
		return "", fmt.Errorf("GetCallerIdentity returned no account for profile %q", c.profile)
	}
	return aws.ToString(output.Account), nil
}
