package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/awsvars/types"
)

// listVPCs discovers all VPCs in the client's region.
func (c *Client) listVPCs(ctx context.Context) ([]types.Resource, error) {
	paginator := ec2.NewDescribeVpcsPaginator(c.clients.EC2, &ec2.DescribeVpcsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		var output *ec2.DescribeVpcsOutput
		err := c.callWithRetry(ctx, "DescribeVpcs", func(ctx context.Context) error {
			var err error
			output, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, vpc := range output.Vpcs {
			resources = append(resources, buildVPCResource(vpc, c.region, c.profile))
		}
	}

	return resources, nil
}

// buildVPCResource converts an EC2 VPC to a normalized record.
func buildVPCResource(vpc ec2types.Vpc, region, profile string) types.Resource {
	isDefault := aws.ToBool(vpc.IsDefault)
	return types.Resource{
		ID:      aws.ToString(vpc.VpcId),
		Type:    types.TypeVPC,
		Region:  region,
		Profile: profile,
		Tags:    convertEC2Tags(vpc.Tags),
		Meta: types.ResourceMeta{
			CIDRBlock:       aws.ToString(vpc.CidrBlock),
			IsDefault:       &isDefault,
			InstanceTenancy: string(vpc.InstanceTenancy),
			State:           string(vpc.State),
		},
	}
}
