package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/awsvars/types"
)

// listSubnets discovers all VPC subnets in the client's region.
func (c *Client) listSubnets(ctx context.Context) ([]types.Resource, error) {
	paginator := ec2.NewDescribeSubnetsPaginator(c.clients.EC2, &ec2.DescribeSubnetsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		var output *ec2.DescribeSubnetsOutput
		err := c.callWithRetry(ctx, "DescribeSubnets", func(ctx context.Context) error {
			var err error
			output, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, subnet := range output.Subnets {
			resources = append(resources, buildSubnetResource(subnet, c.region, c.profile))
		}
	}

	return resources, nil
}

// buildSubnetResource converts an EC2 subnet to a normalized record.
func buildSubnetResource(subnet ec2types.Subnet, region, profile string) types.Resource {
	return types.Resource{
		ID:      aws.ToString(subnet.SubnetId),
		Type:    types.TypeSubnet,
		Region:  region,
		Profile: profile,
		Tags:    convertEC2Tags(subnet.Tags),
		Meta: types.ResourceMeta{
			CIDRBlock:        aws.ToString(subnet.CidrBlock),
			AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
			VpcID:            aws.ToString(subnet.VpcId),
		},
	}
}
