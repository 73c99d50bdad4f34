package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/awsvars/types"
)

// listSecurityGroups discovers all security groups in the client's region.
func (c *Client) listSecurityGroups(ctx context.Context) ([]types.Resource, error) {
	paginator := ec2.NewDescribeSecurityGroupsPaginator(c.clients.EC2, &ec2.DescribeSecurityGroupsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		var output *ec2.DescribeSecurityGroupsOutput
		err := c.callWithRetry(ctx, "DescribeSecurityGroups", func(ctx context.Context) error {
			var err error
			output, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, group := range output.SecurityGroups {
			resources = append(resources, buildSecurityGroupResource(group, c.region, c.profile))
		}
	}

	return resources, nil
}

// buildSecurityGroupResource converts an EC2 security group to a
// normalized record. Groups without a VPC are EC2-Classic.
func buildSecurityGroupResource(group ec2types.SecurityGroup, region, profile string) types.Resource {
	groupType := "classic"
	if group.VpcId != nil {
		groupType = "vpc"
	}

	return types.Resource{
		ID:      aws.ToString(group.GroupId),
		Type:    types.TypeSecurityGroup,
		Region:  region,
		Profile: profile,
		Tags:    convertEC2Tags(group.Tags),
		Meta: types.ResourceMeta{
			Name:      aws.ToString(group.GroupName),
			GroupType: groupType,
			VpcID:     aws.ToString(group.VpcId),
		},
	}
}
