package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"

	"github.com/yairfalse/awsvars/types"
)

func TestBuildSubnetResource(t *testing.T) {
	subnet := ec2types.Subnet{
		SubnetId:         aws.String("subnet-1a"),
		CidrBlock:        aws.String("10.0.1.0/24"),
		AvailabilityZone: aws.String("eu-west-1a"),
		VpcId:            aws.String("vpc-abc123"),
		Tags: []ec2types.Tag{
			{Key: aws.String("project"), Value: aws.String("apollo")},
			{Key: aws.String("env"), Value: aws.String("prod")},
			{Key: aws.String("tier"), Value: aws.String("app")},
		},
	}

	resource := buildSubnetResource(subnet, "eu-west-1", "production")

	assert.Equal(t, "subnet-1a", resource.ID)
	assert.Equal(t, types.TypeSubnet, resource.Type)
	assert.Equal(t, "10.0.1.0/24", resource.Meta.CIDRBlock)
	assert.Equal(t, "eu-west-1a", resource.Meta.AvailabilityZone)
	assert.Equal(t, "vpc-abc123", resource.Meta.VpcID)
	assert.Equal(t, "production", resource.Profile)
	assert.Equal(t, "app", resource.Tags["tier"])
}

func TestBuildSubnetResourceNoTags(t *testing.T) {
	subnet := ec2types.Subnet{
		SubnetId: aws.String("subnet-bare"),
	}

	resource := buildSubnetResource(subnet, "eu-west-1", "default")

	assert.Nil(t, resource.Tags)
	assert.False(t, resource.HasTags([]string{"project"}))
}
