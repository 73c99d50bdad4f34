package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/awsvars/types"
)

func TestBuildVPCResource(t *testing.T) {
	vpc := ec2types.Vpc{
		VpcId:           aws.String("vpc-abc123"),
		CidrBlock:       aws.String("10.0.0.0/16"),
		IsDefault:       aws.Bool(false),
		InstanceTenancy: ec2types.TenancyDefault,
		State:           ec2types.VpcStateAvailable,
		Tags: []ec2types.Tag{
			{Key: aws.String("project"), Value: aws.String("apollo")},
			{Key: aws.String("env"), Value: aws.String("prod")},
		},
	}

	resource := buildVPCResource(vpc, "eu-west-1", "staging")

	assert.Equal(t, "vpc-abc123", resource.ID)
	assert.Equal(t, types.TypeVPC, resource.Type)
	assert.Equal(t, "eu-west-1", resource.Region)
	assert.Equal(t, "staging", resource.Profile)
	assert.Equal(t, "10.0.0.0/16", resource.Meta.CIDRBlock)
	assert.Equal(t, "default", resource.Meta.InstanceTenancy)
	assert.Equal(t, "available", resource.Meta.State)
	require.NotNil(t, resource.Meta.IsDefault)
	assert.False(t, *resource.Meta.IsDefault)
	assert.Equal(t, map[string]string{"project": "apollo", "env": "prod"}, resource.Tags)
}

// mockEC2 pages through canned describe outputs.
type mockEC2 struct {
	vpcPages    []*ec2.DescribeVpcsOutput
	subnetPages []*ec2.DescribeSubnetsOutput
	sgPages     []*ec2.DescribeSecurityGroupsOutput
	vpcCalls    int
}

func (m *mockEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	out := m.vpcPages[m.vpcCalls]
	m.vpcCalls++
	return out, nil
}

func (m *mockEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	out := m.subnetPages[0]
	return out, nil
}

func (m *mockEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	out := m.sgPages[0]
	return out, nil
}

func TestListVPCsPaginates(t *testing.T) {
	mock := &mockEC2{
		vpcPages: []*ec2.DescribeVpcsOutput{
			{
				Vpcs:      []ec2types.Vpc{{VpcId: aws.String("vpc-1")}},
				NextToken: aws.String("page-2"),
			},
			{
				Vpcs: []ec2types.Vpc{{VpcId: aws.String("vpc-2")}},
			},
		},
	}

	client := NewClient(&ClientSet{EC2: mock}, "default", "eu-west-1", Options{})
	resources, err := client.listVPCs(context.Background())
	require.NoError(t, err)

	require.Len(t, resources, 2)
	assert.Equal(t, "vpc-1", resources[0].ID)
	assert.Equal(t, "vpc-2", resources[1].ID)
	assert.Equal(t, 2, mock.vpcCalls)
}
