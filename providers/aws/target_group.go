package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/yairfalse/awsvars/types"
)

// DescribeTags accepts at most 20 resource ARNs per call.
const describeTagsBatchSize = 20

// listTargetGroups discovers all ELBv2 target groups in the client's
// region. Target group tags are not inlined in the describe response
// and require a second DescribeTags call per batch of ARNs.
func (c *Client) listTargetGroups(ctx context.Context) ([]types.Resource, error) {
	paginator := elasticloadbalancingv2.NewDescribeTargetGroupsPaginator(
		c.clients.ELBV2,
		&elasticloadbalancingv2.DescribeTargetGroupsInput{},
	)

	var groups []elbv2types.TargetGroup
	for paginator.HasMorePages() {
		var output *elasticloadbalancingv2.DescribeTargetGroupsOutput
		err := c.callWithRetry(ctx, "DescribeTargetGroups", func(ctx context.Context) error {
			var err error
			output, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		groups = append(groups, output.TargetGroups...)
	}

	tagsByARN, err := c.targetGroupTags(ctx, groups)
	if err != nil {
		return nil, err
	}

	resources := make([]types.Resource, 0, len(groups))
	for _, tg := range groups {
		arn := aws.ToString(tg.TargetGroupArn)
		resources = append(resources, buildTargetGroupResource(tg, tagsByARN[arn], c.region, c.profile))
	}

	return resources, nil
}

// targetGroupTags fetches tags for all target groups, batched to the
// DescribeTags ARN limit.
func (c *Client) targetGroupTags(ctx context.Context, groups []elbv2types.TargetGroup) (map[string]map[string]string, error) {
	tagsByARN := make(map[string]map[string]string, len(groups))

	for start := 0; start < len(groups); start += describeTagsBatchSize {
		end := start + describeTagsBatchSize
		if end > len(groups) {
			end = len(groups)
		}

		arns := make([]string, 0, end-start)
		for _, tg := range groups[start:end] {
			arns = append(arns, aws.ToString(tg.TargetGroupArn))
		}

		var output *elasticloadbalancingv2.DescribeTagsOutput
		err := c.callWithRetry(ctx, "DescribeTags", func(ctx context.Context) error {
			var err error
			output, err = c.clients.ELBV2.DescribeTags(ctx, &elasticloadbalancingv2.DescribeTagsInput{
				ResourceArns: arns,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, desc := range output.TagDescriptions {
			tagsByARN[aws.ToString(desc.ResourceArn)] = convertELBV2Tags(desc.Tags)
		}
	}

	return tagsByARN, nil
}

// buildTargetGroupResource converts an ELBv2 target group to a
// normalized record.
func buildTargetGroupResource(tg elbv2types.TargetGroup, tags map[string]string, region, profile string) types.Resource {
	return types.Resource{
		ID:      aws.ToString(tg.TargetGroupArn),
		Type:    types.TypeTargetGroup,
		Region:  region,
		Profile: profile,
		Tags:    tags,
		Meta: types.ResourceMeta{
			Name:             aws.ToString(tg.TargetGroupName),
			Protocol:         string(tg.Protocol),
			Port:             aws.ToInt32(tg.Port),
			TargetType:       string(tg.TargetType),
			LoadBalancerARNs: tg.LoadBalancerArns,
			VpcID:            aws.ToString(tg.VpcId),
		},
	}
}
