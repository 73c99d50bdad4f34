// Package vars assembles the final variable snapshot from fetch
// results, hierarchical indexes and the selected profile.
package vars

import (
	"github.com/yairfalse/awsvars/index"
	"github.com/yairfalse/awsvars/types"
)

// Schemas maps each resource type to its ordered tag-key schema. A
// missing or empty schema means no index is built for that type.
type Schemas map[types.ResourceType][]string

// Snapshot is the immutable final output of a run. Field names mirror
// the variables consumers script against. Index fields are omitted
// entirely when no schema is configured for the type; with a schema
// but zero matches they render as an empty object.
type Snapshot struct {
	VPCs             map[string]types.Resource `json:"vpcs"`
	VPCIDs           *index.Node               `json:"vpc_ids,omitempty"`
	Subnets          map[string]types.Resource `json:"subnets"`
	SubnetIDs        *index.Node               `json:"subnet_ids,omitempty"`
	SecurityGroups   map[string]types.Resource `json:"security_groups"`
	SecurityGroupIDs *index.Node               `json:"security_group_ids,omitempty"`
	TargetGroups     map[string]types.Resource `json:"elb_target_groups"`
	TargetGroupARNs  *index.Node               `json:"elb_target_group_arns,omitempty"`
	AccountIDs       map[string]string         `json:"aws_account_ids"`
	SelectedProfile  string                    `json:"aws_profile,omitempty"`
}

// Assemble builds the snapshot. Every fetched resource lands in its
// flat map; only fully tagged resources land in the indexes.
func Assemble(resources map[types.ResourceType][]types.Resource, schemas Schemas, accountIDs map[string]string, selectedProfile string) *Snapshot {
	return &Snapshot{
		VPCs:             flatten(resources[types.TypeVPC]),
		VPCIDs:           index.Build(resources[types.TypeVPC], schemas[types.TypeVPC]),
		Subnets:          flatten(resources[types.TypeSubnet]),
		SubnetIDs:        index.Build(resources[types.TypeSubnet], schemas[types.TypeSubnet]),
		SecurityGroups:   flatten(resources[types.TypeSecurityGroup]),
		SecurityGroupIDs: index.Build(resources[types.TypeSecurityGroup], schemas[types.TypeSecurityGroup]),
		TargetGroups:     flatten(resources[types.TypeTargetGroup]),
		TargetGroupARNs:  index.Build(resources[types.TypeTargetGroup], schemas[types.TypeTargetGroup]),
		AccountIDs:       accountIDs,
		SelectedProfile:  selectedProfile,
	}
}

// flatten keys records by resource id. Duplicate ids across profiles
// keep the last record in the flat map; the indexes retain every
// per-profile occurrence.
func flatten(resources []types.Resource) map[string]types.Resource {
	flat := make(map[string]types.Resource, len(resources))
	for _, r := range resources {
		flat[r.ID] = r
	}
	return flat
}
