package types

// ResourceType identifies one of the discoverable AWS resource kinds.
type ResourceType string

const (
	TypeVPC           ResourceType = "vpc"
	TypeSubnet        ResourceType = "subnet"
	TypeSecurityGroup ResourceType = "security_group"
	TypeTargetGroup   ResourceType = "target_group"
)

// AllResourceTypes returns every discoverable type in fixed order.
func AllResourceTypes() []ResourceType {
	return []ResourceType{TypeVPC, TypeSubnet, TypeSecurityGroup, TypeTargetGroup}
}

// Resource is the normalized record for a discovered AWS resource.
// Immutable once fetched.
type Resource struct {
	ID      string            `json:"id"`
	Type    ResourceType      `json:"type"`
	Region  string            `json:"region"`
	Profile string            `json:"profile"`
	Tags    map[string]string `json:"tags,omitempty"`
	Meta    ResourceMeta      `json:"meta"`
}

// ResourceMeta holds the per-type descriptive attributes. Only the
// fields relevant to the resource's type are populated.
type ResourceMeta struct {
	// VPC
	CIDRBlock       string `json:"cidr_block,omitempty"`
	IsDefault       *bool  `json:"is_default,omitempty"`
	InstanceTenancy string `json:"instance_tenancy,omitempty"`
	State           string `json:"state,omitempty"`

	// Subnet
	AvailabilityZone string `json:"zone,omitempty"`

	// Security group: GroupType is "vpc" or "classic"
	Name      string `json:"name,omitempty"`
	GroupType string `json:"group_type,omitempty"`

	// Target group
	Protocol         string   `json:"protocol,omitempty"`
	Port             int32    `json:"port,omitempty"`
	TargetType       string   `json:"target_type,omitempty"`
	LoadBalancerARNs []string `json:"load_balancer_arns,omitempty"`

	// Shared
	VpcID string `json:"vpc_id,omitempty"`
}

// HasTags reports whether the resource carries every given tag key.
func (r *Resource) HasTags(keys []string) bool {
	for _, k := range keys {
		if _, ok := r.Tags[k]; !ok {
			return false
		}
	}
	return true
}
