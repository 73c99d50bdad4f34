package vars

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/awsvars/types"
)

func taggedSubnet(id string, tags map[string]string) types.Resource {
	return types.Resource{ID: id, Type: types.TypeSubnet, Region: "eu-west-1", Profile: "default", Tags: tags}
}

func TestAssemble(t *testing.T) {
	resources := map[types.ResourceType][]types.Resource{
		types.TypeSubnet: {
			taggedSubnet("subnet-1", map[string]string{"project": "apollo", "env": "prod", "tier": "app"}),
			taggedSubnet("subnet-2", map[string]string{"project": "apollo"}),
		},
		types.TypeVPC: {
			{ID: "vpc-1", Type: types.TypeVPC, Region: "eu-west-1", Profile: "default"},
		},
	}
	schemas := Schemas{
		types.TypeSubnet: {"project", "env", "tier"},
	}
	accountIDs := map[string]string{"default": "123456789012"}

	snap := Assemble(resources, schemas, accountIDs, "production")

	// Every fetched resource is in the flat map, even unindexed ones.
	assert.Len(t, snap.Subnets, 2)
	assert.Contains(t, snap.Subnets, "subnet-2")
	assert.Len(t, snap.VPCs, 1)

	// Only the fully tagged subnet is indexed.
	require.NotNil(t, snap.SubnetIDs)
	assert.Equal(t, []string{"subnet-1"}, snap.SubnetIDs.Lookup("eu-west-1", "apollo", "prod", "app"))

	// No schema for VPCs: index absent, not empty.
	assert.Nil(t, snap.VPCIDs)

	assert.Equal(t, accountIDs, snap.AccountIDs)
	assert.Equal(t, "production", snap.SelectedProfile)
}

func TestSnapshotJSONShape(t *testing.T) {
	snap := Assemble(
		map[types.ResourceType][]types.Resource{
			types.TypeSubnet: {
				taggedSubnet("subnet-1", map[string]string{"project": "apollo", "env": "prod"}),
			},
		},
		Schemas{types.TypeSubnet: {"project", "env"}},
		map[string]string{"default": "123456789012"},
		"",
	)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "subnets")
	assert.Contains(t, decoded, "subnet_ids")
	assert.Contains(t, decoded, "aws_account_ids")
	assert.NotContains(t, decoded, "vpc_ids", "no schema means the index key is absent")
	assert.NotContains(t, decoded, "aws_profile", "no selection means no profile key")

	assert.JSONEq(t, `{"eu-west-1":{"apollo":{"prod":["subnet-1"]}}}`, string(decoded["subnet_ids"]))
}
