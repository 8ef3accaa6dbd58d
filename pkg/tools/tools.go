// Package tools provides the built-in DevOps tool set: AWS inventory,
// network function lifecycle, and system health.
package tools

import (
	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/tool"
)

// All builds the built-in tool set over the given clients. A nil cluster
// or cloud client skips the tools that need it.
func All(cluster interfaces.ClusterClient, clouds interfaces.CloudClients) []tool.Tool {
	var out []tool.Tool
	if clouds != nil {
		out = append(out,
			NewDescribeInstances(clouds),
			NewDescribeVPCs(clouds),
			NewCreateInstance(clouds),
			NewCreateVPC(clouds),
			NewListEKSClusters(clouds),
		)
	}
	if cluster != nil {
		out = append(out,
			NewDeployNetworkFunction(cluster),
			NewListNetworkFunctions(cluster),
		)
	}
	if cluster != nil || clouds != nil {
		out = append(out, NewSystemHealth(cluster, clouds))
	}
	return out
}

// Register builds the built-in tool set and registers it
func Register(registry *tool.Registry, cluster interfaces.ClusterClient, clouds interfaces.CloudClients) {
	for _, t := range All(cluster, clouds) {
		registry.Register(t)
	}
}
