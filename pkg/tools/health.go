package tools

import (
	"context"
	"fmt"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/tool"
)

// SystemHealth reports the health of the cluster, the deployed network
// functions, and the cloud credentials in one view
type SystemHealth struct {
	*tool.Base
	cluster interfaces.ClusterClient
	clouds  interfaces.CloudClients
}

// NewSystemHealth creates the get_system_health tool. Either dependency may
// be nil, in which case its section is reported as unavailable.
func NewSystemHealth(cluster interfaces.ClusterClient, clouds interfaces.CloudClients) *SystemHealth {
	return &SystemHealth{
		Base: tool.NewBase(&tool.Spec{
			Name:        "get_system_health",
			Description: "Report overall health of the cluster, network functions, and cloud access",
			Parameters: []tool.Parameter{
				{Name: "namespace", Type: tool.TypeString, Description: "Namespace holding the network functions", Default: defaultNamespace},
				{Name: "include_metrics", Type: tool.TypeBoolean, Description: "Include replica metrics per function", Default: true},
			},
		}),
		cluster: cluster,
		clouds:  clouds,
	}
}

// Execute gathers the health sections and derives an overall status
func (t *SystemHealth) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	namespace := stringParam(params, "namespace")
	includeMetrics, _ := params["include_metrics"].(bool)
	degraded := false

	clusterSection := map[string]interface{}{"status": "unavailable"}
	if t.cluster != nil {
		health := t.cluster.Health(ctx)
		clusterSection = map[string]interface{}{
			"status":          health.Status,
			"server_version":  health.ServerVersion,
			"node_count":      health.NodeCount,
			"ready_nodes":     health.ReadyNodes,
			"namespace_count": health.NamespaceCount,
		}
		if health.Error != "" {
			clusterSection["error"] = health.Error
		}
		if health.Status != "healthy" {
			degraded = true
		}
	}

	functionsSection := map[string]interface{}{"status": "unavailable"}
	if t.cluster != nil {
		deployments, err := t.cluster.ListDeployments(ctx, namespace)
		if err != nil {
			functionsSection = map[string]interface{}{"status": "error", "error": err.Error()}
			degraded = true
		} else {
			ready := 0
			perFunction := map[string]interface{}{}
			for _, d := range deployments {
				if d.ReadyReplicas >= d.Replicas {
					ready++
				}
				perFunction[d.Name] = fmt.Sprintf("%d/%d", d.ReadyReplicas, d.Replicas)
			}
			status := "healthy"
			if ready < len(deployments) {
				status = "degraded"
				degraded = true
			}
			functionsSection = map[string]interface{}{
				"status": status,
				"total":  len(deployments),
				"ready":  ready,
			}
			if includeMetrics {
				functionsSection["functions"] = perFunction
			}
		}
	}

	cloudSection := map[string]interface{}{"status": "unavailable"}
	if t.clouds != nil {
		info, err := t.clouds.ValidateCredentials(ctx)
		if err != nil {
			cloudSection = map[string]interface{}{"status": "error", "error": apiErrorMessage(err)}
			degraded = true
		} else {
			cloudSection = map[string]interface{}{
				"status":  "healthy",
				"account": info.AccountID,
				"arn":     info.ARN,
				"region":  info.Region,
			}
		}
	}

	overall := "healthy"
	if degraded {
		overall = "degraded"
	}

	return tool.NewResult(map[string]interface{}{
		"status":            overall,
		"cluster":           clusterSection,
		"network_functions": functionsSection,
		"cloud":             cloudSection,
	}), nil
}
