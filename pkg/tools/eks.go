package tools

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/tool"
)

// ListEKSClusters lists EKS clusters and their status
type ListEKSClusters struct {
	*tool.Base
	clients interfaces.CloudClients
}

// NewListEKSClusters creates the list_eks_clusters tool
func NewListEKSClusters(clients interfaces.CloudClients) *ListEKSClusters {
	return &ListEKSClusters{
		Base: tool.NewBase(&tool.Spec{
			Name:        "list_eks_clusters",
			Description: "List EKS clusters and their status",
			Parameters: []tool.Parameter{
				{Name: "region", Type: tool.TypeString, Description: "AWS region"},
			},
		}),
		clients: clients,
	}
}

// Execute lists the clusters and describes each one
func (t *ListEKSClusters) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	region := stringParam(params, "region")
	api := t.clients.EKS(region)

	listed, err := api.ListClusters(ctx, &eks.ListClustersInput{})
	if err != nil {
		return tool.Errorf("AWS API error: %s", apiErrorMessage(err)), nil
	}

	clusters := []map[string]interface{}{}
	for _, name := range listed.Clusters {
		described, err := api.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
		if err != nil {
			clusters = append(clusters, map[string]interface{}{
				"name":  name,
				"error": apiErrorMessage(err),
			})
			continue
		}
		cluster := described.Cluster
		summary := map[string]interface{}{
			"name":     aws.ToString(cluster.Name),
			"status":   string(cluster.Status),
			"version":  aws.ToString(cluster.Version),
			"endpoint": aws.ToString(cluster.Endpoint),
			"arn":      aws.ToString(cluster.Arn),
		}
		if cluster.CreatedAt != nil {
			summary["created_at"] = cluster.CreatedAt.String()
		}
		clusters = append(clusters, summary)
	}

	effectiveRegion := region
	if effectiveRegion == "" {
		effectiveRegion = t.clients.Region()
	}

	return tool.NewResult(map[string]interface{}{
		"clusters": clusters,
		"count":    len(clusters),
		"region":   effectiveRegion,
	}), nil
}
