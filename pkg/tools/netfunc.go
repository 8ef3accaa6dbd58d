package tools

import (
	"context"
	"strings"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/models"
	"github.com/corenetops/devops-agent/pkg/tool"
)

const defaultNamespace = "core-network"

// functionTypeLabel marks deployments managed by the agent
const functionTypeLabel = "corenetops.io/function-type"

// DeployNetworkFunction deploys a core network function to the cluster
type DeployNetworkFunction struct {
	*tool.Base
	cluster interfaces.ClusterClient
}

// NewDeployNetworkFunction creates the deploy_network_function tool
func NewDeployNetworkFunction(cluster interfaces.ClusterClient) *DeployNetworkFunction {
	return &DeployNetworkFunction{
		Base: tool.NewBase(&tool.Spec{
			Name:        "deploy_network_function",
			Description: "Deploy a core network function (AMF, SMF, UPF, ...) to the cluster",
			Parameters: []tool.Parameter{
				{
					Name:        "function_type",
					Type:        tool.TypeString,
					Description: "Network function type",
					Required:    true,
					Enum:        []interface{}{"AMF", "SMF", "UPF", "NRF", "MME", "SGW", "PGW"},
				},
				{Name: "name", Type: tool.TypeString, Description: "Deployment name, defaults to the lowercased function type"},
				{Name: "namespace", Type: tool.TypeString, Description: "Target namespace", Default: defaultNamespace},
				{Name: "image", Type: tool.TypeString, Description: "Container image, defaults to the conventional image for the type"},
				{Name: "replicas", Type: tool.TypeInteger, Description: "Replica count", Default: 2},
				{Name: "plmn_id", Type: tool.TypeString, Description: "PLMN identifier (MCC+MNC)", Default: "00101"},
			},
		}),
		cluster: cluster,
	}
}

// Execute validates the requested function and creates its deployment
func (t *DeployNetworkFunction) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	functionType := models.FunctionType(strings.ToUpper(stringParam(params, "function_type")))

	name := stringParam(params, "name")
	if name == "" {
		name = strings.ToLower(string(functionType))
	}
	image := stringParam(params, "image")
	if image == "" {
		image = models.DefaultImage(functionType)
	}

	nf := &models.NetworkFunction{
		Name:         name,
		Type:         functionType,
		Namespace:    stringParam(params, "namespace"),
		Image:        image,
		Replicas:     int32(intParam(params, "replicas", 2)),
		PLMNID:       stringParam(params, "plmn_id"),
		ServicePorts: models.DefaultPorts(functionType),
	}
	if err := nf.Validate(); err != nil {
		return tool.Errorf("%v", err), nil
	}

	req := interfaces.DeploymentRequest{
		Name:      nf.Name,
		Namespace: nf.Namespace,
		Image:     nf.Image,
		Replicas:  nf.Replicas,
		Labels: map[string]string{
			"app":             nf.Name,
			functionTypeLabel: string(nf.Type),
		},
		Ports: nf.ServicePorts,
		Env: map[string]string{
			"PLMN_ID": nf.PLMNID,
		},
	}

	info, err := t.cluster.CreateDeployment(ctx, req)
	if err != nil {
		return tool.Errorf("deployment failed: %v", err), nil
	}

	return tool.NewResult(map[string]interface{}{
		"name":      info.Name,
		"type":      string(nf.Type),
		"namespace": info.Namespace,
		"image":     info.Image,
		"replicas":  info.Replicas,
		"plmn_id":   nf.PLMNID,
		"status":    "deploying",
	}), nil
}

func intParam(params map[string]interface{}, name string, fallback int) int {
	switch v := params[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// ListNetworkFunctions lists deployed core network functions
type ListNetworkFunctions struct {
	*tool.Base
	cluster interfaces.ClusterClient
}

// NewListNetworkFunctions creates the list_network_functions tool
func NewListNetworkFunctions(cluster interfaces.ClusterClient) *ListNetworkFunctions {
	return &ListNetworkFunctions{
		Base: tool.NewBase(&tool.Spec{
			Name:        "list_network_functions",
			Description: "List deployed core network functions and their status",
			Parameters: []tool.Parameter{
				{Name: "namespace", Type: tool.TypeString, Description: "Namespace to inspect", Default: defaultNamespace},
				{Name: "function_type", Type: tool.TypeString, Description: "Filter by function type"},
			},
		}),
		cluster: cluster,
	}
}

// Execute lists the deployments in the namespace and reports per-function status
func (t *ListNetworkFunctions) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	namespace := stringParam(params, "namespace")
	typeFilter := strings.ToUpper(stringParam(params, "function_type"))

	deployments, err := t.cluster.ListDeployments(ctx, namespace)
	if err != nil {
		return tool.Errorf("cluster error: %v", err), nil
	}

	functions := []map[string]interface{}{}
	for _, d := range deployments {
		functionType := d.Labels[functionTypeLabel]
		if typeFilter != "" && functionType != typeFilter {
			continue
		}
		record := models.Deployment{
			Name:    d.Name,
			Status:  models.StatusRunning,
			Desired: d.Replicas,
			Ready:   d.ReadyReplicas,
		}
		if record.Ready < record.Desired {
			record.Status = models.StatusDegraded
		}
		functions = append(functions, map[string]interface{}{
			"name":      record.Name,
			"type":      functionType,
			"namespace": d.Namespace,
			"replicas":  record.ReplicaSummary(),
			"status":    string(record.Status),
			"image":     d.Image,
		})
	}

	return tool.NewResult(map[string]interface{}{
		"functions": functions,
		"count":     len(functions),
		"namespace": namespace,
	}), nil
}
