package interfaces

import "context"

// PodInfo summarizes a pod for tool output
type PodInfo struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Phase     string            `json:"phase"`
	Ready     bool              `json:"ready"`
	NodeName  string            `json:"node_name,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// DeploymentInfo summarizes a deployment for tool output
type DeploymentInfo struct {
	Name          string            `json:"name"`
	Namespace     string            `json:"namespace"`
	Replicas      int32             `json:"replicas"`
	ReadyReplicas int32             `json:"ready_replicas"`
	Image         string            `json:"image,omitempty"`
	Labels        map[string]string `json:"labels,omitempty"`
}

// DeploymentRequest describes a deployment to create
type DeploymentRequest struct {
	Name      string
	Namespace string
	Image     string
	Replicas  int32
	Labels    map[string]string
	Ports     []int32
	Env       map[string]string
}

// ClusterHealth is a point-in-time snapshot of cluster status
type ClusterHealth struct {
	Status         string `json:"status"`
	ServerVersion  string `json:"server_version,omitempty"`
	NodeCount      int    `json:"node_count"`
	ReadyNodes     int    `json:"ready_nodes"`
	NamespaceCount int    `json:"namespace_count"`
	Error          string `json:"error,omitempty"`
}

// ClusterClient abstracts the container-orchestration operations the tools
// need. The real implementation wraps a Kubernetes clientset; tests use fakes.
type ClusterClient interface {
	// ListNamespaces returns the namespace names in the cluster
	ListNamespaces(ctx context.Context) ([]string, error)

	// ListPods returns the pods in a namespace
	ListPods(ctx context.Context, namespace string) ([]PodInfo, error)

	// ListDeployments returns the deployments in a namespace
	ListDeployments(ctx context.Context, namespace string) ([]DeploymentInfo, error)

	// CreateDeployment creates a deployment and returns its summary
	CreateDeployment(ctx context.Context, req DeploymentRequest) (*DeploymentInfo, error)

	// Health reports cluster reachability and node readiness
	Health(ctx context.Context) ClusterHealth
}
