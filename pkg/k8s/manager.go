package k8s

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
)

// Manager wraps a Kubernetes clientset and implements
// interfaces.ClusterClient. Configuration is resolved in-cluster first,
// then from the local kubeconfig.
type Manager struct {
	clientset kubernetes.Interface
	logger    logging.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger for the manager
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager builds a cluster client from the environment. kubeconfigPath
// and contextName may be empty to use the defaults.
func NewManager(kubeconfigPath, contextName string, options ...Option) (*Manager, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		if kubeconfigPath != "" {
			rules.ExplicitPath = kubeconfigPath
		}
		overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
		config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubernetes configuration: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return NewManagerWithClientset(clientset, options...), nil
}

// NewManagerWithClientset creates a Manager with an injected clientset
func NewManagerWithClientset(clientset kubernetes.Interface, options ...Option) *Manager {
	m := &Manager{
		clientset: clientset,
		logger:    logging.New(),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// ListNamespaces returns the namespace names in the cluster
func (m *Manager) ListNamespaces(ctx context.Context) ([]string, error) {
	list, err := m.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	return names, nil
}

// ListPods returns the pods in a namespace
func (m *Manager) ListPods(ctx context.Context, namespace string) ([]interfaces.PodInfo, error) {
	list, err := m.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}

	pods := make([]interfaces.PodInfo, 0, len(list.Items))
	for _, pod := range list.Items {
		pods = append(pods, interfaces.PodInfo{
			Name:      pod.Name,
			Namespace: pod.Namespace,
			Phase:     string(pod.Status.Phase),
			Ready:     isPodReady(&pod),
			NodeName:  pod.Spec.NodeName,
			Labels:    pod.Labels,
		})
	}
	return pods, nil
}

func isPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

// ListDeployments returns the deployments in a namespace
func (m *Manager) ListDeployments(ctx context.Context, namespace string) ([]interfaces.DeploymentInfo, error) {
	list, err := m.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments in %s: %w", namespace, err)
	}

	deployments := make([]interfaces.DeploymentInfo, 0, len(list.Items))
	for _, d := range list.Items {
		deployments = append(deployments, deploymentInfo(&d))
	}
	return deployments, nil
}

func deploymentInfo(d *appsv1.Deployment) interfaces.DeploymentInfo {
	info := interfaces.DeploymentInfo{
		Name:          d.Name,
		Namespace:     d.Namespace,
		ReadyReplicas: d.Status.ReadyReplicas,
		Labels:        d.Labels,
	}
	if d.Spec.Replicas != nil {
		info.Replicas = *d.Spec.Replicas
	}
	if containers := d.Spec.Template.Spec.Containers; len(containers) > 0 {
		info.Image = containers[0].Image
	}
	return info
}

// CreateDeployment creates a deployment and returns its summary
func (m *Manager) CreateDeployment(ctx context.Context, req interfaces.DeploymentRequest) (*interfaces.DeploymentInfo, error) {
	replicas := req.Replicas
	if replicas <= 0 {
		replicas = 1
	}

	selector := map[string]string{"app": req.Name}
	labels := map[string]string{"app": req.Name}
	for k, v := range req.Labels {
		labels[k] = v
	}

	container := corev1.Container{
		Name:  req.Name,
		Image: req.Image,
	}
	for _, port := range req.Ports {
		container.Ports = append(container.Ports, corev1.ContainerPort{ContainerPort: port})
	}
	for k, v := range req.Env {
		container.Env = append(container.Env, corev1.EnvVar{Name: k, Value: v})
	}

	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      req.Name,
			Namespace: req.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{container},
				},
			},
		},
	}

	created, err := m.clientset.AppsV1().Deployments(req.Namespace).Create(ctx, deployment, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment %s/%s: %w", req.Namespace, req.Name, err)
	}

	m.logger.Info(ctx, "Deployment created", map[string]interface{}{
		"name":      req.Name,
		"namespace": req.Namespace,
		"replicas":  replicas,
	})

	info := deploymentInfo(created)
	return &info, nil
}

// Health reports cluster reachability, node readiness and namespace count
func (m *Manager) Health(ctx context.Context) interfaces.ClusterHealth {
	health := interfaces.ClusterHealth{Status: "healthy"}

	nodes, err := m.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
		return health
	}

	health.NodeCount = len(nodes.Items)
	for _, node := range nodes.Items {
		for _, cond := range node.Status.Conditions {
			if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
				health.ReadyNodes++
				break
			}
		}
	}
	if health.ReadyNodes < health.NodeCount {
		health.Status = "degraded"
	}

	namespaces, err := m.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err == nil {
		health.NamespaceCount = len(namespaces.Items)
	}

	if version, err := m.clientset.Discovery().ServerVersion(); err == nil {
		health.ServerVersion = version.String()
	}

	return health
}
