package models

import (
	"fmt"
	"time"
)

// DeploymentStatus enumerates deployment lifecycle states
type DeploymentStatus string

// Deployment lifecycle states
const (
	StatusPending   DeploymentStatus = "pending"
	StatusDeploying DeploymentStatus = "deploying"
	StatusRunning   DeploymentStatus = "running"
	StatusDegraded  DeploymentStatus = "degraded"
	StatusFailed    DeploymentStatus = "failed"
)

// Deployment records one deployment of a network function
type Deployment struct {
	Name      string           `json:"name" validate:"required"`
	Function  NetworkFunction  `json:"function" validate:"required"`
	Status    DeploymentStatus `json:"status"`
	Desired   int32            `json:"desired_replicas"`
	Ready     int32            `json:"ready_replicas"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Validate checks the field constraints, including the embedded function
func (d *Deployment) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid deployment: %w", err)
	}
	return d.Function.Validate()
}

// ReplicaSummary renders the ready/desired counts as "2/2"
func (d *Deployment) ReplicaSummary() string {
	return fmt.Sprintf("%d/%d", d.Ready, d.Desired)
}
