package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FunctionType enumerates the supported core network function types
type FunctionType string

// Core network function types
const (
	FunctionAMF FunctionType = "AMF"
	FunctionSMF FunctionType = "SMF"
	FunctionUPF FunctionType = "UPF"
	FunctionNRF FunctionType = "NRF"
	FunctionMME FunctionType = "MME"
	FunctionSGW FunctionType = "SGW"
	FunctionPGW FunctionType = "PGW"
)

// NetworkFunction describes a core network function to deploy. It is a
// passive record: field constraints are enforced by Validate, behavior
// lives in the tools that consume it.
type NetworkFunction struct {
	Name         string            `json:"name" validate:"required,hostname_rfc1123"`
	Type         FunctionType      `json:"type" validate:"required,oneof=AMF SMF UPF NRF MME SGW PGW"`
	Namespace    string            `json:"namespace" validate:"required,hostname_rfc1123"`
	Image        string            `json:"image" validate:"required"`
	Version      string            `json:"version,omitempty"`
	Replicas     int32             `json:"replicas" validate:"gte=1,lte=32"`
	PLMNID       string            `json:"plmn_id,omitempty" validate:"omitempty,len=5|len=6,numeric"`
	ServicePorts []int32           `json:"service_ports,omitempty" validate:"dive,gt=0,lte=65535"`
	Environment  map[string]string `json:"environment,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
}

var validate = validator.New()

// Validate checks the field constraints
func (nf *NetworkFunction) Validate() error {
	if err := validate.Struct(nf); err != nil {
		return fmt.Errorf("invalid network function: %w", err)
	}
	return nil
}

// DefaultImage returns the conventional image for a function type
func DefaultImage(functionType FunctionType) string {
	return fmt.Sprintf("core-network/%s:latest", strings.ToLower(string(functionType)))
}

// DefaultPorts returns the conventional service ports for a function type
func DefaultPorts(functionType FunctionType) []int32 {
	switch functionType {
	case FunctionAMF:
		return []int32{80, 8080, 29518}
	case FunctionSMF:
		return []int32{80, 8080, 29502}
	case FunctionUPF:
		return []int32{8805, 2152}
	default:
		return []int32{80, 8080}
	}
}
