package interfaces

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// EC2API abstracts the EC2 operations the tools need, so tests can
// substitute fakes without real credentials.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	CreateVpc(ctx context.Context, params *ec2.CreateVpcInput, optFns ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error)
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	ModifyVpcAttribute(ctx context.Context, params *ec2.ModifyVpcAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error)
}

// EKSAPI abstracts the EKS operations the tools need
type EKSAPI interface {
	ListClusters(ctx context.Context, params *eks.ListClustersInput, optFns ...func(*eks.Options)) (*eks.ListClustersOutput, error)
	DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

// STSAPI abstracts the STS operations used for credential validation
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CloudClients hands out region-scoped AWS service clients
type CloudClients interface {
	// EC2 returns an EC2 client for the given region ("" means the default region)
	EC2(region string) EC2API

	// EKS returns an EKS client for the given region
	EKS(region string) EKSAPI

	// STS returns an STS client for the default region
	STS() STSAPI

	// Region returns the default region
	Region() string

	// ValidateCredentials checks that the credential chain resolves to a caller identity
	ValidateCredentials(ctx context.Context) (CredentialInfo, error)
}

// CredentialInfo describes the resolved AWS caller identity
type CredentialInfo struct {
	AccountID string
	UserID    string
	ARN       string
	Region    string
}
