package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
	"github.com/corenetops/devops-agent/pkg/tool"
)

type fakeEC2 struct {
	instancesOutput *ec2.DescribeInstancesOutput
	vpcsOutput      *ec2.DescribeVpcsOutput
	runOutput       *ec2.RunInstancesOutput
	createVpcOutput *ec2.CreateVpcOutput
	err             error
	tagErr          error
	lastInput       *ec2.DescribeInstancesInput
	lastRunInput    *ec2.RunInstancesInput
	taggedResources []string
	tags            []ec2types.Tag
	vpcAttributes   []*ec2.ModifyVpcAttributeInput
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.lastInput = params
	return f.instancesOutput, f.err
}

func (f *fakeEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return f.vpcsOutput, f.err
}

func (f *fakeEC2) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	f.lastRunInput = params
	return f.runOutput, f.err
}

func (f *fakeEC2) CreateVpc(ctx context.Context, params *ec2.CreateVpcInput, optFns ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	return f.createVpcOutput, f.err
}

func (f *fakeEC2) CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	f.taggedResources = append(f.taggedResources, params.Resources...)
	f.tags = append(f.tags, params.Tags...)
	return &ec2.CreateTagsOutput{}, nil
}

func (f *fakeEC2) ModifyVpcAttribute(ctx context.Context, params *ec2.ModifyVpcAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error) {
	f.vpcAttributes = append(f.vpcAttributes, params)
	return &ec2.ModifyVpcAttributeOutput{}, nil
}

type fakeEKS struct {
	clusters map[string]*ekstypes.Cluster
	err      error
}

func (f *fakeEKS) ListClusters(ctx context.Context, params *eks.ListClustersInput, optFns ...func(*eks.Options)) (*eks.ListClustersOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make([]string, 0, len(f.clusters))
	for name := range f.clusters {
		names = append(names, name)
	}
	return &eks.ListClustersOutput{Clusters: names}, nil
}

func (f *fakeEKS) DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error) {
	cluster, ok := f.clusters[aws.ToString(params.Name)]
	if !ok {
		return nil, errors.New("cluster not found")
	}
	return &eks.DescribeClusterOutput{Cluster: cluster}, nil
}

type fakeClouds struct {
	ec2       *fakeEC2
	eks       *fakeEKS
	region    string
	creds     interfaces.CredentialInfo
	credsErr  error
	ec2Region string
}

func (f *fakeClouds) EC2(region string) interfaces.EC2API {
	f.ec2Region = region
	return f.ec2
}

func (f *fakeClouds) EKS(region string) interfaces.EKSAPI { return f.eks }

func (f *fakeClouds) STS() interfaces.STSAPI { return nil }

func (f *fakeClouds) Region() string { return f.region }

func (f *fakeClouds) ValidateCredentials(ctx context.Context) (interfaces.CredentialInfo, error) {
	return f.creds, f.credsErr
}

type fakeCluster struct {
	deployments map[string][]interfaces.DeploymentInfo
	created     []interfaces.DeploymentRequest
	createErr   error
	listErr     error
	health      interfaces.ClusterHealth
}

func (f *fakeCluster) ListNamespaces(ctx context.Context) ([]string, error) {
	return []string{"default", "core-network"}, nil
}

func (f *fakeCluster) ListPods(ctx context.Context, namespace string) ([]interfaces.PodInfo, error) {
	return nil, nil
}

func (f *fakeCluster) ListDeployments(ctx context.Context, namespace string) ([]interfaces.DeploymentInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.deployments[namespace], nil
}

func (f *fakeCluster) CreateDeployment(ctx context.Context, req interfaces.DeploymentRequest) (*interfaces.DeploymentInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &interfaces.DeploymentInfo{
		Name:      req.Name,
		Namespace: req.Namespace,
		Replicas:  req.Replicas,
		Image:     req.Image,
		Labels:    req.Labels,
	}, nil
}

func (f *fakeCluster) Health(ctx context.Context) interfaces.ClusterHealth {
	return f.health
}

func invoke(t *testing.T, tl tool.Tool, params map[string]interface{}) *tool.Result {
	t.Helper()
	return tool.Invoke(context.Background(), logging.Noop(), tl, params)
}

func TestDescribeInstances(t *testing.T) {
	clouds := &fakeClouds{
		region: "us-east-1",
		ec2: &fakeEC2{
			instancesOutput: &ec2.DescribeInstancesOutput{
				Reservations: []ec2types.Reservation{{
					Instances: []ec2types.Instance{{
						InstanceId:   aws.String("i-0abc"),
						InstanceType: ec2types.InstanceTypeT3Medium,
						State:        &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
						VpcId:        aws.String("vpc-123"),
						Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("amf-node")}},
					}},
				}},
			},
		},
	}

	result := invoke(t, NewDescribeInstances(clouds), map[string]interface{}{
		"instance_ids": []interface{}{"i-0abc"},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 1, result.Data["count"])
	assert.Equal(t, "us-east-1", result.Data["region"])
	assert.Equal(t, []string{"i-0abc"}, clouds.ec2.lastInput.InstanceIds)

	instances := result.Data["instances"].([]map[string]interface{})
	require.Len(t, instances, 1)
	assert.Equal(t, "i-0abc", instances[0]["instance_id"])
	assert.Equal(t, "running", instances[0]["state"])
}

func TestDescribeInstancesAPIError(t *testing.T) {
	clouds := &fakeClouds{
		region: "us-east-1",
		ec2:    &fakeEC2{err: errors.New("UnauthorizedOperation")},
	}

	result := invoke(t, NewDescribeInstances(clouds), map[string]interface{}{})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "AWS API error")
}

func TestDescribeVPCs(t *testing.T) {
	clouds := &fakeClouds{
		region: "eu-west-1",
		ec2: &fakeEC2{
			vpcsOutput: &ec2.DescribeVpcsOutput{
				Vpcs: []ec2types.Vpc{{
					VpcId:     aws.String("vpc-123"),
					CidrBlock: aws.String("10.0.0.0/16"),
					State:     ec2types.VpcStateAvailable,
					IsDefault: aws.Bool(false),
				}},
			},
		},
	}

	result := invoke(t, NewDescribeVPCs(clouds), map[string]interface{}{})

	require.True(t, result.Success, result.Error)
	vpcs := result.Data["vpcs"].([]map[string]interface{})
	require.Len(t, vpcs, 1)
	assert.Equal(t, "vpc-123", vpcs[0]["vpc_id"])
	assert.Equal(t, "N/A", vpcs[0]["name"])
}

func TestCreateInstance(t *testing.T) {
	clouds := &fakeClouds{
		region: "us-east-1",
		ec2: &fakeEC2{
			runOutput: &ec2.RunInstancesOutput{
				Instances: []ec2types.Instance{{
					InstanceId:   aws.String("i-0new"),
					InstanceType: ec2types.InstanceTypeT3Micro,
					State:        &ec2types.InstanceState{Name: ec2types.InstanceStateNamePending},
					VpcId:        aws.String("vpc-123"),
					SubnetId:     aws.String("subnet-1"),
				}},
			},
		},
	}

	result := invoke(t, NewCreateInstance(clouds), map[string]interface{}{
		"image_id": "ami-0abc",
		"tags":     map[string]interface{}{"Name": "amf-node"},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "i-0new", result.Data["instance_id"])
	assert.Equal(t, "t3.micro", result.Data["instance_type"])
	assert.Equal(t, "pending", result.Data["state"])

	run := clouds.ec2.lastRunInput
	require.NotNil(t, run)
	assert.Equal(t, "ami-0abc", aws.ToString(run.ImageId))
	assert.Equal(t, ec2types.InstanceTypeT3Micro, run.InstanceType)
	assert.Equal(t, int32(1), aws.ToInt32(run.MinCount))
	assert.Equal(t, int32(1), aws.ToInt32(run.MaxCount))

	require.Equal(t, []string{"i-0new"}, clouds.ec2.taggedResources)
	require.Len(t, clouds.ec2.tags, 1)
	assert.Equal(t, "amf-node", aws.ToString(clouds.ec2.tags[0].Value))
}

func TestCreateInstanceRequiresImageID(t *testing.T) {
	clouds := &fakeClouds{region: "us-east-1", ec2: &fakeEC2{}}

	result := invoke(t, NewCreateInstance(clouds), map[string]interface{}{})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "image_id")
	assert.Nil(t, clouds.ec2.lastRunInput)
}

func TestCreateVPC(t *testing.T) {
	clouds := &fakeClouds{
		region: "us-east-1",
		ec2: &fakeEC2{
			createVpcOutput: &ec2.CreateVpcOutput{
				Vpc: &ec2types.Vpc{
					VpcId:     aws.String("vpc-0new"),
					CidrBlock: aws.String("10.0.0.0/16"),
					State:     ec2types.VpcStatePending,
				},
			},
		},
	}

	result := invoke(t, NewCreateVPC(clouds), map[string]interface{}{
		"name": "core-vpc",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "vpc-0new", result.Data["vpc_id"])
	assert.Equal(t, "10.0.0.0/16", result.Data["cidr_block"])
	assert.Equal(t, "core-vpc", result.Data["name"])

	require.Equal(t, []string{"vpc-0new"}, clouds.ec2.taggedResources)

	require.Len(t, clouds.ec2.vpcAttributes, 2)
	assert.True(t, aws.ToBool(clouds.ec2.vpcAttributes[0].EnableDnsHostnames.Value))
	assert.True(t, aws.ToBool(clouds.ec2.vpcAttributes[1].EnableDnsSupport.Value))
}

func TestCreateVPCAPIError(t *testing.T) {
	clouds := &fakeClouds{
		region: "us-east-1",
		ec2:    &fakeEC2{err: errors.New("VpcLimitExceeded")},
	}

	result := invoke(t, NewCreateVPC(clouds), map[string]interface{}{})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "AWS API error")
}

func TestListEKSClusters(t *testing.T) {
	clouds := &fakeClouds{
		region: "us-east-1",
		eks: &fakeEKS{
			clusters: map[string]*ekstypes.Cluster{
				"core": {
					Name:    aws.String("core"),
					Status:  ekstypes.ClusterStatusActive,
					Version: aws.String("1.29"),
				},
			},
		},
	}

	result := invoke(t, NewListEKSClusters(clouds), map[string]interface{}{})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 1, result.Data["count"])
	clusters := result.Data["clusters"].([]map[string]interface{})
	assert.Equal(t, "ACTIVE", clusters[0]["status"])
}

func TestDeployNetworkFunction(t *testing.T) {
	cluster := &fakeCluster{}

	result := invoke(t, NewDeployNetworkFunction(cluster), map[string]interface{}{
		"function_type": "AMF",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "amf", result.Data["name"])
	assert.Equal(t, "core-network", result.Data["namespace"])
	assert.Equal(t, "deploying", result.Data["status"])

	require.Len(t, cluster.created, 1)
	req := cluster.created[0]
	assert.Equal(t, "core-network/amf:latest", req.Image)
	assert.Equal(t, int32(2), req.Replicas)
	assert.Equal(t, "AMF", req.Labels[functionTypeLabel])
	assert.Equal(t, "00101", req.Env["PLMN_ID"])
}

func TestDeployNetworkFunctionRejectsUnknownType(t *testing.T) {
	cluster := &fakeCluster{}

	result := invoke(t, NewDeployNetworkFunction(cluster), map[string]interface{}{
		"function_type": "XYZ",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "function_type")
	assert.Empty(t, cluster.created)
}

func TestDeployNetworkFunctionClusterError(t *testing.T) {
	cluster := &fakeCluster{createErr: errors.New("namespaces \"core-network\" not found")}

	result := invoke(t, NewDeployNetworkFunction(cluster), map[string]interface{}{
		"function_type": "SMF",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "deployment failed")
}

func TestListNetworkFunctions(t *testing.T) {
	cluster := &fakeCluster{
		deployments: map[string][]interfaces.DeploymentInfo{
			"core-network": {
				{Name: "amf", Namespace: "core-network", Replicas: 2, ReadyReplicas: 2, Labels: map[string]string{functionTypeLabel: "AMF"}},
				{Name: "smf", Namespace: "core-network", Replicas: 2, ReadyReplicas: 1, Labels: map[string]string{functionTypeLabel: "SMF"}},
			},
		},
	}

	result := invoke(t, NewListNetworkFunctions(cluster), map[string]interface{}{})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, result.Data["count"])
	functions := result.Data["functions"].([]map[string]interface{})
	assert.Equal(t, "2/2", functions[0]["replicas"])
	assert.Equal(t, "running", functions[0]["status"])
	assert.Equal(t, "degraded", functions[1]["status"])
}

func TestListNetworkFunctionsTypeFilter(t *testing.T) {
	cluster := &fakeCluster{
		deployments: map[string][]interfaces.DeploymentInfo{
			"core-network": {
				{Name: "amf", Replicas: 1, ReadyReplicas: 1, Labels: map[string]string{functionTypeLabel: "AMF"}},
				{Name: "upf", Replicas: 1, ReadyReplicas: 1, Labels: map[string]string{functionTypeLabel: "UPF"}},
			},
		},
	}

	result := invoke(t, NewListNetworkFunctions(cluster), map[string]interface{}{
		"function_type": "upf",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 1, result.Data["count"])
}

func TestSystemHealthAllHealthy(t *testing.T) {
	cluster := &fakeCluster{
		health: interfaces.ClusterHealth{Status: "healthy", NodeCount: 3, ReadyNodes: 3, NamespaceCount: 5},
		deployments: map[string][]interfaces.DeploymentInfo{
			"core-network": {
				{Name: "amf", Replicas: 2, ReadyReplicas: 2},
			},
		},
	}
	clouds := &fakeClouds{
		region: "us-east-1",
		creds:  interfaces.CredentialInfo{AccountID: "123456789012", ARN: "arn:aws:iam::123456789012:user/ops", Region: "us-east-1"},
	}

	result := invoke(t, NewSystemHealth(cluster, clouds), map[string]interface{}{})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "healthy", result.Data["status"])
	cloudSection := result.Data["cloud"].(map[string]interface{})
	assert.Equal(t, "123456789012", cloudSection["account"])
}

func TestSystemHealthDegradedOnCredentialFailure(t *testing.T) {
	cluster := &fakeCluster{
		health: interfaces.ClusterHealth{Status: "healthy"},
	}
	clouds := &fakeClouds{
		region:   "us-east-1",
		credsErr: errors.New("ExpiredToken"),
	}

	result := invoke(t, NewSystemHealth(cluster, clouds), map[string]interface{}{})

	require.True(t, result.Success)
	assert.Equal(t, "degraded", result.Data["status"])
}

func TestSystemHealthWithoutCloudClients(t *testing.T) {
	cluster := &fakeCluster{
		health: interfaces.ClusterHealth{Status: "healthy"},
	}

	result := invoke(t, NewSystemHealth(cluster, nil), map[string]interface{}{})

	require.True(t, result.Success)
	cloudSection := result.Data["cloud"].(map[string]interface{})
	assert.Equal(t, "unavailable", cloudSection["status"])
}

func TestAllSkipsMissingClients(t *testing.T) {
	cluster := &fakeCluster{}

	names := map[string]bool{}
	for _, tl := range All(cluster, nil) {
		names[tl.Name()] = true
	}

	assert.True(t, names["deploy_network_function"])
	assert.True(t, names["list_network_functions"])
	assert.True(t, names["get_system_health"])
	assert.False(t, names["describe_ec2_instances"])
}
