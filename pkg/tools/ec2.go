package tools

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/tool"
)

// apiErrorMessage extracts the provider's message from an SDK error
func apiErrorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}

func stringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringParam(params map[string]interface{}, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}

// DescribeInstances lists and describes EC2 instances
type DescribeInstances struct {
	*tool.Base
	clients interfaces.CloudClients
}

// NewDescribeInstances creates the describe_ec2_instances tool
func NewDescribeInstances(clients interfaces.CloudClients) *DescribeInstances {
	return &DescribeInstances{
		Base: tool.NewBase(&tool.Spec{
			Name:        "describe_ec2_instances",
			Description: "List and describe EC2 instances",
			Parameters: []tool.Parameter{
				{Name: "region", Type: tool.TypeString, Description: "AWS region"},
				{Name: "instance_ids", Type: tool.TypeArray, Description: "Specific instance IDs"},
				{Name: "filters", Type: tool.TypeObject, Description: "Filter criteria as name/value pairs"},
			},
		}),
		clients: clients,
	}
}

// Execute calls the EC2 API and summarizes the reservations
func (t *DescribeInstances) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	region := stringParam(params, "region")

	input := &ec2.DescribeInstancesInput{}
	if ids := stringSlice(params["instance_ids"]); len(ids) > 0 {
		input.InstanceIds = ids
	}
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		for name, value := range filters {
			if s, ok := value.(string); ok {
				input.Filters = append(input.Filters, ec2types.Filter{
					Name:   aws.String(name),
					Values: []string{s},
				})
			}
		}
	}

	output, err := t.clients.EC2(region).DescribeInstances(ctx, input)
	if err != nil {
		return tool.Errorf("AWS API error: %s", apiErrorMessage(err)), nil
	}

	instances := []map[string]interface{}{}
	for _, reservation := range output.Reservations {
		for _, instance := range reservation.Instances {
			instances = append(instances, summarizeInstance(instance))
		}
	}

	effectiveRegion := region
	if effectiveRegion == "" {
		effectiveRegion = t.clients.Region()
	}

	return tool.NewResult(map[string]interface{}{
		"instances": instances,
		"count":     len(instances),
		"region":    effectiveRegion,
	}), nil
}

func summarizeInstance(instance ec2types.Instance) map[string]interface{} {
	securityGroups := make([]string, 0, len(instance.SecurityGroups))
	for _, sg := range instance.SecurityGroups {
		securityGroups = append(securityGroups, aws.ToString(sg.GroupName))
	}

	summary := map[string]interface{}{
		"instance_id":     aws.ToString(instance.InstanceId),
		"instance_type":   string(instance.InstanceType),
		"state":           string(instance.State.Name),
		"private_ip":      aws.ToString(instance.PrivateIpAddress),
		"public_ip":       aws.ToString(instance.PublicIpAddress),
		"vpc_id":          aws.ToString(instance.VpcId),
		"subnet_id":       aws.ToString(instance.SubnetId),
		"security_groups": securityGroups,
		"tags":            tagMap(instance.Tags),
	}
	if instance.LaunchTime != nil {
		summary["launch_time"] = instance.LaunchTime.String()
	}
	return summary
}

func tagMap(tags []ec2types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return m
}

// DescribeVPCs lists and describes VPCs
type DescribeVPCs struct {
	*tool.Base
	clients interfaces.CloudClients
}

// NewDescribeVPCs creates the describe_vpcs tool
func NewDescribeVPCs(clients interfaces.CloudClients) *DescribeVPCs {
	return &DescribeVPCs{
		Base: tool.NewBase(&tool.Spec{
			Name:        "describe_vpcs",
			Description: "List and describe VPCs",
			Parameters: []tool.Parameter{
				{Name: "region", Type: tool.TypeString, Description: "AWS region"},
				{Name: "vpc_ids", Type: tool.TypeArray, Description: "Specific VPC IDs"},
			},
		}),
		clients: clients,
	}
}

// Execute calls the EC2 API and summarizes the VPCs
func (t *DescribeVPCs) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	region := stringParam(params, "region")

	input := &ec2.DescribeVpcsInput{}
	if ids := stringSlice(params["vpc_ids"]); len(ids) > 0 {
		input.VpcIds = ids
	}

	output, err := t.clients.EC2(region).DescribeVpcs(ctx, input)
	if err != nil {
		return tool.Errorf("AWS API error: %s", apiErrorMessage(err)), nil
	}

	vpcs := []map[string]interface{}{}
	for _, vpc := range output.Vpcs {
		tags := tagMap(vpc.Tags)
		name := tags["Name"]
		if name == "" {
			name = "N/A"
		}
		vpcs = append(vpcs, map[string]interface{}{
			"vpc_id":     aws.ToString(vpc.VpcId),
			"cidr_block": aws.ToString(vpc.CidrBlock),
			"state":      string(vpc.State),
			"name":       name,
			"is_default": aws.ToBool(vpc.IsDefault),
			"tags":       tags,
		})
	}

	effectiveRegion := region
	if effectiveRegion == "" {
		effectiveRegion = t.clients.Region()
	}

	return tool.NewResult(map[string]interface{}{
		"vpcs":   vpcs,
		"count":  len(vpcs),
		"region": effectiveRegion,
	}), nil
}

// CreateInstance launches a single EC2 instance
type CreateInstance struct {
	*tool.Base
	clients interfaces.CloudClients
}

// NewCreateInstance creates the create_ec2_instance tool
func NewCreateInstance(clients interfaces.CloudClients) *CreateInstance {
	return &CreateInstance{
		Base: tool.NewBase(&tool.Spec{
			Name:        "create_ec2_instance",
			Description: "Launch a new EC2 instance",
			Parameters: []tool.Parameter{
				{Name: "image_id", Type: tool.TypeString, Description: "AMI ID to launch from", Required: true},
				{Name: "instance_type", Type: tool.TypeString, Description: "Instance type", Default: "t3.micro"},
				{Name: "region", Type: tool.TypeString, Description: "AWS region"},
				{Name: "key_name", Type: tool.TypeString, Description: "SSH key pair name"},
				{Name: "security_group_ids", Type: tool.TypeArray, Description: "Security group IDs"},
				{Name: "subnet_id", Type: tool.TypeString, Description: "Subnet to launch into"},
				{Name: "user_data", Type: tool.TypeString, Description: "Instance bootstrap script"},
				{Name: "tags", Type: tool.TypeObject, Description: "Tags as key/value pairs"},
			},
		}),
		clients: clients,
	}
}

// Execute launches the instance and tags it
func (t *CreateInstance) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	region := stringParam(params, "region")
	client := t.clients.EC2(region)

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(stringParam(params, "image_id")),
		InstanceType: ec2types.InstanceType(stringParam(params, "instance_type")),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
	}
	if keyName := stringParam(params, "key_name"); keyName != "" {
		input.KeyName = aws.String(keyName)
	}
	if groups := stringSlice(params["security_group_ids"]); len(groups) > 0 {
		input.SecurityGroupIds = groups
	}
	if subnet := stringParam(params, "subnet_id"); subnet != "" {
		input.SubnetId = aws.String(subnet)
	}
	if userData := stringParam(params, "user_data"); userData != "" {
		input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(userData)))
	}

	output, err := client.RunInstances(ctx, input)
	if err != nil {
		return tool.Errorf("AWS API error: %s", apiErrorMessage(err)), nil
	}
	if len(output.Instances) == 0 {
		return tool.Errorf("AWS API error: no instance returned"), nil
	}
	instance := output.Instances[0]

	if tags := paramTags(params); len(tags) > 0 {
		_, err := client.CreateTags(ctx, &ec2.CreateTagsInput{
			Resources: []string{aws.ToString(instance.InstanceId)},
			Tags:      tags,
		})
		if err != nil {
			return tool.Errorf("AWS API error: instance %s launched but tagging failed: %s",
				aws.ToString(instance.InstanceId), apiErrorMessage(err)), nil
		}
	}

	return tool.NewResult(map[string]interface{}{
		"instance_id":   aws.ToString(instance.InstanceId),
		"instance_type": string(instance.InstanceType),
		"state":         string(instance.State.Name),
		"private_ip":    aws.ToString(instance.PrivateIpAddress),
		"vpc_id":        aws.ToString(instance.VpcId),
		"subnet_id":     aws.ToString(instance.SubnetId),
	}), nil
}

func paramTags(params map[string]interface{}) []ec2types.Tag {
	raw, ok := params["tags"].(map[string]interface{})
	if !ok {
		return nil
	}
	tags := make([]ec2types.Tag, 0, len(raw))
	for key, value := range raw {
		if s, ok := value.(string); ok {
			tags = append(tags, ec2types.Tag{Key: aws.String(key), Value: aws.String(s)})
		}
	}
	return tags
}

// CreateVPC creates a VPC with DNS support enabled
type CreateVPC struct {
	*tool.Base
	clients interfaces.CloudClients
}

// NewCreateVPC creates the create_vpc tool
func NewCreateVPC(clients interfaces.CloudClients) *CreateVPC {
	return &CreateVPC{
		Base: tool.NewBase(&tool.Spec{
			Name:        "create_vpc",
			Description: "Create a new VPC",
			Parameters: []tool.Parameter{
				{Name: "cidr_block", Type: tool.TypeString, Description: "CIDR block for the VPC", Default: "10.0.0.0/16"},
				{Name: "name", Type: tool.TypeString, Description: "Name tag for the VPC"},
				{Name: "region", Type: tool.TypeString, Description: "AWS region"},
			},
		}),
		clients: clients,
	}
}

// Execute creates the VPC, names it, and enables DNS resolution
func (t *CreateVPC) Execute(ctx context.Context, params map[string]interface{}) (*tool.Result, error) {
	region := stringParam(params, "region")
	client := t.clients.EC2(region)

	cidr := stringParam(params, "cidr_block")
	output, err := client.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock: aws.String(cidr),
	})
	if err != nil {
		return tool.Errorf("AWS API error: %s", apiErrorMessage(err)), nil
	}
	vpcID := aws.ToString(output.Vpc.VpcId)

	name := stringParam(params, "name")
	if name != "" {
		_, err := client.CreateTags(ctx, &ec2.CreateTagsInput{
			Resources: []string{vpcID},
			Tags:      []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}},
		})
		if err != nil {
			return tool.Errorf("AWS API error: VPC %s created but tagging failed: %s",
				vpcID, apiErrorMessage(err)), nil
		}
	}

	// Instances in the VPC get resolvable DNS names
	for _, attr := range []*ec2.ModifyVpcAttributeInput{
		{VpcId: aws.String(vpcID), EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}},
		{VpcId: aws.String(vpcID), EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)}},
	} {
		if _, err := client.ModifyVpcAttribute(ctx, attr); err != nil {
			return tool.Errorf("AWS API error: VPC %s created but enabling DNS failed: %s",
				vpcID, apiErrorMessage(err)), nil
		}
	}

	return tool.NewResult(map[string]interface{}{
		"vpc_id":     vpcID,
		"cidr_block": aws.ToString(output.Vpc.CidrBlock),
		"state":      string(output.Vpc.State),
		"name":       name,
	}), nil
}
