package awsx

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/logging"
)

// Manager hands out cached, region-scoped AWS service clients over a single
// resolved credential chain. It implements interfaces.CloudClients.
type Manager struct {
	cfg    aws.Config
	region string
	logger logging.Logger

	mu         sync.Mutex
	ec2Clients map[string]interfaces.EC2API
	eksClients map[string]interfaces.EKSAPI
	stsClient  interfaces.STSAPI
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger for the manager
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager loads the default AWS configuration for the given region
func NewManager(ctx context.Context, region string, options ...Option) (*Manager, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	m := &Manager{
		cfg:        cfg,
		region:     region,
		logger:     logging.New(),
		ec2Clients: make(map[string]interfaces.EC2API),
		eksClients: make(map[string]interfaces.EKSAPI),
	}

	for _, option := range options {
		option(m)
	}

	m.logger.Info(ctx, "AWS client manager initialized", map[string]interface{}{"region": region})
	return m, nil
}

func (m *Manager) regionConfig(region string) aws.Config {
	if region == "" || region == m.region {
		return m.cfg
	}
	cfg := m.cfg.Copy()
	cfg.Region = region
	return cfg
}

// EC2 returns an EC2 client for the given region, creating and caching it
// on first use. An empty region means the default region.
func (m *Manager) EC2(region string) interfaces.EC2API {
	if region == "" {
		region = m.region
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.ec2Clients[region]; ok {
		return client
	}
	client := ec2.NewFromConfig(m.regionConfig(region))
	m.ec2Clients[region] = client
	return client
}

// EKS returns an EKS client for the given region
func (m *Manager) EKS(region string) interfaces.EKSAPI {
	if region == "" {
		region = m.region
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.eksClients[region]; ok {
		return client
	}
	client := eks.NewFromConfig(m.regionConfig(region))
	m.eksClients[region] = client
	return client
}

// STS returns an STS client for the default region
func (m *Manager) STS() interfaces.STSAPI {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stsClient == nil {
		m.stsClient = sts.NewFromConfig(m.cfg)
	}
	return m.stsClient
}

// BedrockRuntime returns a Bedrock runtime client for the default region
func (m *Manager) BedrockRuntime() *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(m.cfg)
}

// Region returns the default region
func (m *Manager) Region() string {
	return m.region
}

// ValidateCredentials checks that the credential chain resolves to a caller
// identity and returns the account details.
func (m *Manager) ValidateCredentials(ctx context.Context) (interfaces.CredentialInfo, error) {
	identity, err := m.STS().GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		m.logger.Error(ctx, "Credential validation failed", map[string]interface{}{"error": err.Error()})
		return interfaces.CredentialInfo{}, fmt.Errorf("aws credential validation: %w", err)
	}

	info := interfaces.CredentialInfo{
		AccountID: aws.ToString(identity.Account),
		UserID:    aws.ToString(identity.UserId),
		ARN:       aws.ToString(identity.Arn),
		Region:    m.region,
	}

	m.logger.Info(ctx, "AWS credentials validated", map[string]interface{}{
		"account_id": info.AccountID,
		"region":     info.Region,
	})
	return info, nil
}
