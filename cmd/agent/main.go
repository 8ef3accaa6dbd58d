package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/corenetops/devops-agent/pkg/agent"
	"github.com/corenetops/devops-agent/pkg/awsx"
	"github.com/corenetops/devops-agent/pkg/guardrails"
	"github.com/corenetops/devops-agent/pkg/interfaces"
	"github.com/corenetops/devops-agent/pkg/k8s"
	"github.com/corenetops/devops-agent/pkg/llm/bedrock"
	"github.com/corenetops/devops-agent/pkg/llm/openai"
	"github.com/corenetops/devops-agent/pkg/logging"
	"github.com/corenetops/devops-agent/pkg/memory"
	"github.com/corenetops/devops-agent/pkg/tool"
	"github.com/corenetops/devops-agent/pkg/tools"
	"github.com/corenetops/devops-agent/pkg/tracing"
)

var (
	configPath string
	verbose    bool
	sessionID  string
	kubeconfig string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agent",
		Short: "Core Network DevOps Agent",
		Long:  "Conversational agent for core network functions, AWS infrastructure, and cluster operations",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence (requires AGENT_REDIS_ADDR)")
	rootCmd.PersistentFlags().StringVar(&kubeconfig, "kubeconfig", os.Getenv("KUBECONFIG"), "Path to kubeconfig (in-cluster config is tried first)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "chat",
			Short: "Start an interactive session",
			RunE:  runChat,
		},
		&cobra.Command{
			Use:   "ask [request]",
			Short: "Process a single request and exit",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runAsk,
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check agent and tool health",
			RunE:  runHealth,
		},
		&cobra.Command{
			Use:   "tools",
			Short: "List available tools",
			RunE:  runTools,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runtime struct {
	agent  *agent.Agent
	store  memory.Store
	logger logging.Logger
}

func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := agent.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(logging.WithLevel(level), logging.WithOutput(os.Stderr))

	model, err := buildModel(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	options := []agent.Option{
		agent.WithModel(model),
		agent.WithLogger(logger),
		agent.WithRegion(cfg.Region),
		agent.WithGuardrails(guardrails.NewPipeline(
			[]guardrails.Guardrail{guardrails.NewSecretRedactor()},
			nil,
		)),
	}
	if cfg.MaxTokens > 0 {
		options = append(options, agent.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.SystemPrompt != "" {
		options = append(options, agent.WithSystemPrompt(cfg.SystemPrompt))
	}
	if len(cfg.AllowedTools) > 0 {
		options = append(options, agent.WithToolRestriction(
			guardrails.NewToolRestriction(cfg.AllowedTools)))
	}

	memoryOptions := []memory.Option{memory.WithLogger(logger)}
	if cfg.Memory.MaxMessages > 0 {
		memoryOptions = append(memoryOptions, memory.WithMaxMessages(cfg.Memory.MaxMessages))
	}
	if cfg.Memory.RetentionHours > 0 {
		memoryOptions = append(memoryOptions,
			memory.WithRetention(time.Duration(cfg.Memory.RetentionHours)*time.Hour))
	}
	conversation := memory.NewConversation(memoryOptions...)
	options = append(options, agent.WithMemory(conversation))

	if cfg.Tracing.Enabled {
		tracer, err := tracing.NewOTelTracer(tracing.Config{
			Enabled:           true,
			ServiceName:       cfg.Name,
			CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
		})
		if err != nil {
			logger.Warn(ctx, "tracing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			options = append(options, agent.WithTracer(tracer))
		}
	}

	registry := tool.NewRegistry(logger)
	clouds := buildCloudClients(ctx, cfg, logger)
	cluster := buildClusterClient(ctx, logger)
	tools.Register(registry, cluster, clouds)
	options = append(options, agent.WithRegistry(registry))

	a, err := agent.New(options...)
	if err != nil {
		return nil, err
	}
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}

	rt := &runtime{agent: a, logger: logger}

	if sessionID != "" {
		store, err := buildSessionStore(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		rt.store = store
		if err := conversation.Load(ctx, store); err != nil && !errors.Is(err, memory.ErrNoSnapshot) {
			logger.Warn(ctx, "could not restore session", map[string]interface{}{"error": err.Error()})
		}
	}

	return rt, nil
}

func buildModel(ctx context.Context, cfg *agent.Config, logger logging.Logger) (interfaces.ModelClient, error) {
	switch cfg.Provider {
	case "", "bedrock":
		options := []bedrock.Option{bedrock.WithLogger(logger)}
		if cfg.ModelID != "" {
			options = append(options, bedrock.WithModelID(cfg.ModelID))
		}
		return bedrock.NewClient(ctx, cfg.Region, options...)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		options := []openai.Option{openai.WithLogger(logger)}
		if cfg.ModelID != "" {
			options = append(options, openai.WithModel(cfg.ModelID))
		}
		return openai.NewClient(apiKey, options...), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// buildCloudClients returns nil when AWS credentials cannot be resolved,
// which drops the AWS-backed tools instead of failing startup.
func buildCloudClients(ctx context.Context, cfg *agent.Config, logger logging.Logger) interfaces.CloudClients {
	clouds, err := awsx.NewManager(ctx, cfg.Region, awsx.WithLogger(logger))
	if err != nil {
		logger.Warn(ctx, "AWS tools unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return clouds
}

// buildClusterClient returns nil when no cluster is reachable
func buildClusterClient(ctx context.Context, logger logging.Logger) interfaces.ClusterClient {
	cluster, err := k8s.NewManager(kubeconfig, "", k8s.WithLogger(logger))
	if err != nil {
		logger.Warn(ctx, "cluster tools unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return cluster
}

func buildSessionStore(ctx context.Context, session string) (memory.Store, error) {
	addr := os.Getenv("AGENT_REDIS_ADDR")
	if addr == "" {
		return memory.NewFileStore(fmt.Sprintf("%s.session.json", session)), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("AGENT_REDIS_PASSWORD"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis unreachable at %s: %w", addr, err)
	}
	return memory.NewRedisStore(client, session), nil
}

func (rt *runtime) saveSession(ctx context.Context) {
	if rt.store == nil {
		return
	}
	if err := rt.agent.Memory().Save(ctx, rt.store); err != nil {
		rt.logger.Warn(ctx, "could not save session", map[string]interface{}{"error": err.Error()})
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Core Network DevOps Agent")
	fmt.Println("Type 'exit' to quit, 'clear' to reset the conversation, 'tools' to list tools.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case "exit", "quit":
			rt.saveSession(ctx)
			return scanner.Err()
		case "clear":
			rt.agent.ClearConversationHistory()
			fmt.Println("Conversation history cleared.")
			continue
		case "tools":
			for _, name := range rt.agent.Tools() {
				fmt.Println("-", name)
			}
			continue
		}

		response := rt.agent.ProcessRequest(ctx, input, nil)
		fmt.Println()
		fmt.Println(response.Content)
		printToolResults(response.ToolResults)
		fmt.Println()
	}

	rt.saveSession(ctx)
	return scanner.Err()
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}

	response := rt.agent.ProcessRequest(ctx, strings.Join(args, " "), nil)
	fmt.Println(response.Content)
	printToolResults(response.ToolResults)
	rt.saveSession(ctx)

	if !response.Success {
		return fmt.Errorf("request failed")
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}

	health := rt.agent.HealthCheck(ctx)
	data, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runTools(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}

	names := rt.agent.Tools()
	if len(names) == 0 {
		fmt.Println("No tools available. Check AWS credentials and cluster access.")
		return nil
	}
	for _, name := range names {
		fmt.Println("-", name)
	}
	return nil
}

func printToolResults(results map[string]interface{}) {
	if len(results) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Tool results:")
	for name, raw := range results {
		result, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if success, _ := result["success"].(bool); success {
			fmt.Printf("  [ok]   %s\n", name)
		} else {
			fmt.Printf("  [fail] %s: %v\n", name, result["error"])
		}
	}
}
