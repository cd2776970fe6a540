package monitor

import (
	"context"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Environment represents the deployment environment of a target namespace
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
	EnvironmentUnknown     Environment = "unknown"
)

// EnvironmentConfig holds load testing policy for an environment
type EnvironmentConfig struct {
	AllowLoadTest bool // false means the run refuses unless forced
	RiskTolerance string
	Description   string
}

// GetEnvironmentConfig returns the policy for a given environment
func GetEnvironmentConfig(env Environment) EnvironmentConfig {
	configs := map[Environment]EnvironmentConfig{
		EnvironmentProduction: {
			AllowLoadTest: false,
			RiskTolerance: "LOW",
			Description:   "Production environment - load tests refused unless forced",
		},
		EnvironmentStaging: {
			AllowLoadTest: true,
			RiskTolerance: "MEDIUM",
			Description:   "Staging environment - standard load testing target",
		},
		EnvironmentDevelopment: {
			AllowLoadTest: true,
			RiskTolerance: "HIGH",
			Description:   "Development environment - unrestricted load testing",
		},
		EnvironmentUnknown: {
			AllowLoadTest: true,
			RiskTolerance: "MEDIUM",
			Description:   "Unknown environment - treated as non-production",
		},
	}

	if config, exists := configs[env]; exists {
		return config
	}

	return configs[EnvironmentUnknown]
}

// ClassifyNamespace determines the environment type of a namespace
func ClassifyNamespace(ctx context.Context, clientset *kubernetes.Clientset, namespace string) Environment {
	// Try to get namespace object to check labels
	ns, err := clientset.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
	if err == nil && ns.Labels != nil {
		if env := classifyLabels(ns.Labels); env != EnvironmentUnknown {
			return env
		}
	}

	// Fallback to name-based detection
	return DetectEnvironmentFromName(namespace)
}

// classifyLabels reads namespace labels for an explicit environment marker
func classifyLabels(labels map[string]string) Environment {
	if env, exists := labels["environment"]; exists {
		return normalizeEnvironment(env)
	}

	if tier, exists := labels["tier"]; exists {
		if tier == "prod" || tier == "production" {
			return EnvironmentProduction
		}
		if tier == "staging" || tier == "stage" {
			return EnvironmentStaging
		}
		if tier == "dev" || tier == "development" {
			return EnvironmentDevelopment
		}
	}

	return EnvironmentUnknown
}

// normalizeEnvironment converts label value to Environment type
func normalizeEnvironment(label string) Environment {
	label = strings.ToLower(strings.TrimSpace(label))

	switch label {
	case "production", "prod", "prd":
		return EnvironmentProduction
	case "staging", "stage", "stg":
		return EnvironmentStaging
	case "development", "dev", "test", "testing":
		return EnvironmentDevelopment
	default:
		return EnvironmentUnknown
	}
}

// DetectEnvironmentFromName detects the environment from a namespace or
// hostname. Shared with the run guard, which also checks the target URL.
func DetectEnvironmentFromName(name string) Environment {
	name = strings.ToLower(name)

	prodPatterns := []string{"prod", "production", "prd"}
	for _, pattern := range prodPatterns {
		if strings.Contains(name, pattern) {
			return EnvironmentProduction
		}
	}

	stagingPatterns := []string{"staging", "stage", "stg", "uat"}
	for _, pattern := range stagingPatterns {
		if strings.Contains(name, pattern) {
			return EnvironmentStaging
		}
	}

	devPatterns := []string{"dev", "develop", "test", "sandbox", "demo", "local"}
	for _, pattern := range devPatterns {
		if strings.Contains(name, pattern) {
			return EnvironmentDevelopment
		}
	}

	return EnvironmentUnknown
}
