package maintenance

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const (
	planLoadErrorTemplateConstant        = "failed to load maintenance plan: %w"
	planParseErrorTemplateConstant       = "failed to parse maintenance plan: %w"
	planPathRequiredMessageConstant      = "maintenance plan path must be provided"
	planEmptyStepsMessageConstant        = "maintenance plan must define at least one step"
	planOperationMissingMessageConstant  = "maintenance step missing operation name"
	planOperationUnknownTemplateConstant = "maintenance step %d references unknown operation %q"
	optionsDecodeErrorTemplateConstant   = "failed to decode step options: %w"
)

// OperationType identifies supported maintenance operations.
type OperationType string

// Supported maintenance operations.
const (
	OperationRepoSync       OperationType = OperationType("repo-sync")
	OperationSnapshotRotate OperationType = OperationType("snapshot-rotate")
	OperationMonitor        OperationType = OperationType("monitor")
)

var supportedOperations = map[OperationType]struct{}{
	OperationRepoSync:       {},
	OperationSnapshotRotate: {},
	OperationMonitor:        {},
}

// Plan describes the ordered maintenance steps loaded from YAML.
type Plan struct {
	Steps []StepDefinition `yaml:"steps"`
}

// StepDefinition associates an operation type with declarative options.
type StepDefinition struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// LoadPlan reads a maintenance plan from disk and performs basic validation.
//
// Plans may declare steps at the document root or nested under a maintenance
// key.
func LoadPlan(filePath string) (Plan, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Plan{}, errors.New(planPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Plan{}, fmt.Errorf(planLoadErrorTemplateConstant, readError)
	}

	var plan Plan
	if unmarshalError := yaml.Unmarshal(contentBytes, &plan); unmarshalError != nil {
		return Plan{}, fmt.Errorf(planParseErrorTemplateConstant, unmarshalError)
	}

	if len(plan.Steps) == 0 {
		var wrapper struct {
			Maintenance Plan `yaml:"maintenance"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			plan = wrapper.Maintenance
		}
	}

	if len(plan.Steps) == 0 {
		return Plan{}, errors.New(planEmptyStepsMessageConstant)
	}

	for stepIndex := range plan.Steps {
		trimmedOperation := strings.TrimSpace(string(plan.Steps[stepIndex].Operation))
		if len(trimmedOperation) == 0 {
			return Plan{}, errors.New(planOperationMissingMessageConstant)
		}
		plan.Steps[stepIndex].Operation = OperationType(trimmedOperation)
		if _, operationSupported := supportedOperations[plan.Steps[stepIndex].Operation]; !operationSupported {
			return Plan{}, fmt.Errorf(planOperationUnknownTemplateConstant, stepIndex, trimmedOperation)
		}
	}

	return plan, nil
}

// DecodeStepOptions maps step options onto a typed configuration value.
func DecodeStepOptions(options map[string]any, target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if decoderError != nil {
		return fmt.Errorf(optionsDecodeErrorTemplateConstant, decoderError)
	}

	if decodeError := decoder.Decode(options); decodeError != nil {
		return fmt.Errorf(optionsDecodeErrorTemplateConstant, decodeError)
	}

	return nil
}
