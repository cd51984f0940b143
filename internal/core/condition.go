package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

var validOperators = map[string]bool{
	model.OperatorEquals:         true,
	model.OperatorNotEquals:      true,
	model.OperatorGreaterThan:    true,
	model.OperatorLessThan:       true,
	model.OperatorGreaterOrEqual: true,
	model.OperatorLessOrEqual:    true,
	model.OperatorIn:             true,
	model.OperatorContains:       true,
}

var validConditionActions = map[string]bool{
	model.ConditionSkipToStep:      true,
	model.ConditionComplete:        true,
	model.ConditionRequireApproval: true,
}

// validateCondition enforces the closed operator/action sets at write time so
// a stored condition can never silently fail to match at evaluation time.
func validateCondition(c *model.StepCondition) error {
	if c.FieldName == "" {
		return fmt.Errorf("%w: condition field_name is required", ErrInvalidInput)
	}
	if !validOperators[c.Operator] {
		return fmt.Errorf("%w: unknown condition operator %q", ErrInvalidInput, c.Operator)
	}
	if !validConditionActions[c.Action] {
		return fmt.Errorf("%w: unknown condition action %q", ErrInvalidInput, c.Action)
	}
	if c.Action == model.ConditionSkipToStep && (c.TargetStepID == nil || *c.TargetStepID == "") {
		return fmt.Errorf("%w: skip_to_step condition requires target_step_id", ErrInvalidInput)
	}
	var v any
	if err := json.Unmarshal(c.Value, &v); err != nil {
		return fmt.Errorf("%w: condition value is not valid JSON", ErrInvalidInput)
	}
	if c.Operator == model.OperatorIn {
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("%w: operator %q requires a JSON array value", ErrInvalidInput, model.OperatorIn)
		}
	}
	return nil
}

// evaluateConditions returns the first condition that matches the entity's
// current field values, or nil. Conditions must already be ordered by
// priority ascending with id as the tie-break.
func evaluateConditions(conds []model.StepCondition, fields map[string]any) *model.StepCondition {
	for i := range conds {
		if conditionMatches(&conds[i], fields) {
			return &conds[i]
		}
	}
	return nil
}

func conditionMatches(c *model.StepCondition, fields map[string]any) bool {
	actual, ok := fields[c.FieldName]
	if !ok {
		return false
	}

	var expected any
	if err := json.Unmarshal(c.Value, &expected); err != nil {
		return false
	}

	switch c.Operator {
	case model.OperatorEquals:
		return valuesEqual(actual, expected)
	case model.OperatorNotEquals:
		return !valuesEqual(actual, expected)
	case model.OperatorGreaterThan, model.OperatorLessThan,
		model.OperatorGreaterOrEqual, model.OperatorLessOrEqual:
		a, aok := toFloat(actual)
		e, eok := toFloat(expected)
		if !aok || !eok {
			return false
		}
		switch c.Operator {
		case model.OperatorGreaterThan:
			return a > e
		case model.OperatorLessThan:
			return a < e
		case model.OperatorGreaterOrEqual:
			return a >= e
		default:
			return a <= e
		}
	case model.OperatorIn:
		list, ok := expected.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if valuesEqual(actual, item) {
				return true
			}
		}
		return false
	case model.OperatorContains:
		as, aok := actual.(string)
		es, eok := expected.(string)
		return aok && eok && strings.Contains(as, es)
	}
	return false
}

// valuesEqual compares two JSON-decoded values, coercing numbers so that an
// integer column matches a condition authored as 5 or 5.0.
func valuesEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
