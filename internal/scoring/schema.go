package scoring

import (
	"encoding/json"
	"fmt"

	"adaptgrant/internal/utils"
	"adaptgrant/pkg/types"

	"github.com/xeipuuv/gojsonschema"
)

// rubricSchema describes the JSON document accepted by rubric imports.
const rubricSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "totalMaxScore", "passThreshold", "criteria"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "totalMaxScore": {"type": "number", "exclusiveMinimum": 0},
    "passThreshold": {"type": "number", "minimum": 0},
    "criteria": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "category", "maxPoints", "evaluationType"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "category": {
            "type": "string",
            "enum": ["innovation", "climate_adaptation", "business_viability", "financial_management", "team_capacity", "scalability", "dragons_den"]
          },
          "maxPoints": {"type": "number", "exclusiveMinimum": 0},
          "weight": {"type": "number", "exclusiveMinimum": 0},
          "evaluationType": {"type": "string", "enum": ["numeric", "boolean", "levels"]},
          "scoringLevels": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["level", "points"],
              "properties": {
                "level": {"type": "string", "minLength": 1},
                "points": {"type": "number", "minimum": 0},
                "description": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var rubricSchemaLoader = gojsonschema.NewStringLoader(rubricSchema)

type rubricDocument struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	TotalMaxScore float64 `json:"totalMaxScore"`
	PassThreshold float64 `json:"passThreshold"`
	Criteria      []struct {
		Name           string                  `json:"name"`
		Description    string                  `json:"description"`
		Category       types.CriterionCategory `json:"category"`
		MaxPoints      float64                 `json:"maxPoints"`
		Weight         *float64                `json:"weight"`
		EvaluationType types.EvaluationType    `json:"evaluationType"`
		ScoringLevels  []types.ScoringLevel    `json:"scoringLevels"`
	} `json:"criteria"`
}

// ParseRubric validates a rubric JSON document against the import schema and
// the configuration rules, and returns an unsaved, inactive configuration.
func ParseRubric(data []byte) (*types.ScoringConfiguration, error) {
	result, err := gojsonschema.Validate(rubricSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate rubric document: %w", err)
	}

	if !result.Valid() {
		verr := new(ValidationError)
		for _, re := range result.Errors() {
			verr.add(re.Field(), re.Description())
		}
		return nil, verr
	}

	var doc rubricDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rubric document: %w", err)
	}

	config := &types.ScoringConfiguration{
		Name:          doc.Name,
		TotalMaxScore: doc.TotalMaxScore,
		PassThreshold: doc.PassThreshold,
		Criteria:      make([]*types.ScoringCriterion, 0, len(doc.Criteria)),
	}
	if doc.Description != "" {
		config.Description = utils.StringPtr(doc.Description)
	}

	for i, c := range doc.Criteria {
		weight := 1.0
		if c.Weight != nil {
			weight = *c.Weight
		}

		criterion := &types.ScoringCriterion{
			Name:           c.Name,
			Category:       c.Category,
			MaxPoints:      c.MaxPoints,
			Weight:         weight,
			EvaluationType: c.EvaluationType,
			ScoringLevels:  c.ScoringLevels,
			DisplayOrder:   i + 1,
		}
		if c.Description != "" {
			criterion.Description = utils.StringPtr(c.Description)
		}
		if criterion.ScoringLevels == nil {
			criterion.ScoringLevels = []types.ScoringLevel{}
		}

		config.Criteria = append(config.Criteria, criterion)
	}

	if err := ValidateConfiguration(config); err != nil {
		return nil, err
	}

	return config, nil
}
