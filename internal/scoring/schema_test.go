package scoring

import (
	"testing"

	"adaptgrant/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRubric(t *testing.T) {
	doc := []byte(`{
		"name": "Pilot rubric",
		"description": "Two criteria",
		"totalMaxScore": 30,
		"passThreshold": 18,
		"criteria": [
			{"name": "Adaptation impact", "category": "climate_adaptation", "maxPoints": 10, "weight": 2, "evaluationType": "numeric"},
			{
				"name": "Pitch",
				"category": "dragons_den",
				"maxPoints": 10,
				"evaluationType": "levels",
				"scoringLevels": [{"level": "weak", "points": 3}, {"level": "strong", "points": 10}]
			}
		]
	}`)

	config, err := ParseRubric(doc)
	require.NoError(t, err)

	assert.Equal(t, "Pilot rubric", config.Name)
	assert.False(t, config.IsActive)
	require.Len(t, config.Criteria, 2)
	assert.Equal(t, 2.0, config.Criteria[0].Weight)
	assert.Equal(t, 1.0, config.Criteria[1].Weight)
	assert.Equal(t, types.CategoryDragonsDen, config.Criteria[1].Category)
	assert.Len(t, config.Criteria[1].ScoringLevels, 2)
	assert.Equal(t, 2, config.Criteria[1].DisplayOrder)
}

func TestParseRubric_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing criteria", `{"name": "x", "totalMaxScore": 10, "passThreshold": 5}`},
		{"bad category", `{"name": "x", "totalMaxScore": 10, "passThreshold": 5, "criteria": [{"name": "a", "category": "luck", "maxPoints": 10, "evaluationType": "numeric"}]}`},
		{"totals disagree", `{"name": "x", "totalMaxScore": 50, "passThreshold": 5, "criteria": [{"name": "a", "category": "innovation", "maxPoints": 10, "evaluationType": "numeric"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRubric([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
