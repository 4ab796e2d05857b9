package elastic

import (
	"Learnify/internal/models"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery_AddsTermFilters(t *testing.T) {
	q := searchQuery(models.CourseFilter{Category: "dev", Level: models.LevelBeginner, Tag: "go"}, "golang")

	raw, err := json.Marshal(q)
	require.NoError(t, err)

	var decoded struct {
		Bool struct {
			Must struct {
				MultiMatch struct {
					Query string `json:"query"`
				} `json:"multi_match"`
			} `json:"must"`
			Filter []map[string]map[string]string `json:"filter"`
		} `json:"bool"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "golang", decoded.Bool.Must.MultiMatch.Query)
	require.Len(t, decoded.Bool.Filter, 3)
	assert.Equal(t, "dev", decoded.Bool.Filter[0]["term"]["category"])
	assert.Equal(t, "beginner", decoded.Bool.Filter[1]["term"]["level"])
	assert.Equal(t, "go", decoded.Bool.Filter[2]["term"]["tags"])
}

func TestSearchQuery_NoFilters(t *testing.T) {
	q := searchQuery(models.CourseFilter{}, "x")
	b := q["bool"].(map[string]any)
	assert.Empty(t, b["filter"])
}
