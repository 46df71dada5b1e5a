package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTempID(t *testing.T) {
	assert.NoError(t, ValidateTempID("temp_3b241101-e2bb-4255-8caf-4136c566a962"))
	assert.Error(t, ValidateTempID("3b241101-e2bb-4255-8caf-4136c566a962"))
	assert.Error(t, ValidateTempID("temp_nope"))
	assert.Error(t, ValidateTempID(""))
}

func TestValidateAnalysisID(t *testing.T) {
	assert.NoError(t, ValidateAnalysisID("3b241101-e2bb-4255-8caf-4136c566a962"))
	assert.Error(t, ValidateAnalysisID(""))
	assert.Error(t, ValidateAnalysisID("1; DROP TABLE analyses"))
}

func TestValidateStruct(t *testing.T) {
	type claim struct {
		TempAnalysisID string `json:"temp_analysis_id" validate:"required,tempid"`
	}

	err := ValidateStruct(claim{})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "temp_analysis_id", fe.Field)
	assert.Equal(t, "required", fe.Tag)
	assert.EqualError(t, err, "temp_analysis_id is required")

	err = ValidateStruct(claim{TempAnalysisID: "temp_x"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "tempid", fe.Tag)

	assert.NoError(t, ValidateStruct(claim{TempAnalysisID: "temp_3b241101-e2bb-4255-8caf-4136c566a962"}))
}

func TestPaging(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 4, ParsePage("4"))

	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(500))
	assert.Equal(t, 50, ValidateLimit(50))
}
