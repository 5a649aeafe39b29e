package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type settingsInput struct {
	APIKey  string `json:"apiKey" validate:"required"`
	BaseURL string `json:"baseUrl" validate:"omitempty,url"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(settingsInput{APIKey: "k"}))

	errs := Validate(settingsInput{BaseURL: "not a url"})
	assert.Equal(t, map[string]string{"apiKey": "required", "baseUrl": "url"}, errs)
}
