package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/charlesng35/otpdash/pkg/response"
	appValidator "github.com/charlesng35/otpdash/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// Malformed JSON and failed rules both produce a 400 carrying message, and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		_ = c.Error(err)
		response.Error(c, appErrors.NewBadRequest(message))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		_ = c.Error(err)
		response.Error(c, appErrors.NewBadRequest(message))
		return false
	}

	return true
}

// positiveIntQuery reads an optional positive integer query parameter.
func positiveIntQuery(c *gin.Context, key string, fallback int) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return parsed, nil
}
