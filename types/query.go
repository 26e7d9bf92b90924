package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type QueryParams struct {
	Question string `json:"question" validate:"required"`
}

type QueryResponse struct {
	Answer    string    `json:"answer"`
	Sections  []string  `json:"legal_sections,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusResponse struct {
	EmbedderReady      bool   `json:"embedder_ready"`
	StoreReady         bool   `json:"store_ready"`
	Collections        int    `json:"collections"`
	TotalConversations int    `json:"total_conversations"`
	Status             string `json:"status"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *QueryParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
