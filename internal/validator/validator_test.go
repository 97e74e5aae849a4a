package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type threadInput struct {
	Subject string `json:"subject" binding:"required,notblank,max=10"`
}

func TestTranslateErrors(t *testing.T) {
	Setup()

	assert.NoError(t, binding.Validator.ValidateStruct(&threadInput{Subject: "Week 1"}))

	fields := TranslateErrors(binding.Validator.ValidateStruct(&threadInput{Subject: "   "}))
	assert.Equal(t, "subject must not be blank", fields["subject"])

	fields = TranslateErrors(binding.Validator.ValidateStruct(&threadInput{Subject: "far too long a subject"}))
	assert.Contains(t, fields, "subject")

	fields = TranslateErrors(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
}
