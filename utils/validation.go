package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// Validate is the shared validator instance; main wires it into the iris app
// so ReadJSON runs the struct tags through it.
var Validate = validator.New()

// HandleValidationErrors renders ReadJSON failures. Field-level validator
// errors are listed per field; anything else is a plain bad-request.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]iris.Map, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, iris.Map{
				"field": fe.Field(),
				"rule":  fe.Tag(),
				"error": fmt.Sprintf("failed on '%s'", fe.Tag()),
			})
		}
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"error": "validation_error", "message": "validation failed", "fields": fields})
		return
	}

	msg := err.Error()
	if strings.Contains(msg, "EOF") {
		msg = "request body is required"
	}
	ctx.StatusCode(iris.StatusBadRequest)
	ctx.JSON(iris.Map{"error": "bad_request", "message": msg})
}
