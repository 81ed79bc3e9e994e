package handlers

import (
	"sync"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the ticket tags to gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("ticket_priority", func(fl validator.FieldLevel) bool {
			return entity.ValidPriority(fl.Field().String())
		})
		_ = v.RegisterValidation("ticket_status", func(fl validator.FieldLevel) bool {
			return entity.ValidStatus(fl.Field().String())
		})
		_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
			return entity.ValidRole(fl.Field().String())
		})
	})
}
