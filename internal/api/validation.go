package api

import (
	"errors"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/statarena/server/internal/models"
)

var registerValidatorsOnce sync.Once

// RegisterValidators teaches gin's validator to check decimal.Decimal fields
// as numbers, so binding tags like "required,gt=0" work on prices, and adds
// the "price" tag for amounts that must fit the NUMERIC(10,2) columns.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
			_ = v.RegisterValidation("price", validPrice)
		}
	})
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validPrice(fl validator.FieldLevel) bool {
	field := fl.Field()
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return models.ValidPrice(d)
	}
	if field.Kind() == reflect.Float64 {
		return models.ValidPrice(decimal.NewFromFloat(field.Float()))
	}
	return false
}

// bindingMessage picks the client message for a failed bind
func bindingMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "price" {
				return models.InvalidPriceMessage
			}
		}
	}
	return fallback
}
