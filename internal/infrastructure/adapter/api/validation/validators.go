package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
)

// Custom binding tags
const (
	TagUsername       = "username"
	TagAccountNumber  = "account_number"
	TagStrongPassword = "strong_password"
	TagMoney          = "money"
	TagMoneyNonNeg    = "money_nonneg"
)

// RegisterWithGin installs the custom tags on gin's default validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return Register(v)
}

// Register installs the custom tags, reports fields by their json or form name
// and validates decimal amounts through their string form
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	validators := map[string]validator.Func{
		TagUsername:       stringRule(username),
		TagAccountNumber:  stringRule(accountNumber),
		TagStrongPassword: stringRule(entity.ValidatePasswordStrength),
		TagMoney:          stringRule(positiveAmount),
		TagMoneyNonNeg:    stringRule(nonNegativeAmount),
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// Explain returns the domain message for a failed custom tag, or "" for built-in tags
func Explain(tag, value string) string {
	var rule func(string) error
	switch tag {
	case TagUsername:
		rule = username
	case TagAccountNumber:
		rule = accountNumber
	case TagStrongPassword:
		rule = entity.ValidatePasswordStrength
	case TagMoney:
		rule = positiveAmount
	case TagMoneyNonNeg:
		rule = nonNegativeAmount
	default:
		return ""
	}
	err := rule(value)
	if err == nil {
		return ""
	}
	var invalid *errs.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	return err.Error()
}

func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func stringRule(rule func(string) error) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return rule(value) == nil
	}
}

func username(raw string) error {
	return entity.ValidateUsername(entity.NormalizeUsername(raw))
}

func accountNumber(raw string) error {
	return entity.ValidateAccountNumber(entity.NormalizeAccountNumber(raw))
}

func positiveAmount(raw string) error {
	amount, err := entity.ParseAmount(raw)
	if err != nil {
		return err
	}
	return entity.ValidatePositiveAmount(amount)
}

func nonNegativeAmount(raw string) error {
	amount, err := entity.ParseAmount(raw)
	if err != nil {
		return err
	}
	return entity.ValidateNonNegativeAmount(amount)
}
