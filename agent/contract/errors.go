package contract

import "errors"

var (
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrParse              = errors.New("model response is not a valid json object")
	ErrPromptMissing      = errors.New("required prompt is missing")
	ErrValidation         = errors.New("validation failed")
	ErrToolNotRegistered  = errors.New("tool not registered")
	ErrInvalidToolArgs    = errors.New("invalid tool arguments")
	ErrInvalidTransition  = errors.New("invalid workflow transition")
	ErrGateMissing        = errors.New("human gate missing from workflow state")
	ErrInvalidPayload     = errors.New("invalid workflow payload")
	ErrUnexpectedToolType = errors.New("tool returned unexpected result type")
)
