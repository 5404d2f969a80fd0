package fulfillment

import "errors"

// Construction errors.
var (
	ErrMissingRequest  = errors.New("fulfillment: inbound request handle is required")
	ErrMissingResponse = errors.New("fulfillment: outbound response handle is required")
	ErrUnknownProtocol = errors.New("fulfillment: payload has neither a result nor a queryResult field")
)

// Validation errors.
var (
	ErrUnsupportedPlatform = errors.New("fulfillment: platform is not supported")
	ErrUnknownResponseType = errors.New("fulfillment: unknown response type")
	ErrContextName         = errors.New("fulfillment: context name is required")
	ErrEventName           = errors.New("fulfillment: followup event name is required")
	ErrAlreadySent         = errors.New("fulfillment: response already sent")
)

// Dispatch errors.
var (
	ErrInvalidHandler = errors.New("fulfillment: handler must be a HandlerFunc or an ActionMap of action name to HandlerFunc")
	ErrNoHandler      = errors.New("fulfillment: no handler for action")
)
