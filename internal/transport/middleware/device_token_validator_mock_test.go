package middleware

import (
	"sync"
)

var _ deviceTokenValidator = &deviceTokenValidatorMock{}

type deviceTokenValidatorMock struct {
	ValidateDeviceTokenFunc func(token string) (string, error)

	calls struct {
		ValidateDeviceToken []string
	}
	lockValidateDeviceToken sync.RWMutex
}

func (mock *deviceTokenValidatorMock) ValidateDeviceToken(token string) (string, error) {
	if mock.ValidateDeviceTokenFunc == nil {
		panic("deviceTokenValidatorMock.ValidateDeviceTokenFunc: method is nil but deviceTokenValidator.ValidateDeviceToken was just called")
	}
	mock.lockValidateDeviceToken.Lock()
	mock.calls.ValidateDeviceToken = append(mock.calls.ValidateDeviceToken, token)
	mock.lockValidateDeviceToken.Unlock()
	return mock.ValidateDeviceTokenFunc(token)
}

func (mock *deviceTokenValidatorMock) ValidateDeviceTokenCalls() []string {
	mock.lockValidateDeviceToken.RLock()
	calls := mock.calls.ValidateDeviceToken
	mock.lockValidateDeviceToken.RUnlock()
	return calls
}
