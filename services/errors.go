package services

import "errors"

// 服务层错误，handler 通过 errors.Is 映射到 HTTP 状态码
var (
	ErrFileNotFound        = errors.New("file not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrValidation          = errors.New("validation failed")
)
