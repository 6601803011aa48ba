package uow

import "errors"

var (
	ErrRepositoryNotRegistered = errors.New("[uow] repository not registered")
	ErrInvalidRepositoryType   = errors.New("[uow] invalid repository type")
)
