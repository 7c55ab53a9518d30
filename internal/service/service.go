package service

import (
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

// ForecastRepository is re-exported from domain for convenience
type ForecastRepository = domain.ForecastRepository

// Cache is re-exported from domain for convenience
type Cache = domain.Cache
