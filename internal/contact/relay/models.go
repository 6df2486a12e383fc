package relay

import (
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/common/observability"
	"devstudio-site/internal/contact/idempotency"
	"devstudio-site/internal/delivery"
)

// Outcome labels recorded for rejected or failed submissions are the error
// codes; these cover the remaining cases.
const (
	OutcomeSuccess = "success"
)

type ServiceDependencies struct {
	Logger        logger.Logger
	Notifier      delivery.Notifier
	Guard         *idempotency.Guard
	Observability *observability.Observability
}
