package reassign_booking

import (
	"context"

	reassignUC "github.com/calhub/CalHub-ReassignService/internal/usecase/reassign_booking"
)

type ReassignUseCase interface {
	Execute(ctx context.Context, req *reassignUC.Request) (*reassignUC.Response, error)
}

// Metrics счетчики результатов переназначений
type Metrics interface {
	IncReassignment(result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
